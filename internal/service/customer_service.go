package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderdesk/internal/cache"
	"orderdesk/internal/models"
	"orderdesk/internal/repository"
)

// CustomerService serves customer profiles and the note log
type CustomerService struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	cache     cache.ProfileCache
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	profileCache cache.ProfileCache,
	location *time.Location,
	logger *zap.Logger,
) *CustomerService {
	if profileCache == nil {
		profileCache = cache.NoopProfileCache{}
	}
	if location == nil {
		location = time.UTC
	}
	return &CustomerService{
		customers: customers,
		orders:    orders,
		cache:     profileCache,
		location:  location,
		now:       time.Now,
		logger:    logger.Named("customers"),
	}
}

// CustomerList is a filtered customer listing with base-wide statistics
type CustomerList struct {
	Customers []*models.Customer      `json:"customers"`
	Stats     models.CustomerOverview `json:"stats"`
}

// ListCustomers returns customers matching the filters. Overview statistics
// fall back to zero values when they cannot be computed.
func (s *CustomerService) ListCustomers(ctx context.Context, filters repository.CustomerFilters) (*CustomerList, error) {
	customers, err := s.customers.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	result := &CustomerList{
		Customers: customers,
		Stats:     models.CustomerOverview{AvgLifetimeValue: decimal.Zero},
	}

	overview, err := s.customers.Overview(ctx)
	if err != nil {
		s.logger.Warn("Customer overview unavailable", zap.Error(err))
	} else {
		result.Stats = *overview
	}

	return result, nil
}

// GetCustomer returns a profile, reading through the cache
func (s *CustomerService) GetCustomer(ctx context.Context, phone string) (*models.Customer, error) {
	cached, err := s.cache.Get(ctx, phone)
	if err != nil {
		s.logger.Warn("Profile cache read failed", zap.String("phone", phone), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	customer, err := s.customers.GetByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "customer", ID: phone}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if err := s.cache.Set(ctx, customer); err != nil {
		s.logger.Warn("Profile cache write failed", zap.String("phone", phone), zap.Error(err))
	}
	return customer, nil
}

// GetCustomerOrders returns every order placed with the phone, newest first
func (s *CustomerService) GetCustomerOrders(ctx context.Context, phone string) ([]*models.Order, error) {
	orders, err := s.orders.ListByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer orders: %w", err)
	}
	return orders, nil
}

// AddNote appends a timestamped entry to the customer's note log
func (s *CustomerService) AddNote(ctx context.Context, phone string, req *AddNoteRequest) error {
	note := strings.TrimSpace(req.Note)
	if note == "" {
		return &ValidationError{Message: "note is required"}
	}

	entry := fmt.Sprintf("[%s] %s", s.now().In(s.location).Format(models.TimestampLayout), note)

	err := s.customers.AppendNote(ctx, phone, entry)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "customer", ID: phone}
	}
	if err != nil {
		return fmt.Errorf("failed to add customer note: %w", err)
	}

	if err := s.cache.Invalidate(ctx, phone); err != nil {
		s.logger.Warn("Failed to invalidate cached profile", zap.String("phone", phone), zap.Error(err))
	}
	return nil
}

// AddNoteRequest represents a new customer note
type AddNoteRequest struct {
	Note string `json:"note"`
}
