package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"orderdesk/internal/models"
	"orderdesk/internal/repository"
)

// OrderService handles operator order workflows
type OrderService struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	notifier  Notifier
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	notifier Notifier,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		customers: customers,
		notifier:  notifier,
		logger:    logger.Named("orders"),
	}
}

// ListOrders returns one status view of the dashboard, enriched with each
// order's customer profile summary
func (s *OrderService) ListOrders(ctx context.Context, filters repository.OrderFilters) ([]*models.OrderWithCustomer, error) {
	if filters.Status == "" {
		return nil, &ValidationError{Message: "status is required"}
	}

	orders, err := s.orders.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return s.enrich(ctx, orders), nil
}

// enrich attaches customer summaries with one batch lookup. A failed lookup
// leaves every order with default customer values.
func (s *OrderService) enrich(ctx context.Context, orders []*models.Order) []*models.OrderWithCustomer {
	enriched := make([]*models.OrderWithCustomer, 0, len(orders))
	phones := make([]string, 0, len(orders))
	seen := map[string]bool{}

	for _, order := range orders {
		enriched = append(enriched, &models.OrderWithCustomer{
			Order:              *order,
			CustomerTotalSpent: "0",
			CustomerTags:       []string{},
		})
		if order.HasPhone() && !seen[order.Phone] {
			seen[order.Phone] = true
			phones = append(phones, order.Phone)
		}
	}

	if len(phones) == 0 {
		return enriched
	}

	summaries, err := s.customers.GetSummariesByPhones(ctx, phones)
	if err != nil {
		s.logger.Warn("Customer enrichment skipped", zap.Error(err))
		return enriched
	}

	for _, order := range enriched {
		summary, ok := summaries[order.Phone]
		if !ok {
			continue
		}
		order.CustomerTotalOrders = summary.TotalOrders
		order.CustomerTotalSpent = summary.TotalSpent.StringFixed(2)
		order.IsRepeatCustomer = summary.TotalOrders > 1
		if summary.Tags != nil {
			order.CustomerTags = summary.Tags
		}
	}

	return enriched
}

// UpdateStatus moves an order to a new triage status and rebuilds its customer
func (s *OrderService) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	current, err := s.orders.GetByID(ctx, req.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "order", ID: req.OrderID}
	}
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if current.Status == req.Status {
		return &BusinessLogicError{Message: fmt.Sprintf("order %s is already %s", req.OrderID, req.Status)}
	}

	phone, err := s.orders.UpdateStatus(ctx, req.OrderID, req.Status)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "order", ID: req.OrderID}
	}
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", req.OrderID),
		zap.String("status", string(req.Status)),
	)

	if models.HasPhone(phone) {
		s.notifier.Notify(ctx, Event{Kind: EventStatusChanged, Phone: phone})
	}
	return nil
}

// UpdateDetails overwrites the operator-editable fields. Customer profiles are
// not recomputed for direct edits.
func (s *OrderService) UpdateDetails(ctx context.Context, req *UpdateDetailsRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	details := repository.OrderDetails{
		Products:     models.ParseProductList(req.ProductsText),
		Address:      req.Address,
		Phone:        strings.TrimSpace(req.Phone),
		Notes:        req.Notes,
		DeliveryType: req.DeliveryType,
	}
	if details.DeliveryType == "" {
		details.DeliveryType = models.DeliveryStandard
	}

	err := s.orders.UpdateDetails(ctx, req.OrderID, details)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "order", ID: req.OrderID}
	}
	if err != nil {
		return fmt.Errorf("failed to update order details: %w", err)
	}

	return nil
}

// BulkDelete removes the selected orders. A selection that matches nothing
// was already removed by someone else and is reported as a conflict.
func (s *OrderService) BulkDelete(ctx context.Context, req *BulkDeleteRequest) (int64, error) {
	if len(req.OrderIDs) == 0 {
		return 0, &ValidationError{Message: "no orders selected"}
	}

	deleted, err := s.orders.DeleteByIDs(ctx, req.OrderIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orders: %w", err)
	}
	if deleted == 0 {
		return 0, &ConflictError{Resource: "orders", Message: "none of the selected orders exist"}
	}

	s.logger.Info("Orders deleted", zap.Int("requested", len(req.OrderIDs)), zap.Int64("deleted", deleted))
	return deleted, nil
}

// ClearStatus removes every order in one status view, Confirmed by default
func (s *OrderService) ClearStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	if status == "" {
		status = models.OrderStatusConfirmed
	}
	if !status.Known() {
		return 0, &ValidationError{Message: fmt.Sprintf("unknown status %q", status)}
	}

	deleted, err := s.orders.DeleteByStatus(ctx, status)
	if err != nil {
		return 0, fmt.Errorf("failed to clear orders: %w", err)
	}

	s.logger.Info("Orders cleared", zap.String("status", string(status)), zap.Int64("deleted", deleted))
	return deleted, nil
}

// DailySummary returns per-day status counts
func (s *OrderService) DailySummary(ctx context.Context) ([]*models.DailySummary, error) {
	summary, err := s.orders.DailySummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily summary: %w", err)
	}
	return summary, nil
}

// ExportOrders returns the orders selected for an export
func (s *OrderService) ExportOrders(ctx context.Context, filters repository.ExportFilters) ([]*models.Order, error) {
	orders, err := s.orders.ListForExport(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for export: %w", err)
	}
	return orders, nil
}

// Request types

// UpdateStatusRequest represents a status transition
type UpdateStatusRequest struct {
	OrderID string             `json:"order_id" validate:"required"`
	Status  models.OrderStatus `json:"status" validate:"required,oneof=Pending Confirmed Cancelled 'Call Again'"`
}

// UpdateDetailsRequest represents a direct edit of an order
type UpdateDetailsRequest struct {
	OrderID      string              `json:"order_id" validate:"required"`
	ProductsText string              `json:"products_text"`
	Address      string              `json:"address"`
	Phone        string              `json:"phone"`
	Notes        string              `json:"notes"`
	DeliveryType models.DeliveryType `json:"delivery_type" validate:"omitempty,oneof=Standard Express"`
}

// BulkDeleteRequest represents a multi-order deletion
type BulkDeleteRequest struct {
	OrderIDs []string `json:"order_ids"`
}
