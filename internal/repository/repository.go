package repository

import (
	"context"
	"database/sql"
	"errors"

	"orderdesk/internal/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

// OrderRepository defines order data access operations
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Upsert(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (string, error)
	UpdateDetails(ctx context.Context, id string, details OrderDetails) error
	List(ctx context.Context, filters OrderFilters) ([]*models.Order, error)
	ListForExport(ctx context.Context, filters ExportFilters) ([]*models.Order, error)
	ListByPhone(ctx context.Context, phone string) ([]*models.Order, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
	DailySummary(ctx context.Context) ([]*models.DailySummary, error)
}

// OrderFilters defines filters for the order dashboard listing
type OrderFilters struct {
	Status    models.OrderStatus
	StartDate string
	EndDate   string
	Search    string
	Payment   string
	Delivery  string
	State     string
}

// ExportFilters defines filters for order exports. Dates match the date part of the timestamp.
type ExportFilters struct {
	StartDate string
	EndDate   string
	Status    string
	Delivery  string
}

// OrderDetails holds the operator-editable order fields
type OrderDetails struct {
	Products     models.ProductList
	Address      string
	Phone        string
	Notes        string
	DeliveryType models.DeliveryType
}

// CustomerRepository defines customer data access operations
type CustomerRepository interface {
	GetByPhone(ctx context.Context, phone string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	UpdateStats(ctx context.Context, phone string, stats *models.CustomerStats) error
	GetSummariesByPhones(ctx context.Context, phones []string) (map[string]*models.CustomerSummary, error)
	List(ctx context.Context, filters CustomerFilters) ([]*models.Customer, error)
	Overview(ctx context.Context) (*models.CustomerOverview, error)
	AppendNote(ctx context.Context, phone, entry string) error
}

// Customer list filters
const (
	CustomerFilterRepeat   = "repeat"
	CustomerFilterVIP      = "vip"
	CustomerFilterHighRisk = "high_risk"
	CustomerFilterNew      = "new"
)

// CustomerFilters defines filters for listing customers
type CustomerFilters struct {
	Search    string
	Filter    string
	SortBy    string
	SortOrder string
}

// DB is a wrapper around *sql.DB to allow passing in transaction
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
