package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"orderdesk/internal/models"

	"github.com/lib/pq"
)

const customerColumns = `phone, COALESCE(name, ''), COALESCE(email, ''), COALESCE(first_order_date, ''),
	COALESCE(last_order_date, ''), total_orders, confirmed_orders, cancelled_orders, total_spent,
	rto_count, addresses, states, COALESCE(preferred_payment, ''), COALESCE(preferred_delivery, ''),
	tags, COALESCE(notes, ''), created_at, updated_at`

// customerSortColumns is the allow-list of sortable customer columns
var customerSortColumns = map[string]string{
	"total_orders":    "total_orders",
	"total_spent":     "total_spent",
	"last_order_date": "last_order_date",
	"name":            "name",
}

type customerRepository struct {
	db DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db DB) CustomerRepository {
	return &customerRepository{db: db}
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(
		&customer.Phone,
		&customer.Name,
		&customer.Email,
		&customer.FirstOrderDate,
		&customer.LastOrderDate,
		&customer.TotalOrders,
		&customer.ConfirmedOrders,
		&customer.CancelledOrders,
		&customer.TotalSpent,
		&customer.RTOCount,
		pq.Array(&customer.Addresses),
		pq.Array(&customer.States),
		&customer.PreferredPayment,
		&customer.PreferredDelivery,
		pq.Array(&customer.Tags),
		&customer.Notes,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	return customer, err
}

// GetByPhone retrieves a customer profile
func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// Create inserts a new customer. An existing profile for the phone is left untouched.
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (phone, name, email, first_order_date, last_order_date, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (phone) DO NOTHING
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.Phone,
		customer.Name,
		customer.Email,
		customer.FirstOrderDate,
		customer.LastOrderDate,
		pq.Array(customer.Tags),
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// UpdateStats writes a full recomputation of the customer's aggregates
func (r *customerRepository) UpdateStats(ctx context.Context, phone string, stats *models.CustomerStats) error {
	query := `
		UPDATE customers SET
			name = $1,
			email = $2,
			first_order_date = $3,
			last_order_date = $4,
			total_orders = $5,
			confirmed_orders = $6,
			cancelled_orders = $7,
			total_spent = $8,
			rto_count = $9,
			addresses = $10,
			states = $11,
			preferred_payment = $12,
			preferred_delivery = $13,
			tags = $14,
			updated_at = NOW()
		WHERE phone = $15
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		stats.Name,
		stats.Email,
		stats.FirstOrderDate,
		stats.LastOrderDate,
		stats.TotalOrders,
		stats.ConfirmedOrders,
		stats.CancelledOrders,
		stats.TotalSpent,
		stats.RTOCount,
		pq.Array(stats.Addresses),
		pq.Array(stats.States),
		stats.PreferredPayment,
		stats.PreferredDelivery,
		pq.Array(stats.Tags),
		phone,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer stats: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// GetSummariesByPhones batch-loads profile summaries keyed by phone
func (r *customerRepository) GetSummariesByPhones(ctx context.Context, phones []string) (map[string]*models.CustomerSummary, error) {
	summaries := map[string]*models.CustomerSummary{}
	if len(phones) == 0 {
		return summaries, nil
	}

	query := `
		SELECT phone, total_orders, total_spent, tags
		FROM customers
		WHERE phone = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(phones))
	if err != nil {
		return nil, fmt.Errorf("failed to get customer summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		summary := &models.CustomerSummary{}
		if err := rows.Scan(&summary.Phone, &summary.TotalOrders, &summary.TotalSpent, pq.Array(&summary.Tags)); err != nil {
			return nil, fmt.Errorf("failed to scan customer summary: %w", err)
		}
		summaries[summary.Phone] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customer summaries: %w", err)
	}

	return summaries, nil
}

// List retrieves customers matching the search and segment filter
func (r *customerRepository) List(ctx context.Context, filters CustomerFilters) ([]*models.Customer, error) {
	query, args := buildCustomerQuery(filters)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}

	return customers, nil
}

func buildCustomerQuery(filters CustomerFilters) (string, []interface{}) {
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`SELECT ` + customerColumns + ` FROM customers WHERE 1=1`)

	args := []interface{}{}

	if search := strings.TrimSpace(filters.Search); search != "" {
		queryBuilder.WriteString(" AND (name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1)")
		args = append(args, "%"+search+"%")
	}

	switch filters.Filter {
	case CustomerFilterRepeat:
		queryBuilder.WriteString(" AND total_orders > 1")
	case CustomerFilterVIP:
		queryBuilder.WriteString(" AND total_spent > 10000")
	case CustomerFilterHighRisk:
		queryBuilder.WriteString(" AND cancelled_orders > 2")
	case CustomerFilterNew:
		queryBuilder.WriteString(" AND total_orders = 1")
	}

	column, ok := customerSortColumns[filters.SortBy]
	if !ok {
		column = "last_order_date"
	}
	direction := "DESC"
	if strings.EqualFold(filters.SortOrder, "ASC") {
		direction = "ASC"
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, phone ASC", column, direction))

	return queryBuilder.String(), args
}

// Overview returns headline statistics over all customers
func (r *customerRepository) Overview(ctx context.Context) (*models.CustomerOverview, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE total_orders > 1),
			COALESCE(AVG(total_spent), 0)
		FROM customers
	`

	overview := &models.CustomerOverview{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&overview.TotalCustomers,
		&overview.RepeatCustomers,
		&overview.AvgLifetimeValue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer overview: %w", err)
	}
	overview.AvgLifetimeValue = overview.AvgLifetimeValue.Round(2)

	return overview, nil
}

// AppendNote adds a line to the customer's note log
func (r *customerRepository) AppendNote(ctx context.Context, phone, entry string) error {
	query := `
		UPDATE customers
		SET notes = CASE WHEN COALESCE(notes, '') = '' THEN $1 ELSE notes || E'\n' || $1 END
		WHERE phone = $2
	`

	result, err := r.db.ExecContext(ctx, query, entry, phone)
	if err != nil {
		return fmt.Errorf("failed to append customer note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
