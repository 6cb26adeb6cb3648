package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"orderdesk/internal/models"

	"github.com/lib/pq"
)

// idSearchMaxLen is the longest all-digit search treated as an order number lookup
const idSearchMaxLen = 5

const orderColumns = `id, COALESCE(customer_name, ''), COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(address, ''), COALESCE(source, ''), COALESCE(products, '[]'), COALESCE(total, ''),
	COALESCE(status, ''), COALESCE(timestamp, ''), COALESCE(notes, ''), COALESCE(delivery_type, ''),
	COALESCE(state, ''), COALESCE(payment_method, ''), COALESCE(rto_risk, '')`

type orderRepository struct {
	db DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db DB) OrderRepository {
	return &orderRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.Email,
		&order.Phone,
		&order.Address,
		&order.Source,
		&order.Products,
		&order.Total,
		&order.Status,
		&order.Timestamp,
		&order.Notes,
		&order.DeliveryType,
		&order.State,
		&order.PaymentMethod,
		&order.RiskTier,
	)
	return order, err
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// GetByID retrieves an order by its channel-assigned ID
func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// Upsert inserts the order or replaces every column of the existing row.
// Field preservation is resolved by the caller before the write.
func (r *orderRepository) Upsert(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, customer_name, email, phone, address, source, products, total,
			status, timestamp, notes, delivery_type, state, payment_method, rto_risk)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			customer_name = EXCLUDED.customer_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			source = EXCLUDED.source,
			products = EXCLUDED.products,
			total = EXCLUDED.total,
			status = EXCLUDED.status,
			timestamp = EXCLUDED.timestamp,
			notes = EXCLUDED.notes,
			delivery_type = EXCLUDED.delivery_type,
			state = EXCLUDED.state,
			payment_method = EXCLUDED.payment_method,
			rto_risk = EXCLUDED.rto_risk
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.CustomerName,
		order.Email,
		order.Phone,
		order.Address,
		order.Source,
		order.Products,
		order.Total,
		order.Status,
		order.Timestamp,
		order.Notes,
		order.DeliveryType,
		order.State,
		order.PaymentMethod,
		order.RiskTier,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}

	return nil
}

// UpdateStatus sets the order status and returns the order's phone
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (string, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2 RETURNING COALESCE(phone, '')`

	var phone string
	err := r.db.QueryRowContext(ctx, query, status, id).Scan(&phone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to update order status: %w", err)
	}

	return phone, nil
}

// UpdateDetails overwrites the operator-editable fields of an order
func (r *orderRepository) UpdateDetails(ctx context.Context, id string, details OrderDetails) error {
	query := `
		UPDATE orders
		SET products = $1, address = $2, phone = $3, notes = $4, delivery_type = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		details.Products,
		details.Address,
		details.Phone,
		details.Notes,
		details.DeliveryType,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update order details: %w", err)
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

// List retrieves orders for one status, newest first
func (r *orderRepository) List(ctx context.Context, filters OrderFilters) ([]*models.Order, error) {
	query, args := buildOrderQuery(filters)
	return r.queryOrders(ctx, query, args...)
}

// buildOrderQuery renders the dashboard listing query. An all-digit search of
// up to five characters is an order number lookup; anything else matches
// name, phone, email or address.
func buildOrderQuery(filters OrderFilters) (string, []interface{}) {
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`SELECT ` + orderColumns + ` FROM orders WHERE status = $1`)

	args := []interface{}{filters.Status}
	argPos := 2

	if filters.StartDate != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND timestamp >= $%d", argPos))
		args = append(args, filters.StartDate+" 00:00:00")
		argPos++
	}

	if filters.EndDate != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND timestamp <= $%d", argPos))
		args = append(args, filters.EndDate+" 23:59:59")
		argPos++
	}

	if search := strings.TrimSpace(filters.Search); search != "" {
		if isOrderNumber(search) {
			queryBuilder.WriteString(fmt.Sprintf(" AND id ILIKE $%d", argPos))
		} else {
			queryBuilder.WriteString(fmt.Sprintf(
				" AND (customer_name ILIKE $%[1]d OR phone ILIKE $%[1]d OR email ILIKE $%[1]d OR address ILIKE $%[1]d)",
				argPos,
			))
		}
		args = append(args, "%"+search+"%")
		argPos++
	}

	if filters.Payment != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND payment_method = $%d", argPos))
		args = append(args, filters.Payment)
		argPos++
	}

	if filters.Delivery != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND delivery_type = $%d", argPos))
		args = append(args, filters.Delivery)
		argPos++
	}

	if filters.State != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND state = $%d", argPos))
		args = append(args, filters.State)
	}

	queryBuilder.WriteString(" ORDER BY timestamp DESC")

	return queryBuilder.String(), args
}

func isOrderNumber(search string) bool {
	if utf8.RuneCountInString(search) > idSearchMaxLen {
		return false
	}
	for _, c := range search {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ListForExport retrieves orders matching the export filters, newest first
func (r *orderRepository) ListForExport(ctx context.Context, filters ExportFilters) ([]*models.Order, error) {
	query, args := buildExportQuery(filters)
	return r.queryOrders(ctx, query, args...)
}

func buildExportQuery(filters ExportFilters) (string, []interface{}) {
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`SELECT ` + orderColumns + ` FROM orders WHERE 1=1`)

	args := []interface{}{}
	argPos := 1

	if filters.StartDate != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND substring(timestamp, 1, 10) >= $%d", argPos))
		args = append(args, filters.StartDate)
		argPos++
	}

	if filters.EndDate != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND substring(timestamp, 1, 10) <= $%d", argPos))
		args = append(args, filters.EndDate)
		argPos++
	}

	if filters.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argPos))
		args = append(args, filters.Status)
		argPos++
	}

	if filters.Delivery != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND delivery_type = $%d", argPos))
		args = append(args, filters.Delivery)
	}

	queryBuilder.WriteString(" ORDER BY timestamp DESC")

	return queryBuilder.String(), args
}

// ListByPhone retrieves every order placed with a phone, newest first
func (r *orderRepository) ListByPhone(ctx context.Context, phone string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE phone = $1 ORDER BY timestamp DESC`
	return r.queryOrders(ctx, query, phone)
}

// DeleteByIDs deletes the given orders and returns how many existed
func (r *orderRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete orders: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// DeleteByStatus deletes every order in a status
func (r *orderRepository) DeleteByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE status = $1`, status)
	if err != nil {
		return 0, fmt.Errorf("failed to clear orders: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// DailySummary counts orders per day and status, most recent day first
func (r *orderRepository) DailySummary(ctx context.Context) ([]*models.DailySummary, error) {
	query := `
		SELECT
			substring(timestamp, 1, 10) AS day,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'Pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'Confirmed') AS confirmed,
			COUNT(*) FILTER (WHERE status = 'Cancelled') AS cancelled,
			COUNT(*) FILTER (WHERE status = 'Call Again') AS call_again
		FROM orders
		GROUP BY day
		ORDER BY day DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily summary: %w", err)
	}
	defer rows.Close()

	summary := []*models.DailySummary{}
	for rows.Next() {
		day := &models.DailySummary{}
		if err := rows.Scan(&day.Day, &day.Total, &day.Pending, &day.Confirmed, &day.Cancelled, &day.CallAgain); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		summary = append(summary, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily summary: %w", err)
	}

	return summary, nil
}
