package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/models"
)

var customerRowColumns = []string{
	"phone", "name", "email", "first_order_date", "last_order_date", "total_orders", "confirmed_orders",
	"cancelled_orders", "total_spent", "rto_count", "addresses", "states", "preferred_payment",
	"preferred_delivery", "tags", "notes", "created_at", "updated_at",
}

func sampleCustomerRow(rows *sqlmock.Rows, phone string) *sqlmock.Rows {
	now := time.Date(2024, 3, 10, 5, 30, 0, 0, time.UTC)
	return rows.AddRow(phone, "Amit Sharma", "amit@example.com", "2024-01-01 10:00:00", "2024-03-10 11:00:00",
		6, 4, 1, "12000.00", 0, `{"123, MG Road, Bangalore"}`, `{Karnataka}`, "Prepaid", "Standard",
		`{VIP,"High Value","Frequent Buyer",Loyal}`, "", now, now)
}

func TestCustomerRepository_GetByPhone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM customers WHERE phone").
		WithArgs("+919876543210").
		WillReturnRows(sampleCustomerRow(sqlmock.NewRows(customerRowColumns), "+919876543210"))

	customer, err := repo.GetByPhone(context.Background(), "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, "Amit Sharma", customer.Name)
	assert.Equal(t, 6, customer.TotalOrders)
	assert.True(t, customer.TotalSpent.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, []string{"123, MG Road, Bangalore"}, customer.Addresses)
	assert.Equal(t, []string{"VIP", "High Value", "Frequent Buyer", "Loyal"}, customer.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_GetByPhone_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM customers WHERE phone").
		WillReturnRows(sqlmock.NewRows(customerRowColumns))

	_, err := repo.GetByPhone(context.Background(), "000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec("INSERT INTO customers (.+) ON CONFLICT \\(phone\\) DO NOTHING").
		WithArgs("+919876543210", "Amit Sharma", "amit@example.com", "2024-03-10 11:00:00", "2024-03-10 11:00:00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Customer{
		Phone:          "+919876543210",
		Name:           "Amit Sharma",
		Email:          "amit@example.com",
		FirstOrderDate: "2024-03-10 11:00:00",
		LastOrderDate:  "2024-03-10 11:00:00",
		Tags:           []string{models.TagNewCustomer},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_UpdateStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	stats := &models.CustomerStats{
		Name:            "Amit Sharma",
		TotalOrders:     2,
		ConfirmedOrders: 1,
		TotalSpent:      decimal.RequireFromString("1299.00"),
		Tags:            []string{},
	}

	mock.ExpectExec("UPDATE customers SET (.+) updated_at = NOW\\(\\) WHERE phone").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStats(context.Background(), "+919876543210", stats))

	mock.ExpectExec("UPDATE customers SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStats(context.Background(), "000", stats), ErrNotFound)
}

func TestCustomerRepository_GetSummariesByPhones(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("SELECT phone, total_orders, total_spent, tags FROM customers WHERE phone = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"phone", "total_orders", "total_spent", "tags"}).
			AddRow("111", 3, "4500.50", `{Loyal}`).
			AddRow("222", 1, "0", `{"New Customer"}`))

	summaries, err := repo.GetSummariesByPhones(context.Background(), []string{"111", "222", "333"})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 3, summaries["111"].TotalOrders)
	assert.Equal(t, "4500.5", summaries["111"].TotalSpent.String())
	assert.Equal(t, []string{"New Customer"}, summaries["222"].Tags)

	empty, err := repo.GetSummariesByPhones(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBuildCustomerQuery(t *testing.T) {
	testCases := []struct {
		name     string
		filters  CustomerFilters
		contains []string
		args     int
	}{
		{
			name:     "defaults",
			filters:  CustomerFilters{},
			contains: []string{"ORDER BY last_order_date DESC"},
		},
		{
			name:     "search",
			filters:  CustomerFilters{Search: "amit"},
			contains: []string{"(name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1)"},
			args:     1,
		},
		{
			name:     "repeat ascending by orders",
			filters:  CustomerFilters{Filter: CustomerFilterRepeat, SortBy: "total_orders", SortOrder: "asc"},
			contains: []string{"total_orders > 1", "ORDER BY total_orders ASC"},
		},
		{
			name:     "vip",
			filters:  CustomerFilters{Filter: CustomerFilterVIP},
			contains: []string{"total_spent > 10000"},
		},
		{
			name:     "high risk",
			filters:  CustomerFilters{Filter: CustomerFilterHighRisk},
			contains: []string{"cancelled_orders > 2"},
		},
		{
			name:     "new",
			filters:  CustomerFilters{Filter: CustomerFilterNew, SortBy: "name"},
			contains: []string{"total_orders = 1", "ORDER BY name DESC"},
		},
		{
			name:     "sort outside allow-list",
			filters:  CustomerFilters{SortBy: "phone; DROP TABLE customers", SortOrder: "sideways"},
			contains: []string{"ORDER BY last_order_date DESC"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query, args := buildCustomerQuery(tc.filters)
			for _, fragment := range tc.contains {
				assert.Contains(t, query, fragment)
			}
			assert.NotContains(t, query, "DROP")
			assert.Len(t, args, tc.args)
		})
	}
}

func TestCustomerRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE 1=1 AND total_spent > 10000 ORDER BY total_spent DESC")).
		WillReturnRows(sampleCustomerRow(sqlmock.NewRows(customerRowColumns), "111"))

	customers, err := repo.List(context.Background(), CustomerFilters{Filter: CustomerFilterVIP, SortBy: "total_spent"})
	require.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepository_Overview(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM customers").
		WillReturnRows(sqlmock.NewRows([]string{"count", "repeat", "avg"}).AddRow(3, 1, "4433.3333333333"))

	overview, err := repo.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalCustomers)
	assert.Equal(t, 1, overview.RepeatCustomers)
	assert.Equal(t, "4433.33", overview.AvgLifetimeValue.StringFixed(2))
}

func TestCustomerRepository_AppendNote(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec("UPDATE customers SET notes").
		WithArgs("[2024-03-10 11:00:00] Prefers evening calls", "111").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.AppendNote(context.Background(), "111", "[2024-03-10 11:00:00] Prefers evening calls"))

	mock.ExpectExec("UPDATE customers SET notes").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.AppendNote(context.Background(), "000", "x"), ErrNotFound)
}
