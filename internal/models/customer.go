package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer tags derived during aggregation
const (
	TagVIP           = "VIP"
	TagHighValue     = "High Value"
	TagFrequentBuyer = "Frequent Buyer"
	TagHighRisk      = "High Risk"
	TagNewCustomer   = "New Customer"
	TagLoyal         = "Loyal"
)

// Customer is the profile derived from every order sharing a phone number
type Customer struct {
	Phone             string          `json:"phone" db:"phone"`
	Name              string          `json:"name" db:"name"`
	Email             string          `json:"email" db:"email"`
	FirstOrderDate    string          `json:"first_order_date" db:"first_order_date"`
	LastOrderDate     string          `json:"last_order_date" db:"last_order_date"`
	TotalOrders       int             `json:"total_orders" db:"total_orders"`
	ConfirmedOrders   int             `json:"confirmed_orders" db:"confirmed_orders"`
	CancelledOrders   int             `json:"cancelled_orders" db:"cancelled_orders"`
	TotalSpent        decimal.Decimal `json:"total_spent" db:"total_spent"`
	RTOCount          int             `json:"rto_count" db:"rto_count"`
	Addresses         []string        `json:"addresses" db:"addresses"`
	States            []string        `json:"states" db:"states"`
	PreferredPayment  string          `json:"preferred_payment" db:"preferred_payment"`
	PreferredDelivery string          `json:"preferred_delivery" db:"preferred_delivery"`
	Tags              []string        `json:"tags" db:"tags"`
	Notes             string          `json:"notes" db:"notes"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// IsRepeat reports whether the customer has ordered more than once
func (c *Customer) IsRepeat() bool {
	return c.TotalOrders > 1
}

// HasTag reports whether tag is present
func (c *Customer) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CustomerStats holds every field the aggregator recomputes
type CustomerStats struct {
	Name              string
	Email             string
	FirstOrderDate    string
	LastOrderDate     string
	TotalOrders       int
	ConfirmedOrders   int
	CancelledOrders   int
	TotalSpent        decimal.Decimal
	RTOCount          int
	Addresses         []string
	States            []string
	PreferredPayment  string
	PreferredDelivery string
	Tags              []string
}

// CustomerSummary is the slice of a profile used to enrich order listings
type CustomerSummary struct {
	Phone       string
	TotalOrders int
	TotalSpent  decimal.Decimal
	Tags        []string
}

// CustomerOverview aggregates the whole customer base
type CustomerOverview struct {
	TotalCustomers   int             `json:"total_customers"`
	RepeatCustomers  int             `json:"repeat_customers"`
	AvgLifetimeValue decimal.Decimal `json:"avg_lifetime_value"`
}
