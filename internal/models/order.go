package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// TimestampLayout is the civil-time format orders are stamped and compared with
const TimestampLayout = "2006-01-02 15:04:05"

// NoPhone is stored when an upstream payload carries no phone number
const NoPhone = "No Phone"

// OrderStatus represents the triage state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusCancelled OrderStatus = "Cancelled"
	OrderStatusCallAgain OrderStatus = "Call Again"
)

// Known reports whether the status is one the dashboard triages
func (s OrderStatus) Known() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCancelled, OrderStatusCallAgain:
		return true
	}
	return false
}

// Source identifies the upstream channel an order arrived from
type Source string

const (
	SourceShopify    Source = "Shopify"
	SourceShiprocket Source = "Shiprocket"
)

// Known reports whether the source is a supported channel
func (s Source) Known() bool {
	return s == SourceShopify || s == SourceShiprocket
}

// DeliveryType represents the shipping speed
type DeliveryType string

const (
	DeliveryStandard DeliveryType = "Standard"
	DeliveryExpress  DeliveryType = "Express"
)

// Known reports whether the delivery type is recognised
func (d DeliveryType) Known() bool {
	return d == DeliveryStandard || d == DeliveryExpress
}

// PaymentMethod represents how the customer pays
type PaymentMethod string

const (
	PaymentPrepaid PaymentMethod = "Prepaid"
	PaymentCOD     PaymentMethod = "COD"
)

// Known reports whether the payment method is recognised
func (p PaymentMethod) Known() bool {
	return p == PaymentPrepaid || p == PaymentCOD
}

// RiskTier is the return-to-origin risk of an order
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// Known reports whether the tier is recognised
func (r RiskTier) Known() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// ProductList is the ordered list of product descriptions, stored as a JSON array
type ProductList []string

// Value implements driver.Valuer
func (p ProductList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Malformed stored values decode to an empty list.
func (p *ProductList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = ProductList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported products type %T", src)
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		*p = ProductList{}
		return nil
	}
	*p = items
	return nil
}

// ParseProductList accepts a JSON array or a comma-separated list
func ParseProductList(text string) ProductList {
	var items []string
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return items
	}

	list := ProductList{}
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

// Order is the canonical, channel-independent order record
type Order struct {
	ID            string        `json:"id" db:"id"`
	CustomerName  string        `json:"customer_name" db:"customer_name"`
	Email         string        `json:"email" db:"email"`
	Phone         string        `json:"phone" db:"phone"`
	Address       string        `json:"address" db:"address"`
	Source        Source        `json:"source" db:"source"`
	Products      ProductList   `json:"products" db:"products"`
	Total         string        `json:"total" db:"total"`
	Status        OrderStatus   `json:"status" db:"status"`
	Timestamp     string        `json:"timestamp" db:"timestamp"`
	Notes         string        `json:"notes" db:"notes"`
	DeliveryType  DeliveryType  `json:"delivery_type" db:"delivery_type"`
	State         string        `json:"state" db:"state"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	RiskTier      RiskTier      `json:"rto_risk" db:"rto_risk"`
}

// HasPhone reports whether the order carries a usable phone number
func (o *Order) HasPhone() bool {
	return HasPhone(o.Phone)
}

// HasPhone reports whether phone identifies a customer
func HasPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	return phone != "" && phone != NoPhone
}

// OrderWithCustomer is an order enriched with its customer's profile summary
type OrderWithCustomer struct {
	Order
	IsRepeatCustomer    bool     `json:"is_repeat_customer"`
	CustomerTotalOrders int      `json:"customer_total_orders"`
	CustomerTotalSpent  string   `json:"customer_total_spent"`
	CustomerTags        []string `json:"customer_tags"`
}

// DailySummary counts orders per day and status
type DailySummary struct {
	Day       string `json:"day"`
	Total     int    `json:"total"`
	Pending   int    `json:"pending"`
	Confirmed int    `json:"confirmed"`
	Cancelled int    `json:"cancelled"`
	CallAgain int    `json:"call_again"`
}
