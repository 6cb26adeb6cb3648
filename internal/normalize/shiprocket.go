package normalize

import (
	"strings"

	"orderdesk/internal/models"
)

// Shiprocket normalizes logistics platform order webhooks. The platform tags
// orders with its own risk assessment, so no classifier is involved.
type Shiprocket struct {
	clock clock
}

// NewShiprocket creates a Shiprocket normalizer
func NewShiprocket(opts ...Option) *Shiprocket {
	return &Shiprocket{clock: newClock(opts)}
}

func (s *Shiprocket) Source() models.Source {
	return models.SourceShiprocket
}

func (s *Shiprocket) Normalize(payload map[string]any) (*models.Order, error) {
	r := &reader{channel: models.SourceShiprocket}

	products := r.products(payload, "products")
	tags := shiprocketTags(payload)

	delivery := models.DeliveryStandard
	if strings.Contains(tags, "Express") {
		delivery = models.DeliveryExpress
	}

	order := &models.Order{
		ID:            shiprocketID(payload),
		CustomerName:  firstNonEmpty(r.text(payload, "customer_name"), "Guest"),
		Email:         r.text(payload, "customer_email"),
		Phone:         firstNonEmpty(r.text(payload, "customer_phone"), models.NoPhone),
		Address:       joinAddress(r.text(payload, "shipping_address"), r.text(payload, "shipping_city"), r.text(payload, "shipping_pincode")),
		Source:        models.SourceShiprocket,
		Products:      products,
		Total:         firstNonEmpty(r.text(payload, "net_total"), "0.00"),
		Status:        models.OrderStatusPending,
		Timestamp:     s.clock.stamp(),
		DeliveryType:  delivery,
		State:         r.text(payload, "shipping_state"),
		PaymentMethod: shiprocketPayment(r, payload),
		RiskTier:      tierFromTags(tags),
	}

	if r.err != nil {
		return nil, r.err
	}
	return order, nil
}

func shiprocketTags(payload map[string]any) string {
	for _, key := range []string{"tags", "order_tags"} {
		if truthy(payload[key]) {
			return stringify(payload[key])
		}
	}
	return ""
}

func shiprocketID(payload map[string]any) string {
	for _, key := range []string{"channel_order_id", "order_id"} {
		if truthy(payload[key]) {
			if id := strings.TrimSpace(stringify(payload[key])); id != "" {
				return id
			}
		}
	}
	return "N/A"
}

func shiprocketPayment(r *reader, payload map[string]any) models.PaymentMethod {
	switch {
	case containsAnyFold(r.text(payload, "payment_method"), "COD", "CASH"),
		isOne(payload["cod"]),
		truthy(payload["is_cod"]),
		containsAnyFold(r.text(payload, "payment_gateway"), "COD", "CASH"):
		return models.PaymentCOD
	}
	return models.PaymentPrepaid
}

func tierFromTags(tags string) models.RiskTier {
	switch {
	case containsAnyFold(tags, "high risk", "high_risk"):
		return models.RiskHigh
	case containsAnyFold(tags, "medium risk", "medium_risk"):
		return models.RiskMedium
	}
	return models.RiskLow
}
