package normalize

import (
	"strings"

	"orderdesk/internal/models"
	"orderdesk/internal/risk"
)

// Shopify normalizes storefront order webhooks
type Shopify struct {
	classifier *risk.Classifier
	clock      clock
}

// NewShopify creates a Shopify normalizer
func NewShopify(classifier *risk.Classifier, opts ...Option) *Shopify {
	return &Shopify{classifier: classifier, clock: newClock(opts)}
}

func (s *Shopify) Source() models.Source {
	return models.SourceShopify
}

// Normalize maps a Shopify order payload. Risk is derived from payment method and province.
func (s *Shopify) Normalize(payload map[string]any) (*models.Order, error) {
	r := &reader{channel: models.SourceShopify}

	shipping := r.object(payload, "shipping_address")
	customer := r.object(payload, "customer")
	products := r.products(payload, "line_items")

	delivery := models.DeliveryStandard
	if strings.Contains(stringify(payload["tags"]), "Express") {
		delivery = models.DeliveryExpress
	}

	payment := models.PaymentPrepaid
	if containsAnyFold(r.text(payload, "gateway"), "cod", "cash") ||
		containsAnyFold(stringify(payload["payment_gateway_names"]), "cod", "cash") {
		payment = models.PaymentCOD
	}

	state := r.text(shipping, "province")
	name := strings.TrimSpace(r.text(customer, "first_name") + " " + r.text(customer, "last_name"))

	order := &models.Order{
		ID:            firstNonEmpty(r.text(payload, "name"), "N/A"),
		CustomerName:  firstNonEmpty(name, "Guest"),
		Email:         r.text(customer, "email"),
		Phone:         firstNonEmpty(r.text(shipping, "phone"), r.text(customer, "phone"), models.NoPhone),
		Address:       joinAddress(r.text(shipping, "address1"), r.text(shipping, "city"), r.text(shipping, "zip")),
		Source:        models.SourceShopify,
		Products:      products,
		Total:         firstNonEmpty(r.text(payload, "total_price"), "0.00"),
		Status:        models.OrderStatusPending,
		Timestamp:     s.clock.stamp(),
		DeliveryType:  delivery,
		State:         state,
		PaymentMethod: payment,
		RiskTier:      s.classifier.Classify(payment, state),
	}

	if r.err != nil {
		return nil, r.err
	}
	return order, nil
}
