package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"orderdesk/internal/models"
	"orderdesk/internal/repository"
)

// OrderWriter upserts canonical orders without losing operator-owned fields
type OrderWriter struct {
	orders   repository.OrderRepository
	notifier Notifier
	logger   *zap.Logger
}

// NewOrderWriter creates a new merge-writer
func NewOrderWriter(orders repository.OrderRepository, notifier Notifier, logger *zap.Logger) *OrderWriter {
	return &OrderWriter{
		orders:   orders,
		notifier: notifier,
		logger:   logger.Named("order_writer"),
	}
}

// Upsert merges the order with any stored copy and writes it. Writing the same
// order twice leaves the stored row unchanged.
func (w *OrderWriter) Upsert(ctx context.Context, order *models.Order) error {
	existing, err := w.orders.GetByID(ctx, order.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to load existing order: %w", err)
	}

	merged := mergeOrder(order, existing)
	if err := w.orders.Upsert(ctx, merged); err != nil {
		return err
	}

	w.logger.Debug("Order written",
		zap.String("order_id", merged.ID),
		zap.String("source", string(merged.Source)),
		zap.Bool("replay", existing != nil),
	)

	if merged.HasPhone() {
		w.notifier.Notify(ctx, Event{Kind: EventOrderWritten, Phone: merged.Phone})
	}
	return nil
}

// mergeOrder resolves the preservable fields. Notes and delivery type belong to
// the operator, so the stored value wins over the incoming one; email, state,
// payment method and risk tier take the incoming value first. Both fall back to
// the default when neither side has a value. Every other field is taken from
// the incoming order.
func mergeOrder(incoming, existing *models.Order) *models.Order {
	merged := *incoming
	if merged.Products == nil {
		merged.Products = models.ProductList{}
	}

	var stored models.Order
	if existing != nil {
		stored = *existing
	}

	merged.Notes = preserve(stored.Notes, incoming.Notes, "")
	merged.DeliveryType = models.DeliveryType(preserve(string(stored.DeliveryType), string(incoming.DeliveryType), string(models.DeliveryStandard)))

	merged.Email = preserve(incoming.Email, stored.Email, "")
	merged.State = preserve(incoming.State, stored.State, "")
	merged.PaymentMethod = models.PaymentMethod(preserve(string(incoming.PaymentMethod), string(stored.PaymentMethod), string(models.PaymentPrepaid)))
	merged.RiskTier = models.RiskTier(preserve(string(incoming.RiskTier), string(stored.RiskTier), string(models.RiskLow)))

	return &merged
}

// preserve returns preferred when non-empty, else fallback when non-empty, else def
func preserve(preferred, fallback, def string) string {
	if preferred != "" {
		return preferred
	}
	if fallback != "" {
		return fallback
	}
	return def
}
