package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderdesk/internal/cache"
	"orderdesk/internal/metrics"
	"orderdesk/internal/models"
	"orderdesk/internal/repository"
)

// Tagging thresholds
var (
	vipSpendThreshold = decimal.NewFromInt(10000)
)

const (
	frequentBuyerOrders = 5
	highRiskCancels     = 2
	loyalConfirmed      = 3
)

// Aggregator rebuilds customer profiles from their order history
type Aggregator struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	cache     cache.ProfileCache
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewAggregator creates a new customer aggregator
func NewAggregator(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	profileCache cache.ProfileCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Aggregator {
	if profileCache == nil {
		profileCache = cache.NoopProfileCache{}
	}
	return &Aggregator{
		orders:    orders,
		customers: customers,
		cache:     profileCache,
		metrics:   m,
		logger:    logger.Named("aggregator"),
	}
}

// Recompute recalculates every aggregate of the customer owning phone,
// creating the profile first when this is the phone's first order.
func (a *Aggregator) Recompute(ctx context.Context, phone string) error {
	if !models.HasPhone(phone) {
		return nil
	}

	err := a.recompute(ctx, phone)
	if err != nil {
		a.metrics.ObserveAggregation(metrics.OutcomeFailure)
		a.logger.Error("Failed to recompute customer", zap.String("phone", phone), zap.Error(err))
		return err
	}

	a.metrics.ObserveAggregation(metrics.OutcomeSuccess)
	return nil
}

func (a *Aggregator) recompute(ctx context.Context, phone string) error {
	orders, err := a.orders.ListByPhone(ctx, phone)
	if err != nil {
		return fmt.Errorf("failed to load customer orders: %w", err)
	}

	customer, err := a.customers.GetByPhone(ctx, phone)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if len(orders) == 0 {
			return nil
		}
		customer = seedCustomer(phone, orders)
		if err := a.customers.Create(ctx, customer); err != nil {
			return err
		}
		a.logger.Info("Customer created", zap.String("phone", phone))
	case err != nil:
		return fmt.Errorf("failed to load customer: %w", err)
	}

	stats := ComputeStats(orders)
	if stats.Name == "" {
		stats.Name = customer.Name
	}
	if stats.Email == "" {
		stats.Email = customer.Email
	}

	if err := a.customers.UpdateStats(ctx, phone, stats); err != nil {
		return err
	}

	if err := a.cache.Invalidate(ctx, phone); err != nil {
		a.logger.Warn("Failed to invalidate cached profile", zap.String("phone", phone), zap.Error(err))
	}

	a.logger.Debug("Customer recomputed",
		zap.String("phone", phone),
		zap.Int("total_orders", stats.TotalOrders),
		zap.Strings("tags", stats.Tags),
	)
	return nil
}

// seedCustomer builds a new profile from the phone's most recent order
func seedCustomer(phone string, orders []*models.Order) *models.Customer {
	latest := chronological(orders)[len(orders)-1]
	return &models.Customer{
		Phone:          phone,
		Name:           latest.CustomerName,
		Email:          latest.Email,
		FirstOrderDate: latest.Timestamp,
		LastOrderDate:  latest.Timestamp,
		Tags:           []string{models.TagNewCustomer},
	}
}

// ComputeStats derives the full customer aggregate from its order set
func ComputeStats(orders []*models.Order) *models.CustomerStats {
	stats := &models.CustomerStats{
		TotalSpent: decimal.Zero,
		Addresses:  []string{},
		States:     []string{},
	}

	ordered := chronological(orders)
	addresses := newDistinct()
	states := newDistinct()
	payments := newModeCounter()
	deliveries := newModeCounter()

	for i, order := range ordered {
		stats.TotalOrders++

		switch order.Status {
		case models.OrderStatusConfirmed:
			stats.ConfirmedOrders++
			stats.TotalSpent = stats.TotalSpent.Add(parseTotal(order.Total))
		case models.OrderStatusCancelled:
			stats.CancelledOrders++
		}

		if order.RiskTier == models.RiskHigh {
			stats.RTOCount++
		}

		if strings.Trim(order.Address, ", ") != "" {
			addresses.add(order.Address)
		}
		states.add(strings.TrimSpace(order.State))
		payments.add(string(order.PaymentMethod), i)
		deliveries.add(string(order.DeliveryType), i)

		if order.Timestamp != "" {
			if stats.FirstOrderDate == "" {
				stats.FirstOrderDate = order.Timestamp
			}
			stats.LastOrderDate = order.Timestamp
		}
		if order.CustomerName != "" {
			stats.Name = order.CustomerName
		}
		if order.Email != "" {
			stats.Email = order.Email
		}
	}

	stats.Addresses = addresses.values
	stats.States = states.values
	stats.PreferredPayment = payments.mode()
	stats.PreferredDelivery = deliveries.mode()
	stats.Tags = computeTags(stats)

	return stats
}

func computeTags(stats *models.CustomerStats) []string {
	tags := []string{}
	if stats.TotalSpent.GreaterThan(vipSpendThreshold) {
		tags = append(tags, models.TagVIP, models.TagHighValue)
	}
	if stats.TotalOrders >= frequentBuyerOrders {
		tags = append(tags, models.TagFrequentBuyer)
	}
	if stats.CancelledOrders > highRiskCancels {
		tags = append(tags, models.TagHighRisk)
	}
	if stats.TotalOrders == 1 {
		tags = append(tags, models.TagNewCustomer)
	}
	if stats.ConfirmedOrders >= loyalConfirmed {
		tags = append(tags, models.TagLoyal)
	}
	return tags
}

// parseTotal keeps only digits and '.', rounding to cents. Anything that still
// does not parse counts as zero.
func parseTotal(total string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, total)

	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}

// chronological returns the orders oldest first. Ties keep their input order.
func chronological(orders []*models.Order) []*models.Order {
	sorted := make([]*models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

type distinct struct {
	seen   map[string]struct{}
	values []string
}

func newDistinct() *distinct {
	return &distinct{seen: map[string]struct{}{}, values: []string{}}
}

func (d *distinct) add(v string) {
	if v == "" {
		return
	}
	if _, ok := d.seen[v]; ok {
		return
	}
	d.seen[v] = struct{}{}
	d.values = append(d.values, v)
}

// modeCounter finds the most frequent non-empty value. Ties go to the value
// seen most recently.
type modeCounter struct {
	counts   map[string]int
	lastSeen map[string]int
}

func newModeCounter() *modeCounter {
	return &modeCounter{counts: map[string]int{}, lastSeen: map[string]int{}}
}

func (m *modeCounter) add(v string, position int) {
	if v == "" {
		return
	}
	m.counts[v]++
	m.lastSeen[v] = position
}

func (m *modeCounter) mode() string {
	best := ""
	for v, n := range m.counts {
		if best == "" ||
			n > m.counts[best] ||
			(n == m.counts[best] && m.lastSeen[v] > m.lastSeen[best]) {
			best = v
		}
	}
	return best
}
