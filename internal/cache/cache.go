// Package cache holds read-through caches for customer profiles.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"orderdesk/internal/config"
	"orderdesk/internal/models"
)

// ProfileCache caches customer profiles by phone. A miss returns nil, nil.
type ProfileCache interface {
	Get(ctx context.Context, phone string) (*models.Customer, error)
	Set(ctx context.Context, customer *models.Customer) error
	Invalidate(ctx context.Context, phone string) error
	Close() error
}

func profileKey(phone string) string {
	return fmt.Sprintf("orderdesk:customer:%s", phone)
}

// New returns a Redis cache when a host is configured. Without Redis, inline
// aggregation gets a process-local cache; async aggregation gets none, since
// the worker recomputes profiles in another process and could not invalidate it.
func New(cfg *config.Config, logger *zap.Logger) (ProfileCache, error) {
	addr := cfg.GetRedisAddr()
	if addr == "" {
		if !cfg.IsAsyncAggregation() && cfg.Redis.TTL > 0 {
			logger.Info("Redis not configured, using in-memory profile cache", zap.Duration("ttl", cfg.Redis.TTL))
			return NewMemoryProfileCache(cfg.Redis.TTL), nil
		}
		logger.Info("Redis not configured, profile cache disabled")
		return NoopProfileCache{}, nil
	}

	c, err := NewRedisProfileCache(addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Profile cache enabled", zap.String("addr", addr))
	return c, nil
}

// NoopProfileCache never stores anything
type NoopProfileCache struct{}

func (NoopProfileCache) Get(ctx context.Context, phone string) (*models.Customer, error) {
	return nil, nil
}

func (NoopProfileCache) Set(ctx context.Context, customer *models.Customer) error { return nil }

func (NoopProfileCache) Invalidate(ctx context.Context, phone string) error { return nil }

func (NoopProfileCache) Close() error { return nil }

type memoryEntry struct {
	customer  models.Customer
	expiresAt time.Time
}

// MemoryProfileCache keeps profiles in process memory for a single API instance
type MemoryProfileCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryProfileCache creates an in-memory cache with the given TTL
func NewMemoryProfileCache(ttl time.Duration) *MemoryProfileCache {
	return &MemoryProfileCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryProfileCache) Get(ctx context.Context, phone string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[phone]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, nil
	}
	customer := e.customer
	return &customer, nil
}

func (m *MemoryProfileCache) Set(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[customer.Phone] = memoryEntry{customer: *customer, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryProfileCache) Invalidate(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, phone)
	return nil
}

func (m *MemoryProfileCache) Close() error { return nil }
