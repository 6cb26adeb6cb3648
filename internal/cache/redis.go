package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"orderdesk/internal/models"
)

const defaultProfileTTL = 10 * time.Minute

// RedisProfileCache stores profiles as JSON strings in Redis
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisProfileCache connects to Redis and verifies the connection
func NewRedisProfileCache(addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*RedisProfileCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisProfileCacheWithClient(client, ttl, logger), nil
}

// NewRedisProfileCacheWithClient wraps an existing client
func NewRedisProfileCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisProfileCache{client: client, ttl: ttl, logger: logger.Named("profile_cache")}
}

func (c *RedisProfileCache) Get(ctx context.Context, phone string) (*models.Customer, error) {
	key := profileKey(phone)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile from cache: %w", err)
	}

	var customer models.Customer
	if err := json.Unmarshal(data, &customer); err != nil {
		c.logger.Warn("Dropping corrupted cache entry", zap.String("phone", phone), zap.Error(err))
		_ = c.client.Del(ctx, key).Err()
		return nil, nil
	}

	return &customer, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return nil
	}

	data, err := json.Marshal(customer)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := c.client.Set(ctx, profileKey(customer.Phone), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set profile in cache: %w", err)
	}
	return nil
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, phone string) error {
	if err := c.client.Del(ctx, profileKey(phone)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate profile: %w", err)
	}
	return nil
}

func (c *RedisProfileCache) Close() error {
	return c.client.Close()
}
