package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const stockKey = "stock:available"

// StockCache implements ports.StockCache using a single Redis key.
// The cached count is advisory only; allocation always re-checks the
// database under lock.
type StockCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewStockCache creates a Redis-backed stock cache.
func NewStockCache(client *goredis.Client, ttl time.Duration) *StockCache {
	return &StockCache{client: client, ttl: ttl}
}

// Get returns the cached available count. ok is false on a miss.
func (c *StockCache) Get(ctx context.Context) (int, bool, error) {
	val, err := c.client.Get(ctx, stockKey).Result()
	if err != nil {
		if err == goredis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis stock get: %w", err)
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("redis stock parse: %w", err)
	}
	return count, true, nil
}

// Set stores the available count with TTL.
func (c *StockCache) Set(ctx context.Context, count int) error {
	if err := c.client.Set(ctx, stockKey, count, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis stock set: %w", err)
	}
	return nil
}

// Invalidate drops the cached count. Called after any write that moves
// items in or out of the available state.
func (c *StockCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, stockKey).Err(); err != nil {
		return fmt.Errorf("redis stock invalidate: %w", err)
	}
	return nil
}
