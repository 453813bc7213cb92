// Package cache provides the redis-backed report cache. Profit figures
// over a fixed date range are immutable once every sale in the range is
// terminal, which makes them cheap to cache for short TTLs.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tillbook/internal/domain/profit"
	"tillbook/pkg/logger"
)

// Config holds redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ProfitCache implements profit.Cache on top of redis. Failures are
// logged and treated as cache misses; the report still renders from
// the database.
type ProfitCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfitCache connects to redis and verifies the connection.
func NewProfitCache(ctx context.Context, cfg Config) (*ProfitCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ProfitCache{client: client, ttl: ttl}, nil
}

// Close releases the redis connection.
func (c *ProfitCache) Close() error {
	return c.client.Close()
}

func summaryKey(filter profit.Filter) string {
	return fmt.Sprintf("tillbook:profit:summary:%d:%d",
		filter.From.UTC().Unix(), filter.To.UTC().Unix())
}

// GetSummary returns a cached summary for the range, if present.
func (c *ProfitCache) GetSummary(ctx context.Context, filter profit.Filter) (*profit.Summary, bool) {
	data, err := c.client.Get(ctx, summaryKey(filter)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx, "profit cache read failed", "error", err)
		}
		return nil, false
	}

	var summary profit.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		logger.Warn(ctx, "profit cache decode failed", "error", err)
		return nil, false
	}

	return &summary, true
}

// SetSummary stores a summary for the range.
func (c *ProfitCache) SetSummary(ctx context.Context, filter profit.Filter, summary profit.Summary) {
	data, err := json.Marshal(summary)
	if err != nil {
		logger.Warn(ctx, "profit cache encode failed", "error", err)
		return
	}

	if err := c.client.Set(ctx, summaryKey(filter), data, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "profit cache write failed", "error", err)
	}
}

var _ profit.Cache = (*ProfitCache)(nil)
