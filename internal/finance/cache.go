package finance

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	summaryKeyPrefix  = "meridian:finance:summary:v"
	summaryVersionKey = "meridian:finance:summary:version"
)

// SummaryCache is a redis read-through cache for the monthly summary.
// Invalidation bumps a version counter instead of deleting keys, so a slow
// writer can never resurrect a stale snapshot; old versions simply expire.
// Concurrent builds of the same version collapse to one.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewSummaryCache constructs a SummaryCache.
func NewSummaryCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached summary for the current version, building and
// storing it on a miss. Redis failures degrade to a direct build.
func (c *SummaryCache) Get(ctx context.Context, build func(context.Context) (*Summary, error)) (*Summary, error) {
	version, err := c.client.Get(ctx, summaryVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("summary cache unavailable", slog.Any("error", err))
		return build(ctx)
	}
	key := summaryKeyPrefix + strconv.FormatInt(version, 10)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached Summary
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		c.logger.Warn("summary cache entry corrupt, rebuilding", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("summary cache read", slog.Any("error", err))
	}

	ch := c.group.DoChan(key, func() (any, error) {
		summary, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(summary); err == nil {
			if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.logger.Warn("summary cache write", slog.Any("error", err))
			}
		}
		return summary, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Summary), nil
	}
}

// Invalidate advances the cache version. Called after entry creation,
// invoice creation, ticket state changes, and reset.
func (c *SummaryCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, summaryVersionKey).Err(); err != nil {
		c.logger.Warn("summary cache invalidate", slog.Any("error", err))
	}
}
