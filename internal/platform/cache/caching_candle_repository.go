// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/candles/usecase"
)

// CachingCandleRepository decorates a CandleRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository.
type CachingCandleRepository struct {
	inner     usecase.CandleRepository
	rdb       *redis.Client
	ttl       time.Duration
	loc       *time.Location
	namespace string
	now       func() time.Time
}

var _ usecase.CandleRepository = (*CachingCandleRepository)(nil)

// NewCachingCandleRepository decorates a CandleRepository with Redis caching.
// A positive ttl is used as is; otherwise entries live until the next day
// rollover in loc (UTC when nil). If namespace is empty, it uses "candles".
func NewCachingCandleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CandleRepository, namespace string, loc *time.Location) *CachingCandleRepository {
	if namespace == "" {
		namespace = "candles"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CachingCandleRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		loc:       loc,
		namespace: namespace,
		now:       time.Now,
	}
}

// UpsertBatch inserts or updates candles and invalidates related cache entries.
func (c *CachingCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if err := c.inner.UpsertBatch(ctx, candles); err != nil {
		return err
	}
	if c.rdb == nil || len(candles) == 0 {
		return nil
	}

	// Invalidate affected cache entries (keys per symbol+interval)
	seen := map[string]struct{}{}
	for _, cd := range candles {
		prefix := c.cacheKeyPrefix(cd.Symbol, cd.IntervalMinutes)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		if err := c.deleteByPattern(ctx, prefix+"*"); err != nil {
			// Best effort: don't fail if cache deletion fails
			slog.Warn("failed to invalidate candle cache", "prefix", prefix, "error", err)
		}
	}
	return nil
}

// Find retrieves candles, checking cache first then falling back to the database.
func (c *CachingCandleRepository) Find(ctx context.Context, symbol string, intervalMinutes int, from, to time.Time) ([]entity.Candle, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, intervalMinutes, from, to)
	}

	key := c.cacheKey(symbol, intervalMinutes, from, to)

	// 1) Check cache
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var out []entity.Candle
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	case err != nil && err != redis.Nil:
		slog.Warn("candle cache unavailable, reading through", "key", key, "error", err)
	}

	// 2) Fallback to database
	out, err := c.inner.Find(ctx, symbol, intervalMinutes, from, to)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttlFor()).Err()
	}

	return out, nil
}

// ttlFor returns the configured ttl or the time left in the current market day.
func (c *CachingCandleRepository) ttlFor() time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return TimeUntilNextDay(c.now(), c.loc)
}

// cacheKey generates a cache key for a specific query.
func (c *CachingCandleRepository) cacheKey(symbol string, intervalMinutes int, from, to time.Time) string {
	return fmt.Sprintf("%s%d:%d", c.cacheKeyPrefix(symbol, intervalMinutes), from.Unix(), to.Unix())
}

// cacheKeyPrefix generates a prefix for invalidating related cache entries.
func (c *CachingCandleRepository) cacheKeyPrefix(symbol string, intervalMinutes int) string {
	return fmt.Sprintf("%s:%s:%d:", c.namespace, safe(symbol), intervalMinutes)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCandleRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
