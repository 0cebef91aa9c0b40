// Package conflict provides a Redis-backed conflict tracker so that several
// scanner processes share the same per-symbol signal history.
package conflict

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pattern_scanner/internal/feature/signals/domain/entity"
	"pattern_scanner/internal/feature/signals/scoring"
)

const (
	defaultPrefix = "conflict:"
	defaultTTL    = 24 * time.Hour
	maxTxRetries  = 100
)

// RedisTracker stores the latest (time, direction) per symbol in a hash and
// updates it under WATCH/MULTI so concurrent callers serialise per key.
type RedisTracker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

var _ scoring.ConflictTracker = (*RedisTracker)(nil)

// NewRedisTracker returns a tracker using keys under prefix ("conflict:" when empty).
func NewRedisTracker(rdb *redis.Client, prefix string) *RedisTracker {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisTracker{rdb: rdb, prefix: prefix, ttl: defaultTTL}
}

func (t *RedisTracker) key(symbol string) string { return t.prefix + symbol }

// CheckAndRecord reports a conflict with the tracked signal. Redis failures
// are logged and treated as no conflict.
func (t *RedisTracker) CheckAndRecord(ctx context.Context, symbol string, at time.Time, dir entity.Direction) bool {
	key := t.key(symbol)
	var conflict bool

	txf := func(tx *redis.Tx) error {
		conflict = false
		vals, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if prevAt, prevDir, ok := decode(vals); ok && scoring.Conflicts(prevAt, prevDir, at, dir) {
			conflict = true
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, "at", at.UnixNano(), "dir", dir.String())
			p.Expire(ctx, key, t.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := t.rdb.Watch(ctx, txf, key)
		if err == nil {
			return conflict
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		slog.Warn("conflict tracker unavailable", "symbol", symbol, "error", err)
		return false
	}
	slog.Warn("conflict tracker contention, giving up", "symbol", symbol)
	return false
}

// Reset deletes every tracked symbol.
func (t *RedisTracker) Reset(ctx context.Context) {
	var cursor uint64
	for {
		keys, cur, err := t.rdb.Scan(ctx, cursor, t.prefix+"*", 200).Result()
		if err != nil {
			slog.Warn("failed to reset conflict tracker", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := t.rdb.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("failed to reset conflict tracker", "error", err)
				return
			}
		}
		cursor = cur
		if cursor == 0 {
			return
		}
	}
}

func decode(vals map[string]string) (time.Time, entity.Direction, bool) {
	rawAt, ok := vals["at"]
	if !ok {
		return time.Time{}, 0, false
	}
	ns, err := strconv.ParseInt(rawAt, 10, 64)
	if err != nil {
		return time.Time{}, 0, false
	}
	var dir entity.Direction
	if err := dir.UnmarshalText([]byte(vals["dir"])); err != nil {
		return time.Time{}, 0, false
	}
	return time.Unix(0, ns).UTC(), dir, true
}
