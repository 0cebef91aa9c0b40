package di

import (
	"log/slog"

	"pattern_scanner/internal/app/config"
	candleadapters "pattern_scanner/internal/feature/candles/adapters"
	candleusecase "pattern_scanner/internal/feature/candles/usecase"
	"pattern_scanner/internal/feature/signals/scoring"
	"pattern_scanner/internal/platform/cache"
	"pattern_scanner/internal/platform/conflict"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewCandleRepository returns the gorm candle store, wrapped by the Redis
// cache when rdb is available.
func NewCandleRepository(cfg config.Config, db *gorm.DB, rdb *redis.Client) candleusecase.CandleRepository {
	base := candleadapters.NewCandleRepository(db)
	if rdb == nil {
		return base
	}
	return cache.NewCachingCandleRepository(rdb, cfg.CacheTTL, base, cfg.CacheNamespace, cfg.Location)
}

// NewConflictTracker picks the tracker named by CONFLICT_BACKEND.
// The redis backend falls back to in-process state when Redis is unavailable.
func NewConflictTracker(cfg config.Config, rdb *redis.Client) scoring.ConflictTracker {
	if cfg.ConflictBackend == config.BackendRedis {
		if rdb != nil {
			return conflict.NewRedisTracker(rdb, "")
		}
		slog.Warn("Redis unavailable; conflict tracking is per process")
	}
	return scoring.NewMemoryTracker()
}
