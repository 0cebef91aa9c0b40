// Package config loads process configuration from .env and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	KeyMarketTimezone      = "MARKET_TIMEZONE"
	KeyScanIntervalMinutes = "SCAN_INTERVAL_MINUTES"
	KeyScanWorkers         = "SCAN_WORKERS"
	KeyHTTPAddr            = "HTTP_ADDR"
	KeyNATSURL             = "NATS_URL"
	KeyConflictBackend     = "CONFLICT_BACKEND"
	KeyCacheNamespace      = "CACHE_NAMESPACE"
	KeyCacheTTL            = "CACHE_TTL"
	KeyJWTSecret           = "JWT_SECRET"
	KeyJWTExpiration       = "JWT_EXPIRATION"
	KeyIngestRatePerMinute = "INGEST_RATE_PER_MINUTE"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the application-level configuration shared by cmd/server and cmd/scanner.
type Config struct {
	MarketTimezone      string
	Location            *time.Location
	ScanIntervalMinutes int
	ScanWorkers         int
	HTTPAddr            string
	NATSURL             string // 空なら配信しない
	ConflictBackend     string
	CacheNamespace      string
	CacheTTL            time.Duration // 0 なら翌営業日の切替まで
	JWTSecret           string
	JWTExpiration       time.Duration
	IngestRatePerMinute int
}

// LoadDotEnv reads path into the environment. A missing file is not an error.
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		slog.Info(".env not found; using system environment variables", "path", path)
	}
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetDefault(KeyMarketTimezone, "UTC")
	v.SetDefault(KeyScanIntervalMinutes, 5)
	v.SetDefault(KeyScanWorkers, 4)
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyNATSURL, "")
	v.SetDefault(KeyConflictBackend, BackendMemory)
	v.SetDefault(KeyCacheNamespace, "candles")
	v.SetDefault(KeyCacheTTL, time.Duration(0))
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyJWTExpiration, 24*time.Hour)
	v.SetDefault(KeyIngestRatePerMinute, 8)
}

// Load reads and validates the configuration from v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		MarketTimezone:      v.GetString(KeyMarketTimezone),
		ScanIntervalMinutes: v.GetInt(KeyScanIntervalMinutes),
		ScanWorkers:         v.GetInt(KeyScanWorkers),
		HTTPAddr:            v.GetString(KeyHTTPAddr),
		NATSURL:             v.GetString(KeyNATSURL),
		ConflictBackend:     v.GetString(KeyConflictBackend),
		CacheNamespace:      v.GetString(KeyCacheNamespace),
		CacheTTL:            v.GetDuration(KeyCacheTTL),
		JWTSecret:           v.GetString(KeyJWTSecret),
		JWTExpiration:       v.GetDuration(KeyJWTExpiration),
		IngestRatePerMinute: v.GetInt(KeyIngestRatePerMinute),
	}

	loc, err := time.LoadLocation(cfg.MarketTimezone)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, KeyMarketTimezone, cfg.MarketTimezone, err)
	}
	cfg.Location = loc

	if cfg.ScanIntervalMinutes <= 0 || cfg.ScanIntervalMinutes > 1440 {
		return Config{}, fmt.Errorf("%w: %s must be in 1..1440, got %d", ErrInvalidConfig, KeyScanIntervalMinutes, cfg.ScanIntervalMinutes)
	}
	if cfg.ScanWorkers <= 0 {
		return Config{}, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, KeyScanWorkers, cfg.ScanWorkers)
	}
	switch cfg.ConflictBackend {
	case BackendMemory, BackendRedis:
	default:
		return Config{}, fmt.Errorf("%w: %s must be %q or %q, got %q", ErrInvalidConfig, KeyConflictBackend, BackendMemory, BackendRedis, cfg.ConflictBackend)
	}
	if cfg.IngestRatePerMinute <= 0 {
		cfg.IngestRatePerMinute = 1
	}
	return cfg, nil
}
