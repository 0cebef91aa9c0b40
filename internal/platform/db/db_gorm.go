// Package db はPostgreSQLへのGORM接続とスキーマ移行を提供します。
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	candleadapters "pattern_scanner/internal/feature/candles/adapters"
	signaladapters "pattern_scanner/internal/feature/signals/adapters"
	symboladapters "pattern_scanner/internal/feature/symbollist/adapters"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultConnectTimeout = 60 * time.Second

// Config はデータベース接続設定です。
type Config struct {
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL (unix socket)
}

// LoadConfigFromEnv は環境変数から接続設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		SSLMode:      os.Getenv("DB_SSLMODE"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
	}
}

// BuildDSN はlibpq形式のDSNを生成します。InstanceNameが設定されている場合はUnixソケットを優先します。
func BuildDSN(cfg Config) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	host, port := cfg.Host, cfg.Port
	if cfg.InstanceName != "" {
		host, port = "/cloudsql/"+cfg.InstanceName, ""
	}
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		host, port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// Opener はDSNからgorm.DBを開く関数です（テストで差し替え可能）。
type Opener func(dsn string) (*gorm.DB, error)

// PostgresOpener は本番用のOpenerです。
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// ConnectWithRetry は指数バックオフで接続をリトライし、timeout経過後は最後のエラーを返します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = timeout

	var db *gorm.DB
	op := func() error {
		var err error
		db, err = open(dsn)
		return err
	}
	notify := func(err error, next time.Duration) {
		slog.Warn("DB connect failed, retrying", "error", err, "next", next)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
	}
	return db, nil
}

// OpenDB は接続し、RUN_MIGRATIONS=true の場合はスキーマを移行します。
func OpenDB(cfg Config) (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(cfg), defaultConnectTimeout, PostgresOpener)
	if err != nil {
		return nil, err
	}
	if os.Getenv("RUN_MIGRATIONS") == "true" {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate はcandles, signals, symbols テーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&candleadapters.CandleModel{},
		&signaladapters.SignalModel{},
		&symboladapters.SymbolModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
