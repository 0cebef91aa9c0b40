package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"pattern_scanner/internal/app/config"
	candleusecase "pattern_scanner/internal/feature/candles/usecase"
	infradb "pattern_scanner/internal/platform/db"
	infraredis "pattern_scanner/internal/platform/redis"
)

// flagKeys maps CLI flags onto config keys.
var flagKeys = map[string]string{
	"interval": config.KeyScanIntervalMinutes,
	"workers":  config.KeyScanWorkers,
}

// options are the flags shared by every subcommand.
type options struct {
	envFile string
	date    string
	symbols []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "scanner",
		Short:        "Candle ingest and chart-pattern scanning jobs",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv(opts.envFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pf.StringVarP(&opts.date, "date", "d", "", "trading date (yyyy-MM-dd) in MARKET_TIMEZONE; defaults to today")
	pf.IntP("interval", "i", 0, "candle interval in minutes (overrides SCAN_INTERVAL_MINUTES)")
	pf.StringSliceVarP(&opts.symbols, "symbols", "s", nil, "symbols to process; defaults to every active symbol")
	pf.Int("workers", 0, "parallel symbol scans (overrides SCAN_WORKERS)")

	root.AddCommand(
		newIngestCmd(opts),
		newScanCmd(opts),
		newTokenCmd(opts),
		newSymbolsCmd(opts),
	)
	return root
}

// load reads config. Flags override the environment only when given explicitly.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(v)
}

// tradingDate returns --date or today's date in the market zone.
func (o *options) tradingDate(cfg config.Config) (string, error) {
	if o.date == "" {
		return time.Now().In(cfg.Location).Format(candleusecase.DateLayout), nil
	}
	if _, err := time.Parse(candleusecase.DateLayout, o.date); err != nil {
		return "", fmt.Errorf("%w: %q", candleusecase.ErrInvalidDate, o.date)
	}
	return o.date, nil
}

// deps are the stores a batch job needs. rdb is nil when Redis is unavailable.
type deps struct {
	db  *gorm.DB
	rdb *redis.Client
}

func openDeps(ctx context.Context) (*deps, error) {
	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		return nil, err
	}
	d := &deps{db: db}
	if rdb, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfigFromEnv()); err != nil {
		slog.Warn("Redis unavailable. Running without cache.")
	} else {
		d.rdb = rdb
	}
	return d, nil
}

func (d *deps) Close() {
	if d.rdb != nil {
		if err := d.rdb.Close(); err != nil {
			slog.Error("failed to close Redis client", "error", err)
		}
	}
	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
