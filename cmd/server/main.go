package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"pattern_scanner/internal/app/config"
	"pattern_scanner/internal/app/di"
	"pattern_scanner/internal/app/router"
	candleshandler "pattern_scanner/internal/feature/candles/transport/handler"
	candleusecase "pattern_scanner/internal/feature/candles/usecase"
	signalshandler "pattern_scanner/internal/feature/signals/transport/handler"
	signalusecase "pattern_scanner/internal/feature/signals/usecase"
	symbollistadapters "pattern_scanner/internal/feature/symbollist/adapters"
	symbollisthandler "pattern_scanner/internal/feature/symbollist/transport/handler"
	symbollistusecase "pattern_scanner/internal/feature/symbollist/usecase"
	"pattern_scanner/internal/platform/cache"
	infradb "pattern_scanner/internal/platform/db"
	"pattern_scanner/internal/platform/http/handler"
	"pattern_scanner/internal/platform/metrics"
	infraredis "pattern_scanner/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv(".env")
	cfg, err := config.Load(viper.New())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		return err
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfigFromEnv()); err != nil {
		slog.Warn("Redis unavailable. Running without cache.")
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	nc := di.ConnectNATS(cfg, "pattern-scanner-server")
	if nc != nil {
		defer nc.Close()
	}

	// Repository / Usecase
	candleRepo := di.NewCandleRepository(cfg, db, rdb)
	candlesUC := candleusecase.NewCandlesUsecase(candleRepo, cfg.Location)
	symbolUC := symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(db))
	scanUC := di.NewScanUsecase(cfg, candlesUC, db, di.NewConflictTracker(cfg, rdb), nc,
		metrics.NewScanMetrics(prometheus.DefaultRegisterer))

	go resetDaily(ctx, scanUC, cfg.Location)

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set; authenticated routes will answer 500")
	}

	r := router.NewRouter(router.Handlers{
		Candles: candleshandler.NewCandlesHandler(candlesUC),
		Signals: signalshandler.NewSignalsHandler(scanUC),
		Symbols: symbollisthandler.NewSymbolHandler(symbolUC),
		Ready:   readyChecks(db, rdb),
	}, cfg.JWTSecret)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// resetDaily clears conflict state at every market-day rollover.
func resetDaily(ctx context.Context, uc *signalusecase.ScanUsecase, loc *time.Location) {
	for {
		t := time.NewTimer(cache.TimeUntilNextDay(time.Now(), loc))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
			uc.ResetConflicts(ctx)
		}
	}
}

func readyChecks(db *gorm.DB, rdb *redisv9.Client) []handler.Check {
	checks := []handler.Check{{
		Name: "db",
		Probe: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, handler.Check{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
