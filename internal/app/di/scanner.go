package di

import (
	"log/slog"
	"time"

	"pattern_scanner/internal/app/config"
	candleusecase "pattern_scanner/internal/feature/candles/usecase"
	signaladapters "pattern_scanner/internal/feature/signals/adapters"
	"pattern_scanner/internal/feature/signals/analysis"
	"pattern_scanner/internal/feature/signals/scoring"
	"pattern_scanner/internal/feature/signals/usecase"
	natsconn "pattern_scanner/internal/platform/nats"

	"github.com/nats-io/nats.go"
	"gorm.io/gorm"
)

// Detectors returns the pattern detectors in evaluation order.
func Detectors() []usecase.PatternDetector {
	return []usecase.PatternDetector{
		analysis.CandlestickDetector{},
		analysis.ChartDetector{},
	}
}

// NewScanUsecase wires the pattern pipeline. nc may be nil (no fan-out) and
// rec may be nil (no metrics).
func NewScanUsecase(
	cfg config.Config,
	candles *candleusecase.CandlesUsecase,
	db *gorm.DB,
	tracker scoring.ConflictTracker,
	nc *nats.Conn,
	rec usecase.Recorder,
) *usecase.ScanUsecase {
	opts := []usecase.Option{
		usecase.WithRepository(signaladapters.NewSignalRepository(db)),
		usecase.WithWorkers(cfg.ScanWorkers),
		usecase.WithLocation(cfg.Location),
	}
	if nc != nil {
		opts = append(opts, usecase.WithPublisher(signaladapters.NewNATSPublisher(nc)))
	}
	if rec != nil {
		opts = append(opts, usecase.WithRecorder(rec))
	}
	return usecase.NewScanUsecase(candles, analysis.TrendAnalyzer{}, tracker, Detectors(), opts...)
}

// ConnectNATS connects when NATS_URL is set. Failures are logged and
// disable publishing rather than stopping the process.
func ConnectNATS(cfg config.Config, name string) *nats.Conn {
	if cfg.NATSURL == "" {
		return nil
	}
	nc, err := natsconn.Connect(cfg.NATSURL, name)
	if err != nil {
		slog.Warn("NATS unavailable; signals will not be published", "url", cfg.NATSURL, "error", err)
		return nil
	}
	if err := natsconn.EnsureStream(nc, 7*24*time.Hour); err != nil {
		slog.Warn("failed to ensure signal stream", "error", err)
	}
	return nc
}
