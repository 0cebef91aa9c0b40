// Package usecase runs the detection pipeline over stored candles and hands
// accepted signals to persistence and publishing.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
	candleusecase "pattern_scanner/internal/feature/candles/usecase"
	"pattern_scanner/internal/feature/signals/domain/entity"
	"pattern_scanner/internal/feature/signals/scoring"
)

// Rejection stages reported to the metrics recorder.
const (
	StageEvaluate = "evaluate"
	StageValidity = "validity"
	StageGate     = "gate"
)

// CandleSource supplies ascending candles for a symbol and trading date.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CandleSource interface {
	GetCandles(ctx context.Context, symbol, date string, intervalMinutes int) ([]candle.Candle, error)
}

// PatternDetector finds formations in an ascending candle sequence.
type PatternDetector interface {
	Detect(candles []candle.Candle) []entity.PatternMatch
}

// SignalRepository persists accepted signals.
type SignalRepository interface {
	SaveBatch(ctx context.Context, signals []entity.EntrySignal) error
	Find(ctx context.Context, symbol string, from, to time.Time) ([]entity.EntrySignal, error)
}

// SignalPublisher fans accepted signals out to subscribers.
type SignalPublisher interface {
	Publish(ctx context.Context, signal entity.EntrySignal) error
}

// Recorder receives pipeline counters. See platform/metrics.
type Recorder interface {
	PatternDetected(kind entity.PatternKind)
	SignalAccepted(kind entity.PatternKind)
	SignalRejected(stage string)
	ScanCompleted(symbol string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) PatternDetected(entity.PatternKind)  {}
func (nopRecorder) SignalAccepted(entity.PatternKind)   {}
func (nopRecorder) SignalRejected(string)               {}
func (nopRecorder) ScanCompleted(string, time.Duration) {}

// ScanResult is the outcome of one pipeline run.
type ScanResult struct {
	Symbol          string
	Date            string
	IntervalMinutes int
	Patterns        []entity.PatternMatch
	Signals         []entity.EntrySignal
}

// ScanUsecase orchestrates detection, scoring and filtering.
type ScanUsecase struct {
	candles   CandleSource
	detectors []PatternDetector
	enhancer  *scoring.Enhancer
	tracker   scoring.ConflictTracker
	signals   SignalRepository
	publisher SignalPublisher
	metrics   Recorder
	loc       *time.Location
	workers   int
}

// Option customises a ScanUsecase.
type Option func(*ScanUsecase)

// WithRepository persists accepted signals in Run.
func WithRepository(r SignalRepository) Option { return func(u *ScanUsecase) { u.signals = r } }

// WithPublisher publishes accepted signals in Run.
func WithPublisher(p SignalPublisher) Option { return func(u *ScanUsecase) { u.publisher = p } }

// WithRecorder reports pipeline metrics.
func WithRecorder(r Recorder) Option { return func(u *ScanUsecase) { u.metrics = r } }

// WithWorkers bounds how many symbols ScanAll processes at once.
func WithWorkers(n int) Option { return func(u *ScanUsecase) { u.workers = n } }

// WithLocation sets the market zone used to interpret dates in GetSignals.
func WithLocation(loc *time.Location) Option { return func(u *ScanUsecase) { u.loc = loc } }

// NewScanUsecase wires the pipeline. trend feeds the enhancer; tracker holds
// conflict state and is shared by every scan run through this usecase.
func NewScanUsecase(candles CandleSource, trend scoring.TrendReader, tracker scoring.ConflictTracker, detectors []PatternDetector, opts ...Option) *ScanUsecase {
	if tracker == nil {
		tracker = scoring.NewMemoryTracker()
	}
	u := &ScanUsecase{
		candles:   candles,
		detectors: detectors,
		enhancer:  scoring.NewEnhancer(trend, tracker),
		tracker:   tracker,
		metrics:   nopRecorder{},
		loc:       time.UTC,
		workers:   4,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.workers <= 0 {
		u.workers = 1
	}
	return u
}

// Scan runs the full pipeline for one symbol and date.
func (u *ScanUsecase) Scan(ctx context.Context, symbol, date string, intervalMinutes int) (ScanResult, error) {
	start := time.Now()
	res := ScanResult{Symbol: symbol, Date: date, IntervalMinutes: intervalMinutes}

	cs, err := u.candles.GetCandles(ctx, symbol, date, intervalMinutes)
	if err != nil {
		return res, err
	}
	if err := candleusecase.VerifyAscending(cs); err != nil {
		slog.Error("refusing to scan unsorted candles", "symbol", symbol, "date", date, "error", err)
		return res, err
	}

	res.Patterns = u.detect(cs)
	res.Signals = u.score(ctx, cs, res.Patterns)

	u.metrics.ScanCompleted(symbol, time.Since(start))
	return res, nil
}

func (u *ScanUsecase) detect(cs []candle.Candle) []entity.PatternMatch {
	var matches []entity.PatternMatch
	for _, d := range u.detectors {
		matches = append(matches, d.Detect(cs)...)
	}
	// conflict tracking is order sensitive; process matches in time order
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].Time.Equal(matches[j].Time) {
			return matches[i].Time.Before(matches[j].Time)
		}
		return matches[i].Kind < matches[j].Kind
	})
	for _, m := range matches {
		u.metrics.PatternDetected(m.Kind)
	}
	return matches
}

func (u *ScanUsecase) score(ctx context.Context, cs []candle.Candle, matches []entity.PatternMatch) []entity.EntrySignal {
	var enhanced []entity.EntrySignal
	for _, m := range matches {
		sig, ok := scoring.Evaluate(m)
		if !ok {
			u.metrics.SignalRejected(StageEvaluate)
			continue
		}
		if err := scoring.CheckValidity(sig); err != nil {
			u.metrics.SignalRejected(StageValidity)
			continue
		}
		enhanced = append(enhanced, u.enhancer.Enhance(ctx, m, upTo(cs, m.Time), sig))
	}

	merged := scoring.Merge(enhanced)
	accepted := make([]entity.EntrySignal, 0, len(merged))
	for _, s := range merged {
		if !scoring.Passes(s.Kind, s.Quality, s.HasVolumeConfirmation) {
			u.metrics.SignalRejected(StageGate)
			continue
		}
		u.metrics.SignalAccepted(s.Kind)
		accepted = append(accepted, s)
	}
	return accepted
}

// upTo returns the prefix of ascending candles with Time <= at.
func upTo(cs []candle.Candle, at time.Time) []candle.Candle {
	n := sort.Search(len(cs), func(i int) bool { return cs[i].Time.After(at) })
	return cs[:n]
}

// ScanAll scans symbols concurrently. A failing symbol is logged and left out
// of the result; only cancellation aborts the run. Results keep symbol order.
func (u *ScanUsecase) ScanAll(ctx context.Context, symbols []string, date string, intervalMinutes int) ([]ScanResult, error) {
	results := make([]*ScanResult, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)
	for i, s := range symbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := u.Scan(gctx, s, date, intervalMinutes)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				slog.Error("failed to scan symbol", "symbol", s, "date", date, "error", err)
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]ScanResult, 0, len(symbols))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Run scans symbols, then persists and publishes every accepted signal.
// It returns the number of signals handed on.
func (u *ScanUsecase) Run(ctx context.Context, symbols []string, date string, intervalMinutes int) (int, error) {
	results, err := u.ScanAll(ctx, symbols, date, intervalMinutes)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, r := range results {
		if len(r.Signals) == 0 {
			continue
		}
		if u.signals != nil {
			if err := u.signals.SaveBatch(ctx, r.Signals); err != nil {
				return total, err
			}
		}
		if u.publisher != nil {
			for _, s := range r.Signals {
				if err := u.publisher.Publish(ctx, s); err != nil {
					// 配信失敗は保存済みのシグナルに影響しないためログのみ
					slog.Warn("failed to publish signal", "symbol", s.Symbol, "pattern", s.Kind.String(), "error", err)
				}
			}
		}
		slog.Info("scan completed", "symbol", r.Symbol, "date", date, "patterns", len(r.Patterns), "signals", len(r.Signals))
		total += len(r.Signals)
	}
	return total, nil
}

// GetSignals returns persisted signals for symbol on a market-zone date.
func (u *ScanUsecase) GetSignals(ctx context.Context, symbol, date string) ([]entity.EntrySignal, error) {
	if u.signals == nil {
		return []entity.EntrySignal{}, nil
	}
	from, to, err := candleusecase.DayWindow(date, u.loc)
	if err != nil {
		return nil, err
	}
	out, err := u.signals.Find(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.EntrySignal{}
	}
	return out, nil
}

// ResetConflicts clears conflict-tracking state, typically once per trading day.
func (u *ScanUsecase) ResetConflicts(ctx context.Context) {
	u.tracker.Reset(ctx)
	slog.Info("conflict tracker reset")
}
