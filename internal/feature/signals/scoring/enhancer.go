package scoring

import (
	"context"
	"log/slog"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/signals/domain/entity"
)

// ConflictMarker is appended to the reason of a conflicting signal.
const ConflictMarker = " ⚠️ CONFLICTING"

const (
	counterTrendFactor = 0.4
	withTrendFactor    = 1.2
	withTrendBoost     = 10.0

	choppyADX       = 20.0
	strongADX       = 25.0
	choppyFactor    = 0.6
	strongADXFactor = 1.15

	contextLookback = 50
)

// TrendReader is the trend analysis the enhancer depends on.
type TrendReader interface {
	DetermineTrend(candles []candle.Candle) entity.Trend
	CalculateADX(candles []candle.Candle) float64
}

// Enhancer re-scores evaluated signals with trend, ADX, price context and
// recent-signal conflicts.
type Enhancer struct {
	trend   TrendReader
	tracker ConflictTracker
}

// NewEnhancer wires an Enhancer. A nil tracker gets a fresh MemoryTracker.
func NewEnhancer(trend TrendReader, tracker ConflictTracker) *Enhancer {
	if tracker == nil {
		tracker = NewMemoryTracker()
	}
	return &Enhancer{trend: trend, tracker: tracker}
}

// Enhance returns a re-scored copy of base. candles are the symbol's candles
// up to and including the pattern's last candle.
func (e *Enhancer) Enhance(ctx context.Context, p entity.PatternMatch, candles []candle.Candle, base entity.EntrySignal) entity.EntrySignal {
	out := base
	mult := 1.0

	trend := e.trend.DetermineTrend(candles)
	switch {
	case (p.IsBullish() && trend == entity.Downtrend) || (p.IsBearish() && trend == entity.Uptrend):
		mult *= counterTrendFactor
	case (p.IsBullish() && trend == entity.Uptrend) || (p.IsBearish() && trend == entity.Downtrend):
		mult *= withTrendFactor
		out.Confidence = min(maxConfidence, out.Confidence+withTrendBoost)
	}

	adx := e.trend.CalculateADX(candles)
	switch {
	case adx < choppyADX:
		mult *= choppyFactor
	case adx > strongADX:
		mult *= strongADXFactor
	}

	mult *= contextFactor(candles, base)
	out.Quality = clamp(base.Quality*mult, 0, 100)

	if e.tracker.CheckAndRecord(ctx, base.Symbol, base.Time, base.Direction) {
		out.Quality /= 2
		out.Reason += ConflictMarker
		slog.Info("conflicting signal", "symbol", base.Symbol, "pattern", base.Kind.String(), "direction", base.Direction.String(), "time", base.Time)
	}

	out.Urgency = UrgencyFor(out.Quality, out.HasVolumeConfirmation)
	return out
}

const maxConfidence = 95.0

// contextFactor scores entry timing relative to price ~50 candles back and the
// signal's own risk profile.
func contextFactor(candles []candle.Candle, s entity.EntrySignal) float64 {
	f := 1.0

	if n := len(candles); n > 0 {
		ref := candles[0].Close
		if n >= contextLookback {
			ref = candles[n-contextLookback].Close
		}
		if ref != 0 {
			move := (s.EntryPrice - ref) / ref * 100
			if s.Direction == entity.Short {
				move = -move
			}
			switch {
			case move > 15:
				f *= 0.90
			case move >= 3 && move <= 8:
				f *= 1.05
			case move < 2:
				f *= 1.02
			}
		}
	}

	switch {
	case s.RiskRewardRatio >= 4:
		f *= 1.08
	case s.RiskRewardRatio < 2.5:
		f *= 0.95
	}

	switch rp := s.RiskPercent(); {
	case rp < 3:
		f *= 1.03
	case rp > 10:
		f *= 0.92
	}
	return f
}
