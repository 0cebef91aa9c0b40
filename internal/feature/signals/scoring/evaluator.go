// Package scoring turns detected patterns into priced entry signals and
// re-scores, merges and filters them.
package scoring

import (
	"fmt"
	"math"

	"pattern_scanner/internal/feature/signals/domain/entity"
)

const (
	stopBuffer = 0.01

	baseRewardMultiplier   = 3.0
	strongRewardMultiplier = 4.0
	strongConfidence       = 85.0
)

// Evaluate prices a pattern into an entry signal. It reports false for a
// neutral pattern, a match without candles, or a stop on the wrong side of
// the entry.
func Evaluate(p entity.PatternMatch) (entity.EntrySignal, bool) {
	last, ok := p.Last()
	if !ok {
		return entity.EntrySignal{}, false
	}

	var dir entity.Direction
	switch p.Kind.Polarity() {
	case entity.Bullish:
		dir = entity.Long
	case entity.Bearish:
		dir = entity.Short
	default:
		return entity.EntrySignal{}, false
	}

	entry := last.TypicalPrice()
	var stop float64
	if dir == entity.Long {
		level := last.Low
		if p.SupportLevel != nil {
			level = *p.SupportLevel
		}
		stop = level * (1 - stopBuffer)
	} else {
		level := last.High
		if p.ResistanceLevel != nil {
			level = *p.ResistanceLevel
		}
		stop = level * (1 + stopBuffer)
	}

	risk := math.Abs(entry - stop)
	if risk <= 0 || (dir == entity.Long && stop >= entry) || (dir == entity.Short && stop <= entry) {
		return entity.EntrySignal{}, false
	}

	mult := baseRewardMultiplier
	if p.Confidence >= strongConfidence && p.HasVolumeConfirmation {
		mult = strongRewardMultiplier
	}
	reward := risk * mult
	target := entry + reward
	if dir == entity.Short {
		target = entry - reward
	}
	rr := reward / risk

	var ratio float64
	if p.AverageVolume > 0 {
		ratio = last.Volume / p.AverageVolume
	}

	quality := Quality(p.Confidence, p.HasVolumeConfirmation, rr, p.Kind)
	return entity.EntrySignal{
		Symbol:                p.Symbol,
		Kind:                  p.Kind,
		Time:                  p.Time,
		EntryPrice:            entry,
		StopLoss:              stop,
		Target:                target,
		RiskAmount:            risk,
		RewardAmount:          reward,
		RiskRewardRatio:       rr,
		Confidence:            p.Confidence,
		HasVolumeConfirmation: p.HasVolumeConfirmation,
		Quality:               quality,
		Urgency:               UrgencyFor(quality, p.HasVolumeConfirmation),
		Direction:             dir,
		Reason:                fmt.Sprintf("%s (confidence %.0f, R:R %.1f)", p.Description, p.Confidence, rr),
		Volume:                last.Volume,
		AverageVolume:         p.AverageVolume,
		VolumeRatio:           ratio,
	}, true
}

// Quality scores a signal on 0..100 from confidence, volume, reward/risk and pattern strength.
func Quality(confidence float64, hasVolume bool, rr float64, kind entity.PatternKind) float64 {
	q := confidence * 0.4
	if hasVolume {
		q += 20
	}
	switch {
	case rr >= 4:
		q += 20
	case rr >= 3:
		q += 15
	case rr >= 2:
		q += 10
	}
	q += kind.StrengthPoints()
	return clamp(q, 0, 100)
}

// UrgencyFor derives urgency from quality and volume confirmation.
func UrgencyFor(quality float64, hasVolume bool) entity.Urgency {
	switch {
	case quality >= 85 && hasVolume:
		return entity.UrgencyImmediate
	case quality >= 75:
		return entity.UrgencyHigh
	case quality >= 60:
		return entity.UrgencyModerate
	default:
		return entity.UrgencyLow
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
