package entity

import (
	"time"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
)

// PatternMatch is one detected candlestick or chart formation.
type PatternMatch struct {
	Kind                  PatternKind
	Symbol                string
	Time                  time.Time // time of the last candle in the match
	IntervalMinutes       int
	Candles               []candle.Candle // oldest to newest
	Confidence            float64         // 50..95
	Description           string
	PriceAtDetection      float64
	SupportLevel          *float64
	ResistanceLevel       *float64
	AverageVolume         float64
	HasVolumeConfirmation bool
}

// IsBullish reports whether the match implies upward movement.
func (p PatternMatch) IsBullish() bool { return p.Kind.Polarity() == Bullish }

// IsBearish reports whether the match implies downward movement.
func (p PatternMatch) IsBearish() bool { return p.Kind.Polarity() == Bearish }

// Last returns the newest candle of the match.
func (p PatternMatch) Last() (candle.Candle, bool) {
	if len(p.Candles) == 0 {
		return candle.Candle{}, false
	}
	return p.Candles[len(p.Candles)-1], true
}

// Price is a small helper for optional levels.
func Price(v float64) *float64 { return &v }
