// Package entity defines the domain models for the candles feature.
package entity

import (
	"math"
	"time"
)

// dojiBodyPct is the largest body/range ratio still treated as a doji.
const dojiBodyPct = 0.10

// Candle represents OHLCV (Open, High, Low, Close, Volume) data for one
// fixed-size time bucket of a symbol.
type Candle struct {
	Symbol          string    // Ticker symbol (e.g., "AAPL"); empty for anonymous sequences
	Time            time.Time // UTC start of the bucket, aligned to IntervalMinutes
	Open            float64   // Opening price
	High            float64   // Highest price during this period
	Low             float64   // Lowest price during this period
	Close           float64   // Closing price
	Volume          float64   // Traded volume (0 when the volume feed had no match)
	IntervalMinutes int       // Bucket size in minutes
}

// BodySize returns |close-open|.
func (c Candle) BodySize() float64 { return math.Abs(c.Close - c.Open) }

// UpperShadow returns the wick above the body.
func (c Candle) UpperShadow() float64 { return c.High - math.Max(c.Open, c.Close) }

// LowerShadow returns the wick below the body.
func (c Candle) LowerShadow() float64 { return math.Min(c.Open, c.Close) - c.Low }

// Range returns high-low.
func (c Candle) Range() float64 { return c.High - c.Low }

// BodyPct returns the body as a fraction of the range, 0 for a zero-range candle.
func (c Candle) BodyPct() float64 { return c.fraction(c.BodySize()) }

// UpperShadowPct returns the upper shadow as a fraction of the range.
func (c Candle) UpperShadowPct() float64 { return c.fraction(c.UpperShadow()) }

// LowerShadowPct returns the lower shadow as a fraction of the range.
func (c Candle) LowerShadowPct() float64 { return c.fraction(c.LowerShadow()) }

// IsBullish reports close > open.
func (c Candle) IsBullish() bool { return c.Close > c.Open }

// IsBearish reports close < open.
func (c Candle) IsBearish() bool { return c.Close < c.Open }

// IsDoji reports a non-degenerate candle whose body is under 10% of its range.
func (c Candle) IsDoji() bool { return c.Range() > 0 && c.BodyPct() < dojiBodyPct }

// Midpoint returns the middle of the real body.
func (c Candle) Midpoint() float64 { return (c.Open + c.Close) / 2 }

// TypicalPrice returns (high+low+close)/3.
func (c Candle) TypicalPrice() float64 { return (c.High + c.Low + c.Close) / 3 }

func (c Candle) fraction(v float64) float64 {
	r := c.Range()
	if r <= 0 {
		return 0
	}
	return v / r
}
