// Package analysis detects trend direction, candlestick formations and chart
// formations in an ascending candle sequence. Everything here is pure and safe
// to call concurrently.
package analysis

import (
	"math"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/signals/domain/entity"
)

const (
	minTrendCandles     = 30
	shortTermWindow     = 20
	shortTermThreshold  = 1.5 // percent
	mediumTermWindow    = 30
	mediumTermThreshold = 3.0 // percent

	adxPeriod = 14
	maxADX    = 95.0
)

// TrendAnalyzer reads trend direction and strength from closes and ranges.
// The zero value is ready to use.
type TrendAnalyzer struct{}

// DetermineTrend reconciles a short-term and a medium-term reading.
// When the readings disagree the short-term one wins; a neutral short-term
// reading defers to the medium-term one.
func (TrendAnalyzer) DetermineTrend(candles []candle.Candle) entity.Trend {
	if len(candles) < minTrendCandles {
		return entity.TrendNeutral
	}
	short := shortTermTrend(candles)
	medium := mediumTermTrend(candles)

	switch {
	case short == medium:
		return short
	case short != entity.TrendNeutral:
		return short
	default:
		return medium
	}
}

func shortTermTrend(candles []candle.Candle) entity.Trend {
	w := tail(candles, shortTermWindow)
	half := len(w) / 2
	first := meanClose(w[:half])
	second := meanClose(w[half:])
	return classify(pctChange(first, second), shortTermThreshold)
}

func mediumTermTrend(candles []candle.Candle) entity.Trend {
	w := tail(candles, mediumTermWindow)
	q := len(w) / 4
	if q == 0 {
		return entity.TrendNeutral
	}
	first := meanClose(w[:q])
	last := meanClose(w[len(w)-q:])
	return classify(pctChange(first, last), mediumTermThreshold)
}

func classify(change, threshold float64) entity.Trend {
	switch {
	case change > threshold:
		return entity.Uptrend
	case change < -threshold:
		return entity.Downtrend
	default:
		return entity.TrendNeutral
	}
}

// CalculateADX returns a single-window ADX over the last adxPeriod deltas,
// capped at 95. Flat or too-short input yields 0.
func (TrendAnalyzer) CalculateADX(candles []candle.Candle) float64 {
	n := len(candles)
	if n < adxPeriod+1 {
		return 0
	}

	var sumPlusDM, sumMinusDM, sumTR float64
	for i := n - adxPeriod; i < n; i++ {
		cur, prev := candles[i], candles[i-1]

		up := math.Max(cur.High-prev.High, 0)
		down := math.Max(prev.Low-cur.Low, 0)
		switch {
		case up > down:
			down = 0
		case down > up:
			up = 0
		default:
			up, down = 0, 0
		}

		tr := math.Max(cur.Range(), math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))

		sumPlusDM += up
		sumMinusDM += down
		sumTR += tr
	}
	if sumTR == 0 {
		return 0
	}

	smoothTR := sumTR / adxPeriod
	plusDI := 100 * (sumPlusDM / adxPeriod) / smoothTR
	minusDI := 100 * (sumMinusDM / adxPeriod) / smoothTR
	if plusDI+minusDI == 0 {
		return 0
	}

	dx := 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	return math.Min(dx, maxADX)
}

func tail(candles []candle.Candle, n int) []candle.Candle {
	if len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}

func meanClose(candles []candle.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candles {
		sum += c.Close
	}
	return sum / float64(len(candles))
}

// pctChange returns (to-from)/from in percent, 0 when from is 0.
func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}
