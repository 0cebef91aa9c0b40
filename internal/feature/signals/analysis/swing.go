package analysis

import candle "pattern_scanner/internal/feature/candles/domain/entity"

// swingLookback is the neighbourhood a swing point must strictly dominate.
const swingLookback = 3

// SwingPoint is a local extreme at Index within the analysed window.
type SwingPoint struct {
	Index int
	Price float64
	High  bool
}

// FindSwings returns swing highs and lows in index order. Index i qualifies
// when its high (low) is strictly above (below) every other candle in
// [i-lookback, i+lookback].
func FindSwings(candles []candle.Candle, lookback int) (highs, lows []SwingPoint) {
	for i := lookback; i < len(candles)-lookback; i++ {
		isHigh, isLow := true, true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if candles[j].High >= candles[i].High {
				isHigh = false
			}
			if candles[j].Low <= candles[i].Low {
				isLow = false
			}
		}
		if isHigh {
			highs = append(highs, SwingPoint{Index: i, Price: candles[i].High, High: true})
		}
		if isLow {
			lows = append(lows, SwingPoint{Index: i, Price: candles[i].Low})
		}
	}
	return highs, lows
}

// regressionSlope is the least-squares slope of price over index, in price
// units per candle. Fewer than two points or a degenerate fit yield 0.
func regressionSlope(points []SwingPoint) float64 {
	n := float64(len(points))
	if n < 2 {
		return 0
	}
	var sx, sy, sxy, sxx float64
	for _, p := range points {
		x := float64(p.Index)
		sx += x
		sy += p.Price
		sxy += x * p.Price
		sxx += x * x
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}
