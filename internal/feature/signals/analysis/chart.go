package analysis

import (
	"math"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/signals/domain/entity"
)

const (
	chartWindow       = 30
	minChartCandles   = 15
	minWedgeCandles   = 20
	minSwingPoints    = 4
	wedgeLowTolerance = 0.001
	flatSlope         = 0.002
	risingSlope       = 0.0005
	nearBreakout      = 0.95

	flagPoleLen  = 5
	flagLen      = 10
	minPoleMove  = 0.03
	maxFlagRange = 0.05
	minFlagDrift = -0.04
	maxFlagDrift = 0.01

	doubleTolerance = 0.03
	doubleMinGap    = 5
	neckline        = 0.96
)

// ChartDetector finds multi-swing formations over a sliding window of up to
// 30 candles. The zero value is ready to use.
type ChartDetector struct{}

// Detect slides a window over candles, ending at each index from the 15th
// candle on. A kind that fired for the previous window is not reported again
// until it stops firing.
func (d ChartDetector) Detect(candles []candle.Candle) []entity.PatternMatch {
	var out []entity.PatternMatch
	active := map[entity.PatternKind]bool{}

	for end := minChartCandles; end <= len(candles); end++ {
		start := max(0, end-chartWindow)
		found := d.detectWindow(candles[start:end])

		fired := make(map[entity.PatternKind]bool, len(found))
		for _, m := range found {
			fired[m.Kind] = true
			if !active[m.Kind] {
				out = append(out, m)
			}
		}
		active = fired
	}
	return out
}

func (ChartDetector) detectWindow(w []candle.Candle) []entity.PatternMatch {
	var out []entity.PatternMatch
	highs, lows := FindSwings(w, swingLookback)
	avgVol := averageVolume(w)
	last := w[len(w)-1]

	add := func(kind entity.PatternKind, support, resistance float64, desc string) {
		m := newMatch(kind, w, avgVol, last.Volume, desc)
		m.SupportLevel = entity.Price(support)
		m.ResistanceLevel = entity.Price(resistance)
		out = append(out, m)
	}

	if len(w) >= minWedgeCandles && len(highs)+len(lows) >= minSwingPoints && len(highs) >= 2 && len(lows) >= 2 {
		hs, ls := regressionSlope(highs), regressionSlope(lows)
		lastHigh, lastLow := highs[len(highs)-1].Price, lows[len(lows)-1].Price

		if hs < 0 && ls < wedgeLowTolerance && math.Abs(ls) < math.Abs(hs) && last.Close > nearBreakout*lastHigh {
			add(entity.FallingWedge, lastLow, lastHigh, "falling wedge: converging lower highs near breakout")
		}
		if ls > 0 && hs > -wedgeLowTolerance && math.Abs(hs) < math.Abs(ls) && last.Close < (2-nearBreakout)*lastLow {
			add(entity.RisingWedge, lastLow, lastHigh, "rising wedge: converging higher lows near breakdown")
		}
		if math.Abs(hs) < flatSlope && ls > risingSlope && last.Close > nearBreakout*lastHigh {
			add(entity.AscendingTriangle, lastLow, lastHigh, "ascending triangle: flat resistance, rising support")
		}
		if math.Abs(ls) < flatSlope && hs < -risingSlope && last.Close < (2-nearBreakout)*lastLow {
			add(entity.DescendingTriangle, lastLow, lastHigh, "descending triangle: flat support, falling resistance")
		}
	}

	if len(w) >= minChartCandles {
		n := len(w)
		pole := w[n-minChartCandles : n-minChartCandles+flagPoleLen]
		flag := w[n-flagLen:]
		poleMove := pctChange(pole[0].Open, pole[len(pole)-1].Close) / 100
		hi, lo := maxHigh(flag), minLow(flag)
		drift := pctChange(flag[0].Close, flag[len(flag)-1].Close) / 100

		if lo > 0 && (hi-lo)/lo <= maxFlagRange {
			if poleMove >= minPoleMove && drift >= minFlagDrift && drift <= maxFlagDrift && last.Close > nearBreakout*hi {
				add(entity.BullFlag, lo, hi, "bull flag: tight consolidation after sharp advance")
			}
			if poleMove <= -minPoleMove && drift <= -minFlagDrift && drift >= -maxFlagDrift && last.Close < (2-nearBreakout)*lo {
				add(entity.BearFlag, lo, hi, "bear flag: tight consolidation after sharp decline")
			}
		}

		if len(lows) >= 2 {
			a, b := lows[len(lows)-2], lows[len(lows)-1]
			if a.Price > 0 && math.Abs(b.Price-a.Price)/a.Price <= doubleTolerance && b.Index-a.Index >= doubleMinGap {
				neck := maxHigh(w[a.Index+1 : b.Index])
				if last.Close > neckline*neck {
					add(entity.DoubleBottom, math.Min(a.Price, b.Price), neck, "double bottom: second test of support holds")
				}
			}
		}
		if len(highs) >= 2 {
			a, b := highs[len(highs)-2], highs[len(highs)-1]
			if a.Price > 0 && math.Abs(b.Price-a.Price)/a.Price <= doubleTolerance && b.Index-a.Index >= doubleMinGap {
				neck := minLow(w[a.Index+1 : b.Index])
				if last.Close < (2-neckline)*neck {
					add(entity.DoubleTop, neck, math.Max(a.Price, b.Price), "double top: second test of resistance fails")
				}
			}
		}
	}
	return out
}
