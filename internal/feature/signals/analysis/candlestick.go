package analysis

import (
	"fmt"
	"math"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/signals/domain/entity"
)

const (
	// minSingleRange filters out single-candle shapes on negligible ranges.
	minSingleRange = 0.05
	// contextLookback is how many candles back single-candle context reaches.
	contextLookback = 5
	// contextMajority is the share of same-colour candles needed for context.
	contextMajority = 0.6
	// tweezerTolerance is the allowed relative difference between matching extremes.
	tweezerTolerance = 0.005
)

var baseConfidence = map[entity.PatternKind]float64{
	entity.Hammer:             70,
	entity.ShootingStar:       70,
	entity.InvertedHammer:     65,
	entity.HangingMan:         65,
	entity.Doji:               60,
	entity.SpinningTop:        60,
	entity.DragonflyDoji:      75,
	entity.GravestoneDoji:     75,
	entity.BullishEngulfing:   80,
	entity.BearishEngulfing:   80,
	entity.PiercingLine:       75,
	entity.DarkCloudCover:     75,
	entity.BullishHarami:      70,
	entity.BearishHarami:      70,
	entity.TweezerTop:         70,
	entity.TweezerBottom:      70,
	entity.MorningStar:        85,
	entity.EveningStar:        85,
	entity.ThreeWhiteSoldiers: 80,
	entity.ThreeBlackCrows:    80,
	entity.FallingWedge:       80,
	entity.RisingWedge:        80,
	entity.AscendingTriangle:  78,
	entity.DescendingTriangle: 78,
	entity.BullFlag:           75,
	entity.BearFlag:           75,
	entity.DoubleBottom:       80,
	entity.DoubleTop:          80,
}

// CandlestickDetector finds one-, two- and three-candle formations.
// The zero value is ready to use.
type CandlestickDetector struct{}

// Detect scans candles in ascending order and returns every formation found.
// Matches are ordered by the index of their last candle, then single-, two-
// and three-candle groups in that order. Sequences shorter than three candles
// yield nothing.
//
// Volume at index i is compared with the mean of candles[0..i], so a match
// scores the same whether the sequence ends at i or runs on.
func (d CandlestickDetector) Detect(candles []candle.Candle) []entity.PatternMatch {
	var out []entity.PatternMatch
	if len(candles) < 3 {
		return out
	}

	var volSum float64
	for _, c := range candles[:2] {
		volSum += c.Volume
	}
	for i := 2; i < len(candles); i++ {
		volSum += candles[i].Volume
		avgVol := volSum / float64(i+1)

		out = append(out, d.singleCandle(candles, i, avgVol)...)
		out = append(out, d.twoCandle(candles, i, avgVol)...)
		out = append(out, d.threeCandle(candles, i, avgVol)...)
	}
	return out
}

func (CandlestickDetector) singleCandle(candles []candle.Candle, i int, avgVol float64) []entity.PatternMatch {
	c := candles[i]
	if c.Range() < minSingleRange {
		return nil
	}
	window := candles[i : i+1]

	var out []entity.PatternMatch
	add := func(kind entity.PatternKind, desc string) {
		out = append(out, newMatch(kind, window, avgVol, c.Volume, desc))
	}

	switch {
	case inDowntrend(candles, i):
		if isHammerShape(c) {
			add(entity.Hammer, "hammer after decline: long lower shadow rejects lower prices")
		}
		if isInvertedHammerShape(c) {
			add(entity.InvertedHammer, "inverted hammer after decline: buyers probing higher")
		}
	case inUptrend(candles, i):
		if isHammerShape(c) {
			add(entity.HangingMan, "hanging man after advance: selling pressure below")
		}
		if isInvertedHammerShape(c) {
			add(entity.ShootingStar, "shooting star after advance: rally rejected")
		}
	}

	if c.IsDoji() {
		add(entity.Doji, "doji: indecision")
		if c.LowerShadowPct() > 0.6 && c.UpperShadowPct() < 0.1 {
			add(entity.DragonflyDoji, "dragonfly doji: lows rejected")
		}
		if c.UpperShadowPct() > 0.6 && c.LowerShadowPct() < 0.1 {
			add(entity.GravestoneDoji, "gravestone doji: highs rejected")
		}
	}
	if bp := c.BodyPct(); bp >= 0.10 && bp <= 0.30 && c.UpperShadowPct() > 0.3 && c.LowerShadowPct() > 0.3 {
		add(entity.SpinningTop, "spinning top: indecision with shadows on both sides")
	}
	return out
}

func isHammerShape(c candle.Candle) bool {
	body := c.BodySize()
	return c.BodyPct() < 0.3 &&
		c.LowerShadow() >= 2*body &&
		c.UpperShadow() < 0.3*body &&
		c.UpperShadowPct() < 0.2
}

func isInvertedHammerShape(c candle.Candle) bool {
	body := c.BodySize()
	return c.BodyPct() < 0.3 &&
		c.UpperShadow() >= 2*body &&
		c.LowerShadow() < 0.3*body &&
		c.LowerShadowPct() < 0.2
}

// inUptrend reports close[i] > close[i-5] with at least 60% of candles i-5..i bullish.
func inUptrend(candles []candle.Candle, i int) bool {
	if i < contextLookback {
		return false
	}
	if candles[i].Close <= candles[i-contextLookback].Close {
		return false
	}
	return shareOf(candles[i-contextLookback:i+1], candle.Candle.IsBullish) >= contextMajority
}

func inDowntrend(candles []candle.Candle, i int) bool {
	if i < contextLookback {
		return false
	}
	if candles[i].Close >= candles[i-contextLookback].Close {
		return false
	}
	return shareOf(candles[i-contextLookback:i+1], candle.Candle.IsBearish) >= contextMajority
}

func shareOf(candles []candle.Candle, pred func(candle.Candle) bool) float64 {
	n := 0
	for _, c := range candles {
		if pred(c) {
			n++
		}
	}
	return float64(n) / float64(len(candles))
}

func (CandlestickDetector) twoCandle(candles []candle.Candle, i int, avgVol float64) []entity.PatternMatch {
	prev, curr := candles[i-1], candles[i]
	window := candles[i-1 : i+1]

	var out []entity.PatternMatch
	add := func(kind entity.PatternKind, desc string) {
		out = append(out, newMatch(kind, window, avgVol, curr.Volume, desc))
	}

	if prev.IsBearish() && curr.IsBullish() {
		if curr.Open <= prev.Close && curr.Close >= prev.Open &&
			curr.BodySize() > prev.BodySize() && curr.BodyPct() > 0.5 {
			add(entity.BullishEngulfing, "bullish engulfing: buyers overwhelm prior selling")
		}
		if curr.Open < prev.Close && curr.Close > prev.Midpoint() && curr.Close < prev.Open {
			add(entity.PiercingLine, "piercing line: gap down recovered past prior midpoint")
		}
		if isHarami(prev, curr) {
			add(entity.BullishHarami, "bullish harami: selling contained inside prior body")
		}
		if prev.Low > 0 && math.Abs(curr.Low-prev.Low) < tweezerTolerance*prev.Low {
			add(entity.TweezerBottom, "tweezer bottom: matching lows hold support")
		}
	}

	if prev.IsBullish() && curr.IsBearish() {
		if curr.Open >= prev.Close && curr.Close <= prev.Open &&
			curr.BodySize() > prev.BodySize() && curr.BodyPct() > 0.5 {
			add(entity.BearishEngulfing, "bearish engulfing: sellers overwhelm prior buying")
		}
		if curr.Open > prev.Close && curr.Close < prev.Midpoint() && curr.Close > prev.Open {
			add(entity.DarkCloudCover, "dark cloud cover: gap up sold below prior midpoint")
		}
		if isHarami(prev, curr) {
			add(entity.BearishHarami, "bearish harami: buying contained inside prior body")
		}
		if prev.High > 0 && math.Abs(curr.High-prev.High) < tweezerTolerance*prev.High {
			add(entity.TweezerTop, "tweezer top: matching highs cap resistance")
		}
	}
	return out
}

// isHarami reports a small current body strictly inside a large previous body.
func isHarami(prev, curr candle.Candle) bool {
	if prev.BodyPct() <= 0.6 {
		return false
	}
	pTop, pBot := math.Max(prev.Open, prev.Close), math.Min(prev.Open, prev.Close)
	cTop, cBot := math.Max(curr.Open, curr.Close), math.Min(curr.Open, curr.Close)
	return cTop < pTop && cBot > pBot && curr.BodySize() <= 0.5*prev.BodySize()
}

func (CandlestickDetector) threeCandle(candles []candle.Candle, i int, avgVol float64) []entity.PatternMatch {
	c1, c2, c3 := candles[i-2], candles[i-1], candles[i]
	window := candles[i-2 : i+1]

	var out []entity.PatternMatch
	add := func(kind entity.PatternKind, desc string) {
		out = append(out, newMatch(kind, window, avgVol, c3.Volume, desc))
	}

	if c1.IsBearish() && c1.BodyPct() > 0.6 &&
		c2.BodyPct() < 0.3 && math.Max(c2.Open, c2.Close) < c1.Close &&
		c3.IsBullish() && c3.BodyPct() > 0.6 && c3.Close > c1.Midpoint() {
		add(entity.MorningStar, "morning star: decline stalls and reverses")
	}
	if c1.IsBullish() && c1.BodyPct() > 0.6 &&
		c2.BodyPct() < 0.3 && math.Min(c2.Open, c2.Close) > c1.Close &&
		c3.IsBearish() && c3.BodyPct() > 0.6 && c3.Close < c1.Midpoint() {
		add(entity.EveningStar, "evening star: advance stalls and reverses")
	}

	// soldiers and crows confirm against their own three-candle average
	trio := []candle.Candle{c1, c2, c3}
	trioVol := averageVolume(trio)
	if isThreeSoldiers(trio) {
		out = append(out, newMatch(entity.ThreeWhiteSoldiers, window, trioVol, c3.Volume,
			"three white soldiers: steady higher closes"))
	}
	if isThreeCrows(trio) {
		out = append(out, newMatch(entity.ThreeBlackCrows, window, trioVol, c3.Volume,
			"three black crows: steady lower closes"))
	}
	return out
}

func isThreeSoldiers(trio []candle.Candle) bool {
	for k, c := range trio {
		if !c.IsBullish() || c.BodyPct() <= 0.4 || c.UpperShadowPct() >= 0.35 {
			return false
		}
		if k > 0 {
			prev := trio[k-1]
			if c.Close <= prev.Close || !openNearClose(c, prev) {
				return false
			}
		}
	}
	return true
}

func isThreeCrows(trio []candle.Candle) bool {
	for k, c := range trio {
		if !c.IsBearish() || c.BodyPct() <= 0.4 || c.LowerShadowPct() >= 0.35 {
			return false
		}
		if k > 0 {
			prev := trio[k-1]
			if c.Close >= prev.Close || !openNearClose(c, prev) {
				return false
			}
		}
	}
	return true
}

func openNearClose(c, prev candle.Candle) bool {
	return math.Abs(c.Open-prev.Close) <= 0.05*math.Abs(prev.Close)
}

// newMatch builds a PatternMatch for window with volume-adjusted confidence.
func newMatch(kind entity.PatternKind, window []candle.Candle, avgVol, currentVol float64, desc string) entity.PatternMatch {
	last := window[len(window)-1]
	m := entity.PatternMatch{
		Kind:                  kind,
		Symbol:                last.Symbol,
		Time:                  last.Time,
		IntervalMinutes:       last.IntervalMinutes,
		Candles:               append([]candle.Candle(nil), window...),
		Confidence:            adjustConfidence(baseConfidence[kind], currentVol, avgVol),
		Description:           fmt.Sprintf("%s: %s", kind, desc),
		PriceAtDetection:      last.Close,
		AverageVolume:         avgVol,
		HasVolumeConfirmation: hasVolumeConfirmation(currentVol, avgVol),
	}
	switch kind.Polarity() {
	case entity.Bullish:
		m.SupportLevel = entity.Price(minLow(window))
	case entity.Bearish:
		m.ResistanceLevel = entity.Price(maxHigh(window))
	default:
		m.SupportLevel = entity.Price(minLow(window))
		m.ResistanceLevel = entity.Price(maxHigh(window))
	}
	return m
}
