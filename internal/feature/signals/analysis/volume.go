package analysis

import (
	"math"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
)

const (
	minConfidence = 50.0
	maxConfidence = 95.0

	// volumeConfirmRatio is the volume multiple over average that confirms a pattern.
	volumeConfirmRatio = 1.2
)

// averageVolume returns the mean volume of candles, 0 when empty.
func averageVolume(candles []candle.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candles {
		sum += c.Volume
	}
	return sum / float64(len(candles))
}

// adjustConfidence applies the volume-ratio adjustment to base and bounds the
// result to [50, 95].
func adjustConfidence(base, currentVolume, avgVolume float64) float64 {
	conf := base
	if avgVolume > 0 {
		ratio := currentVolume / avgVolume
		switch {
		case ratio > 1.5:
			conf += 10
		case ratio > 1.2:
			conf += 5
		case ratio < 0.8:
			conf -= 10
		}
	}
	return math.Max(minConfidence, math.Min(maxConfidence, conf))
}

func hasVolumeConfirmation(currentVolume, avgVolume float64) bool {
	return currentVolume > avgVolume*volumeConfirmRatio
}

func minLow(candles []candle.Candle) float64 {
	lo := math.Inf(1)
	for _, c := range candles {
		lo = math.Min(lo, c.Low)
	}
	return lo
}

func maxHigh(candles []candle.Candle) float64 {
	hi := math.Inf(-1)
	for _, c := range candles {
		hi = math.Max(hi, c.High)
	}
	return hi
}
