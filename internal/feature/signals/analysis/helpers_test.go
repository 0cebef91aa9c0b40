package analysis

import (
	"time"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/signals/domain/entity"
)

var t0 = time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)

// ohlcv is a compact candle literal: open, high, low, close, volume.
type ohlcv [5]float64

func series(rows ...ohlcv) []candle.Candle {
	out := make([]candle.Candle, len(rows))
	for i, r := range rows {
		out[i] = candle.Candle{
			Symbol:          "TEST",
			Time:            t0.Add(time.Duration(i) * 5 * time.Minute),
			Open:            r[0],
			High:            r[1],
			Low:             r[2],
			Close:           r[3],
			Volume:          r[4],
			IntervalMinutes: 5,
		}
	}
	return out
}

// closes builds candles whose open equals the previous close.
func closes(values ...float64) []candle.Candle {
	rows := make([]ohlcv, len(values))
	prev := values[0]
	for i, v := range values {
		hi, lo := max(prev, v)+0.1, min(prev, v)-0.1
		rows[i] = ohlcv{prev, hi, lo, v, 1000}
		prev = v
	}
	return series(rows...)
}

// flat builds candles with a fixed close and a small symmetric range.
func flat(values ...float64) []candle.Candle {
	rows := make([]ohlcv, len(values))
	for i, v := range values {
		rows[i] = ohlcv{v, v + 0.5, v - 0.5, v, 1000}
	}
	return series(rows...)
}

func find(matches []entity.PatternMatch, kind entity.PatternKind) []entity.PatternMatch {
	var out []entity.PatternMatch
	for _, m := range matches {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}
