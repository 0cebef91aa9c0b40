package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pattern_scanner/internal/feature/signals/domain/entity"
)

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestTrendAnalyzer_DetermineTrend(t *testing.T) {
	t.Parallel()

	rising := make([]float64, 40)
	falling := make([]float64, 40)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 200 - float64(i)
	}

	tests := []struct {
		name   string
		values []float64
		want   entity.Trend
	}{
		{"fewer than 30 candles", rising[:29], entity.TrendNeutral},
		{"steady rise", rising, entity.Uptrend},
		{"steady fall", falling, entity.Downtrend},
		{"flat", repeat(100, 35), entity.TrendNeutral},
		// last 20: 100 -> 105 (+5%), last 30 quartiles: 120 -> 105 (-12.5%)
		{"short-term wins over medium-term", concat(repeat(120, 7), repeat(100, 13), repeat(105, 10)), entity.Uptrend},
		// short-term flat, medium-term 100 -> 110
		{"neutral short-term defers to medium-term", concat(repeat(100, 7), repeat(110, 23)), entity.Uptrend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TrendAnalyzer{}.DetermineTrend(flat(tt.values...))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrendAnalyzer_CalculateADX(t *testing.T) {
	t.Parallel()

	var ta TrendAnalyzer

	t.Run("too short", func(t *testing.T) {
		assert.Zero(t, ta.CalculateADX(flat(repeat(100, 14)...)))
	})

	t.Run("identical candles yield zero, not NaN", func(t *testing.T) {
		rows := make([]ohlcv, 20)
		for i := range rows {
			rows[i] = ohlcv{100, 100, 100, 100, 1000}
		}
		assert.Zero(t, ta.CalculateADX(series(rows...)))
	})

	t.Run("equal moves cancel out", func(t *testing.T) {
		assert.Zero(t, ta.CalculateADX(flat(repeat(100, 20)...)))
	})

	t.Run("one-sided movement is capped", func(t *testing.T) {
		values := make([]float64, 20)
		for i := range values {
			values[i] = 100 + float64(i)
		}
		assert.Equal(t, 95.0, ta.CalculateADX(flat(values...)))
	})

	t.Run("mixed movement stays in range", func(t *testing.T) {
		adx := ta.CalculateADX(closes(100, 101, 100.5, 102, 101, 103, 102.5, 104, 103, 105, 104, 106, 105.5, 107, 106, 108))
		assert.Greater(t, adx, 0.0)
		assert.LessOrEqual(t, adx, 95.0)
	})
}
