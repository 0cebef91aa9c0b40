package scoring

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	candle "pattern_scanner/internal/feature/candles/domain/entity"
	"pattern_scanner/internal/feature/signals/domain/entity"
)

type stubTrend struct {
	trend entity.Trend
	adx   float64
}

func (s stubTrend) DetermineTrend([]candle.Candle) entity.Trend { return s.trend }
func (s stubTrend) CalculateADX([]candle.Candle) float64        { return s.adx }

// neutralContext gives a 10% move from reference to entry, which no context rule touches.
var neutralContext = []candle.Candle{{Close: 100}}

func baseSignal(dir entity.Direction, quality float64) entity.EntrySignal {
	kind := entity.Hammer
	if dir == entity.Short {
		kind = entity.ShootingStar
	}
	entry := 110.0
	if dir == entity.Short {
		entry = 90.0
	}
	return entity.EntrySignal{
		Symbol:          "AAPL",
		Kind:            kind,
		Time:            t0,
		EntryPrice:      entry,
		RiskAmount:      4.5,
		RiskRewardRatio: 3,
		Confidence:      70,
		Quality:         quality,
		Direction:       dir,
		Reason:          "base",
	}
}

func TestEnhancer_TrendAndADX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		trend    stubTrend
		quality  float64
		wantQ    float64
		wantConf float64
	}{
		{"with trend", stubTrend{entity.Uptrend, 22}, 60, 72, 80},
		{"counter trend", stubTrend{entity.Downtrend, 22}, 60, 24, 70},
		{"choppy", stubTrend{entity.TrendNeutral, 10}, 60, 36, 70},
		{"strong adx", stubTrend{entity.TrendNeutral, 30}, 60, 69, 70},
		{"capped at 100", stubTrend{entity.Uptrend, 30}, 90, 100, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnhancer(tt.trend, NewMemoryTracker())
			base := baseSignal(entity.Long, tt.quality)
			p := entity.PatternMatch{Kind: base.Kind}

			got := e.Enhance(context.Background(), p, neutralContext, base)

			assert.InDelta(t, tt.wantQ, got.Quality, 1e-9)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, UrgencyFor(got.Quality, got.HasVolumeConfirmation), got.Urgency)
			assert.Equal(t, tt.quality, base.Quality, "input is not modified")
		})
	}
}

func TestEnhancer_ConfidenceBoostIsCapped(t *testing.T) {
	t.Parallel()

	e := NewEnhancer(stubTrend{entity.Downtrend, 22}, nil)
	base := baseSignal(entity.Short, 50)
	base.Confidence = 90
	got := e.Enhance(context.Background(), entity.PatternMatch{Kind: base.Kind}, []candle.Candle{{Close: 100}}, base)
	assert.Equal(t, 95.0, got.Confidence)
}

func TestContextFactor(t *testing.T) {
	t.Parallel()

	s := baseSignal(entity.Long, 50)
	ref := func(closeAt float64) []candle.Candle { return []candle.Candle{{Close: closeAt}} }

	assert.InDelta(t, 0.90, contextFactor(ref(90), s), 1e-9, "late: +22%")
	assert.InDelta(t, 1.05, contextFactor(ref(104), s), 1e-9, "sweet spot: +5.8%")
	assert.InDelta(t, 1.02, contextFactor(ref(120), s), 1e-9, "early: negative move")
	assert.InDelta(t, 1.0, contextFactor(ref(100), s), 1e-9)
	assert.InDelta(t, 1.0, contextFactor(nil, s), 1e-9)

	// the 50th candle back is the reference once enough history exists
	long := make([]candle.Candle, 60)
	for i := range long {
		long[i].Close = 100
	}
	long[10].Close = 104
	assert.InDelta(t, 1.05, contextFactor(long, s), 1e-9)

	short := baseSignal(entity.Short, 50) // entry 90
	assert.InDelta(t, 1.05, contextFactor(ref(95), short), 1e-9, "favourable move is signed by direction")

	rich := s
	rich.RiskRewardRatio = 4
	rich.RiskAmount = 2 // 1.8%
	assert.InDelta(t, 1.08*1.03, contextFactor(ref(100), rich), 1e-9)

	poor := s
	poor.RiskRewardRatio = 2
	poor.RiskAmount = 12 // 10.9%
	assert.InDelta(t, 0.95*0.92, contextFactor(ref(100), poor), 1e-9)
}

func TestEnhancer_Conflict(t *testing.T) {
	t.Parallel()

	e := NewEnhancer(stubTrend{entity.TrendNeutral, 22}, NewMemoryTracker())
	ctx := context.Background()
	p := entity.PatternMatch{}

	first := e.Enhance(ctx, p, neutralContext, baseSignal(entity.Long, 60))
	assert.Equal(t, 60.0, first.Quality)
	assert.False(t, strings.Contains(first.Reason, "CONFLICTING"))

	opp := baseSignal(entity.Short, 60)
	opp.Time = t0.Add(20 * time.Minute)
	got := e.Enhance(ctx, p, neutralContext, opp)
	assert.Equal(t, 30.0, got.Quality)
	assert.True(t, strings.HasSuffix(got.Reason, ConflictMarker))

	// conflicting signals do not replace the tracked one
	opp.Time = t0.Add(30 * time.Minute)
	got = e.Enhance(ctx, p, neutralContext, opp)
	assert.Equal(t, 30.0, got.Quality)

	opp.Time = t0.Add(31 * time.Minute)
	got = e.Enhance(ctx, p, neutralContext, opp)
	assert.Equal(t, 60.0, got.Quality)

	other := baseSignal(entity.Long, 60)
	other.Symbol = "MSFT"
	other.Time = t0.Add(32 * time.Minute)
	got = e.Enhance(ctx, p, neutralContext, other)
	assert.Equal(t, 60.0, got.Quality, "symbols are tracked independently")
}

func TestMemoryTracker_Reset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr := NewMemoryTracker()
	assert.False(t, tr.CheckAndRecord(ctx, "AAPL", t0, entity.Long))
	assert.True(t, tr.CheckAndRecord(ctx, "AAPL", t0.Add(time.Minute), entity.Short))

	tr.Reset(ctx)
	assert.False(t, tr.CheckAndRecord(ctx, "AAPL", t0.Add(time.Minute), entity.Short))
}

func TestMemoryTracker_SerialisesPerSymbol(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tr := NewMemoryTracker()

	const calls = 200
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts = map[entity.Direction]int{}
		accepted  = map[entity.Direction]int{}
	)
	for i := 0; i < calls; i++ {
		dir := entity.Long
		if i%2 == 1 {
			dir = entity.Short
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := tr.CheckAndRecord(ctx, "AAPL", t0, dir)
			mu.Lock()
			defer mu.Unlock()
			if c {
				conflicts[dir]++
			} else {
				accepted[dir]++
			}
		}()
	}
	wg.Wait()

	// whichever direction got recorded first owns the slot; every opposite call conflicts
	assert.Equal(t, calls/2, conflicts[entity.Long]+conflicts[entity.Short])
	assert.True(t, conflicts[entity.Long] == 0 || conflicts[entity.Short] == 0)
	assert.Equal(t, calls/2, accepted[entity.Long]+accepted[entity.Short])
}
