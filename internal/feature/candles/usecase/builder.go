package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"pattern_scanner/internal/feature/candles/domain/entity"
)

var (
	// ErrInvalidInterval is returned when a bucket size is not a positive number of minutes.
	ErrInvalidInterval = errors.New("interval must be a positive number of minutes")
	// ErrUnknownTimezone is returned when the tick source zone cannot be loaded.
	ErrUnknownTimezone = errors.New("unknown timezone")
)

// tickLayouts are the wall-clock formats accepted from tick feeds.
var tickLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// TruncateEpoch floors epochSeconds to a multiple of intervalMinutes*60.
func TruncateEpoch(epochSeconds int64, intervalMinutes int) int64 {
	size := int64(intervalMinutes) * 60
	q := epochSeconds / size
	if epochSeconds%size < 0 {
		q--
	}
	return q * size
}

type timedTick struct {
	at    time.Time
	price float64
}

// BuildCandles aggregates ticks quoted in the IANA zone tickZone and volume
// intervals keyed by absolute epoch seconds into UTC-aligned candles.
//
// Ticks with an unparseable timestamp are skipped. A bucket without a
// matching volume interval gets volume 0. The result is ascending by time.
func BuildCandles(ticks []entity.Tick, volumes []entity.VolumeInterval, intervalMinutes int, tickZone string) ([]entity.Candle, error) {
	if intervalMinutes <= 0 {
		return nil, ErrInvalidInterval
	}
	loc, err := time.LoadLocation(tickZone)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownTimezone, tickZone, err)
	}
	if len(ticks) == 0 {
		return []entity.Candle{}, nil
	}

	buckets := make(map[int64][]timedTick)
	for _, t := range ticks {
		at, err := parseTickTime(t.LocalTimestamp, loc)
		if err != nil {
			slog.Warn("skipping malformed tick", "timestamp", t.LocalTimestamp, "error", err)
			continue
		}
		key := TruncateEpoch(at.Unix(), intervalMinutes)
		buckets[key] = append(buckets[key], timedTick{at: at, price: t.Price})
	}

	volumeByStart := make(map[int64]float64, len(volumes))
	for _, v := range volumes {
		// The volume feed's own interval decides alignment; metadata may disagree with the request.
		vi := v.IntervalMinutes
		if vi <= 0 {
			vi = intervalMinutes
		}
		volumeByStart[TruncateEpoch(v.StartEpochSeconds, vi)] = v.Volume
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]entity.Candle, 0, len(keys))
	for _, k := range keys {
		ts := buckets[k]
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].at.Before(ts[j].at) })

		c := entity.Candle{
			Time:            time.Unix(k, 0).UTC(),
			Open:            ts[0].price,
			High:            ts[0].price,
			Low:             ts[0].price,
			Close:           ts[len(ts)-1].price,
			Volume:          volumeByStart[k],
			IntervalMinutes: intervalMinutes,
		}
		for _, t := range ts[1:] {
			if t.price > c.High {
				c.High = t.price
			}
			if t.price < c.Low {
				c.Low = t.price
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// RollupVolumes sums finer-grained volume intervals into intervalMinutes
// buckets so they line up with candles built at that size.
func RollupVolumes(volumes []entity.VolumeInterval, intervalMinutes int) []entity.VolumeInterval {
	if intervalMinutes <= 0 || len(volumes) == 0 {
		return volumes
	}
	size := int64(intervalMinutes) * 60
	sums := make(map[int64]float64)
	for _, v := range volumes {
		sums[TruncateEpoch(v.StartEpochSeconds, intervalMinutes)] += v.Volume
	}
	keys := make([]int64, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]entity.VolumeInterval, 0, len(keys))
	for _, k := range keys {
		out = append(out, entity.VolumeInterval{
			StartEpochSeconds: k,
			EndEpochSeconds:   k + size,
			Volume:            sums[k],
			IntervalMinutes:   intervalMinutes,
		})
	}
	return out
}

func parseTickTime(s string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range tickLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
