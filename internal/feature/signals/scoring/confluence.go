package scoring

import (
	"math"
	"sort"
	"time"

	"pattern_scanner/internal/feature/signals/domain/entity"
)

const (
	confluenceWindow   = 5 * time.Minute
	confluencePriceGap = 0.02
)

// Confluent reports whether b agrees with seed a in direction, time and price.
func Confluent(a, b entity.EntrySignal) bool {
	if a.Direction != b.Direction || a.EntryPrice <= 0 {
		return false
	}
	dt := b.Time.Sub(a.Time)
	if dt < 0 {
		dt = -dt
	}
	if dt > confluenceWindow {
		return false
	}
	return math.Abs(b.EntryPrice-a.EntryPrice)/a.EntryPrice <= confluencePriceGap
}

// Merge groups confluent signals greedily in input order: each unprocessed
// signal seeds a group and absorbs every later unprocessed signal confluent
// with the seed (not with other members). Groups are emitted in seed order.
func Merge(signals []entity.EntrySignal) []entity.EntrySignal {
	out := make([]entity.EntrySignal, 0, len(signals))
	used := make([]bool, len(signals))

	for i := range signals {
		if used[i] {
			continue
		}
		used[i] = true
		group := []entity.EntrySignal{signals[i]}
		for j := i + 1; j < len(signals); j++ {
			if !used[j] && Confluent(signals[i], signals[j]) {
				used[j] = true
				group = append(group, signals[j])
			}
		}

		if len(group) == 1 {
			s := group[0]
			s.Confluence = nil
			out = append(out, s)
			continue
		}
		out = append(out, mergeGroup(group))
	}
	return out
}

func mergeGroup(group []entity.EntrySignal) entity.EntrySignal {
	// stable sort keeps the earliest member first among equal qualities
	ranked := append([]entity.EntrySignal(nil), group...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Quality > ranked[j].Quality })
	base := ranked[0]

	out := base
	out.Quality = math.Min(100, base.Quality+confluenceBonus(group))
	out.Confidence = math.Min(100, base.Confidence+2*float64(len(group)))

	long := base.Direction == entity.Long
	stop, target := base.StopLoss, base.Target
	for _, s := range group {
		if long {
			stop, target = math.Max(stop, s.StopLoss), math.Max(target, s.Target)
		} else {
			stop, target = math.Min(stop, s.StopLoss), math.Min(target, s.Target)
		}
		out.HasVolumeConfirmation = out.HasVolumeConfirmation || s.HasVolumeConfirmation
		out.VolumeRatio = math.Max(out.VolumeRatio, s.VolumeRatio)
	}
	// a member's stop may sit beyond the base entry; keep the base stop then
	if (long && stop >= out.EntryPrice) || (!long && stop <= out.EntryPrice) {
		stop = base.StopLoss
	}
	out.StopLoss, out.Target = stop, target
	out.RiskAmount = math.Abs(out.EntryPrice - stop)
	out.RewardAmount = math.Abs(target - out.EntryPrice)
	if out.RiskAmount > 0 {
		out.RiskRewardRatio = out.RewardAmount / out.RiskAmount
	}

	names := make([]string, 0, len(ranked))
	seen := map[string]bool{}
	for _, s := range ranked {
		n := s.Kind.String()
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	out.Confluence = &entity.Confluence{Count: len(group), MergedPatternNames: names}
	out.Urgency = UrgencyFor(out.Quality, out.HasVolumeConfirmation)
	return out
}

func confluenceBonus(group []entity.EntrySignal) float64 {
	var bonus float64
	switch n := len(group); {
	case n >= 4:
		bonus = 20
	case n == 3:
		bonus = 15
	default:
		bonus = 10
	}

	var chart, stick, strong int
	for _, s := range group {
		if s.Kind.IsChart() {
			chart++
		} else {
			stick++
		}
		if s.Kind.IsStrong() {
			strong++
		}
	}
	if chart > 0 && stick > 0 {
		bonus += 5
	}
	if strong >= 2 {
		bonus += 5
	}
	return bonus
}
