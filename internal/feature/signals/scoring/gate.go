package scoring

import "pattern_scanner/internal/feature/signals/domain/entity"

// Passes is the final tiered accept/reject gate. Kinds outside the three
// tiers are always rejected.
func Passes(kind entity.PatternKind, quality float64, hasVolume bool) bool {
	switch kind.GateTier() {
	case 1:
		return quality >= 70
	case 2:
		return quality >= 75 && hasVolume
	case 3:
		return quality >= 85 && hasVolume
	default:
		return false
	}
}

// Gate keeps the signals that pass.
func Gate(signals []entity.EntrySignal) []entity.EntrySignal {
	out := make([]entity.EntrySignal, 0, len(signals))
	for _, s := range signals {
		if Passes(s.Kind, s.Quality, s.HasVolumeConfirmation) {
			out = append(out, s)
		}
	}
	return out
}
