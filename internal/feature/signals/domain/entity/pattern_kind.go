// Package entity defines the domain models for pattern detection and entry signals.
package entity

import "fmt"

// Polarity is the static market implication of a pattern kind.
type Polarity int

const (
	Neutral Polarity = iota
	Bullish
	Bearish
)

// PatternKind enumerates every candlestick and chart formation the scanner recognises.
type PatternKind int

const (
	UnknownPattern PatternKind = iota

	// single-candle
	Hammer
	InvertedHammer
	HangingMan
	ShootingStar
	Doji
	DragonflyDoji
	GravestoneDoji
	SpinningTop

	// two-candle
	BullishEngulfing
	BearishEngulfing
	PiercingLine
	DarkCloudCover
	BullishHarami
	BearishHarami
	TweezerTop
	TweezerBottom

	// three-candle
	MorningStar
	EveningStar
	ThreeWhiteSoldiers
	ThreeBlackCrows

	// chart formations
	FallingWedge
	RisingWedge
	AscendingTriangle
	DescendingTriangle
	BullFlag
	BearFlag
	DoubleBottom
	DoubleTop

	patternKindCount
)

var patternNames = [...]string{
	UnknownPattern:     "UNKNOWN",
	Hammer:             "HAMMER",
	InvertedHammer:     "INVERTED_HAMMER",
	HangingMan:         "HANGING_MAN",
	ShootingStar:       "SHOOTING_STAR",
	Doji:               "DOJI",
	DragonflyDoji:      "DRAGONFLY_DOJI",
	GravestoneDoji:     "GRAVESTONE_DOJI",
	SpinningTop:        "SPINNING_TOP",
	BullishEngulfing:   "BULLISH_ENGULFING",
	BearishEngulfing:   "BEARISH_ENGULFING",
	PiercingLine:       "PIERCING_LINE",
	DarkCloudCover:     "DARK_CLOUD_COVER",
	BullishHarami:      "BULLISH_HARAMI",
	BearishHarami:      "BEARISH_HARAMI",
	TweezerTop:         "TWEEZER_TOP",
	TweezerBottom:      "TWEEZER_BOTTOM",
	MorningStar:        "MORNING_STAR",
	EveningStar:        "EVENING_STAR",
	ThreeWhiteSoldiers: "THREE_WHITE_SOLDIERS",
	ThreeBlackCrows:    "THREE_BLACK_CROWS",
	FallingWedge:       "FALLING_WEDGE",
	RisingWedge:        "RISING_WEDGE",
	AscendingTriangle:  "ASCENDING_TRIANGLE",
	DescendingTriangle: "DESCENDING_TRIANGLE",
	BullFlag:           "BULL_FLAG",
	BearFlag:           "BEAR_FLAG",
	DoubleBottom:       "DOUBLE_BOTTOM",
	DoubleTop:          "DOUBLE_TOP",
}

// AllPatternKinds returns every known kind in declaration order.
func AllPatternKinds() []PatternKind {
	kinds := make([]PatternKind, 0, patternKindCount-1)
	for k := Hammer; k < patternKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is a declared pattern kind.
func (k PatternKind) Valid() bool { return k > UnknownPattern && k < patternKindCount }

func (k PatternKind) String() string {
	if k < 0 || k >= patternKindCount {
		return fmt.Sprintf("PatternKind(%d)", int(k))
	}
	return patternNames[k]
}

// MarshalText encodes the kind by name so JSON payloads and DB rows stay readable.
func (k PatternKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *PatternKind) UnmarshalText(b []byte) error {
	p, err := ParsePatternKind(string(b))
	if err != nil {
		return err
	}
	*k = p
	return nil
}

// ParsePatternKind maps a name back to its kind.
func ParsePatternKind(name string) (PatternKind, error) {
	for k := Hammer; k < patternKindCount; k++ {
		if patternNames[k] == name {
			return k, nil
		}
	}
	return UnknownPattern, fmt.Errorf("unknown pattern kind %q", name)
}

// Polarity returns the kind's fixed direction.
func (k PatternKind) Polarity() Polarity {
	switch k {
	case Hammer, InvertedHammer, DragonflyDoji, BullishEngulfing, PiercingLine, BullishHarami,
		TweezerBottom, MorningStar, ThreeWhiteSoldiers,
		FallingWedge, AscendingTriangle, BullFlag, DoubleBottom:
		return Bullish
	case HangingMan, ShootingStar, GravestoneDoji, BearishEngulfing, DarkCloudCover, BearishHarami,
		TweezerTop, EveningStar, ThreeBlackCrows,
		RisingWedge, DescendingTriangle, BearFlag, DoubleTop:
		return Bearish
	case Doji, SpinningTop:
		return Neutral
	default:
		return Neutral
	}
}

// IsChart reports whether the kind is a multi-swing chart formation rather than a candlestick pattern.
func (k PatternKind) IsChart() bool {
	switch k {
	case FallingWedge, RisingWedge, AscendingTriangle, DescendingTriangle, BullFlag, BearFlag, DoubleBottom, DoubleTop:
		return true
	default:
		return false
	}
}

// StrengthPoints is the pattern-strength contribution to signal quality.
func (k PatternKind) StrengthPoints() float64 {
	switch k {
	case FallingWedge, RisingWedge, AscendingTriangle, DescendingTriangle:
		return 25
	case DoubleBottom, DoubleTop, BullFlag, BearFlag:
		return 22
	case BullishEngulfing, BearishEngulfing, MorningStar, EveningStar, ThreeWhiteSoldiers, ThreeBlackCrows:
		return 20
	case Hammer, ShootingStar, PiercingLine, DarkCloudCover, DragonflyDoji, GravestoneDoji:
		return 15
	case InvertedHammer, HangingMan, BullishHarami, BearishHarami:
		return 10
	case TweezerTop, TweezerBottom:
		return 5
	default:
		return 2
	}
}

// GateTier is the StrengthGate class of a kind. 0 means the kind is never accepted.
func (k PatternKind) GateTier() int {
	switch k {
	case FallingWedge, RisingWedge, AscendingTriangle, DescendingTriangle, BullFlag, BearFlag, DoubleBottom, DoubleTop,
		BullishEngulfing, BearishEngulfing, MorningStar, EveningStar, ThreeWhiteSoldiers, ThreeBlackCrows:
		return 1
	case Hammer, ShootingStar, DragonflyDoji, GravestoneDoji, PiercingLine, DarkCloudCover:
		return 2
	case InvertedHammer, HangingMan, BullishHarami, BearishHarami, TweezerTop, TweezerBottom:
		return 3
	default:
		return 0
	}
}

// IsStrong reports membership in the allowlist that earns an extra confluence bonus.
func (k PatternKind) IsStrong() bool {
	switch k {
	case FallingWedge, RisingWedge, BullishEngulfing, BearishEngulfing, MorningStar, EveningStar,
		DoubleBottom, DoubleTop, AscendingTriangle, DescendingTriangle:
		return true
	default:
		return false
	}
}
