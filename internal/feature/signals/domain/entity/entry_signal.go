package entity

import (
	"fmt"
	"time"
)

// Direction is the side of a proposed entry.
type Direction int

const (
	Long Direction = iota + 1
	Short
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "NONE"
	}
}

// Opposite returns the other side.
func (d Direction) Opposite() Direction {
	if d == Long {
		return Short
	}
	return Long
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "LONG":
		*d = Long
	case "SHORT":
		*d = Short
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

// Urgency ranks how quickly a signal should be acted on.
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyModerate
	UrgencyHigh
	UrgencyImmediate
)

func (u Urgency) String() string {
	switch u {
	case UrgencyImmediate:
		return "IMMEDIATE"
	case UrgencyHigh:
		return "HIGH"
	case UrgencyModerate:
		return "MODERATE"
	default:
		return "LOW"
	}
}

func (u Urgency) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *Urgency) UnmarshalText(b []byte) error {
	switch string(b) {
	case "IMMEDIATE":
		*u = UrgencyImmediate
	case "HIGH":
		*u = UrgencyHigh
	case "MODERATE":
		*u = UrgencyModerate
	case "LOW":
		*u = UrgencyLow
	default:
		return fmt.Errorf("unknown urgency %q", b)
	}
	return nil
}

// Confluence describes the members folded into a merged signal.
type Confluence struct {
	Count              int      `json:"count"`
	MergedPatternNames []string `json:"merged_pattern_names"`
}

// EntrySignal is a priced, scored trade candidate derived from a PatternMatch.
// Stages produce new values; a signal is never modified after it leaves a stage.
type EntrySignal struct {
	Symbol                string      `json:"symbol"`
	Kind                  PatternKind `json:"pattern"`
	Time                  time.Time   `json:"time"`
	EntryPrice            float64     `json:"entry_price"`
	StopLoss              float64     `json:"stop_loss"`
	Target                float64     `json:"target"`
	RiskAmount            float64     `json:"risk_amount"`
	RewardAmount          float64     `json:"reward_amount"`
	RiskRewardRatio       float64     `json:"risk_reward_ratio"`
	Confidence            float64     `json:"confidence"`
	HasVolumeConfirmation bool        `json:"has_volume_confirmation"`
	Quality               float64     `json:"signal_quality"`
	Urgency               Urgency     `json:"urgency"`
	Direction             Direction   `json:"direction"`
	Reason                string      `json:"reason"`
	Volume                float64     `json:"volume"`
	AverageVolume         float64     `json:"average_volume"`
	VolumeRatio           float64     `json:"volume_ratio"`
	Confluence            *Confluence `json:"confluence,omitempty"`
}

// RiskPercent is the risk as a percentage of the entry price.
func (s EntrySignal) RiskPercent() float64 {
	if s.EntryPrice == 0 {
		return 0
	}
	return s.RiskAmount / s.EntryPrice * 100
}
