package scoring

import (
	"errors"
	"fmt"

	"pattern_scanner/internal/feature/signals/domain/entity"
)

var (
	ErrLowConfidence = errors.New("confidence below minimum")
	ErrLowRiskReward = errors.New("risk/reward below minimum")
	ErrExcessiveRisk = errors.New("risk exceeds allowed share of entry")
	ErrNoiseRisk     = errors.New("risk amount within noise")
)

const (
	minValidConfidence = 75.0
	minValidRiskReward = 2.0
	maxRiskPercent     = 20.0
	minRiskAmount      = 0.05
)

// CheckValidity rejects signals that are not worth trading. It is applied by
// callers after Evaluate; Evaluate itself never filters on these rules.
func CheckValidity(s entity.EntrySignal) error {
	switch {
	case s.Confidence < minValidConfidence:
		return fmt.Errorf("%w: %.1f", ErrLowConfidence, s.Confidence)
	case s.RiskRewardRatio < minValidRiskReward:
		return fmt.Errorf("%w: %.2f", ErrLowRiskReward, s.RiskRewardRatio)
	case s.RiskPercent() > maxRiskPercent:
		return fmt.Errorf("%w: %.1f%%", ErrExcessiveRisk, s.RiskPercent())
	case s.RiskAmount < minRiskAmount:
		return fmt.Errorf("%w: %.4f", ErrNoiseRisk, s.RiskAmount)
	}
	return nil
}
