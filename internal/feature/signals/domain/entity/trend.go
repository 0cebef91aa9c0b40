package entity

// Trend is the direction reading produced by trend analysis.
type Trend int

const (
	TrendNeutral Trend = iota
	Uptrend
	Downtrend
)

func (t Trend) String() string {
	switch t {
	case Uptrend:
		return "UPTREND"
	case Downtrend:
		return "DOWNTREND"
	default:
		return "NEUTRAL"
	}
}
