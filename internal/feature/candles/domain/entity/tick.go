package entity

// Tick is a single trade observation as delivered by a price feed.
// LocalTimestamp is a wall-clock string in the feed's own timezone.
type Tick struct {
	LocalTimestamp string
	Price          float64
}

// VolumeInterval is a volume reading for an absolute time span. The epoch
// seconds are timezone-agnostic by construction.
type VolumeInterval struct {
	StartEpochSeconds int64
	EndEpochSeconds   int64
	Volume            float64
	IntervalMinutes   int
}

// IntradayFeed is the raw material for one symbol and trading date: ticks in
// the feed's wall-clock zone plus independently keyed volume readings.
type IntradayFeed struct {
	Symbol   string
	Timezone string // IANA zone of the tick timestamps (e.g., "America/New_York")
	Ticks    []Tick
	Volumes  []VolumeInterval
}
