package repository

// Timeframe represents series bucket resolution.
type Timeframe string

const (
	TF1h Timeframe = "1h"
	TF1d Timeframe = "1d"
	TF1w Timeframe = "1w"
)

// SeriesAgg selects how events collapse into one bucket value.
type SeriesAgg string

const (
	SeriesSum SeriesAgg = "sum"
	SeriesAvg SeriesAgg = "avg"
)

// IsValidTimeframe returns true if tf is a supported bucket resolution.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1h, TF1d, TF1w:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default bucket resolution.
func DefaultTimeframe() Timeframe { return TF1d }

// NormalizeTimeframe converts a raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// NormalizeSeriesAgg converts a raw string to a valid aggregation (or sum).
func NormalizeSeriesAgg(s string) SeriesAgg {
	if SeriesAgg(s) == SeriesAvg {
		return SeriesAvg
	}
	return SeriesSum
}
