package util

import (
	"strconv"
	"time"
)

// timeLayouts are tried in order. Date-only is included because reporting
// ranges usually arrive as plain calendar dates.
var timeLayouts = []string{time.RFC3339, time.RFC3339Nano, "2006-01-02"}

// ParseTime accepts RFC3339, RFC3339Nano, date-only and unix seconds.
// Returns (t, true) if any form parsed.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns def if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// StartOfDay returns midnight UTC of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns midnight UTC of the Sunday starting t's week,
// matching ClickHouse toStartOfWeek buckets.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// AlignFromTo snaps the range onto bucket boundaries for the timeframe, so
// request windows line up with the series buckets the store produces.
func AlignFromTo(from, to time.Time, tf string) (time.Time, time.Time) {
	switch tf {
	case "1h":
		return from.Truncate(time.Hour), to.Truncate(time.Hour)
	case "1w":
		return StartOfWeek(from), StartOfWeek(to)
	default:
		return StartOfDay(from), StartOfDay(to)
	}
}
