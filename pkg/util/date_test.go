package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestStartOfWeekIsSunday(t *testing.T) {
	// 2024-10-10 is a Thursday
	got := StartOfWeek(time.Date(2024, 10, 10, 15, 4, 5, 0, time.UTC))
	want := time.Date(2024, 10, 6, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) || got.Weekday() != time.Sunday {
		t.Fatalf("week start = %v, want %v", got, want)
	}
	// a Sunday maps to itself
	if s := StartOfWeek(want); !s.Equal(want) {
		t.Fatalf("sunday moved to %v", s)
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	to := time.Date(2024, 10, 12, 23, 59, 59, 0, time.UTC)

	f, tt := AlignFromTo(from, to, "1h")
	if f.Minute() != 0 || f.Second() != 0 || tt.Minute() != 0 {
		t.Fatalf("1h not aligned: %v %v", f, tt)
	}

	f, tt = AlignFromTo(from, to, "1d")
	if f.Hour() != 0 || tt.Hour() != 0 {
		t.Fatalf("1d not aligned: %v %v", f, tt)
	}

	f, _ = AlignFromTo(from, to, "1w")
	if f.Weekday() != time.Sunday || f.Hour() != 0 {
		t.Fatalf("1w not aligned: %v", f)
	}
}
