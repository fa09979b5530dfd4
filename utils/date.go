package utils

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02" // yyyy-MM-dd
	ClockLayout = "15:04"
)

// DefaultZone is used when no timezone is configured or it fails to load.
var DefaultZone = time.FixedZone("WIB", 7*60*60)

func LoadZone(name string) *time.Location {
	if name == "" {
		return DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return DefaultZone
	}
	return loc
}

// Today formats now as a calendar date in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = DefaultZone
	}
	return now.In(loc).Format(DateLayout)
}

func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-MM-dd", dateStr)
	}
	return t, nil
}

func ParseISOTime(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, fmt.Errorf("empty time string")
	}
	if loc == nil {
		loc = DefaultZone
	}

	// Try standard RFC3339 format (ISO 8601)
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		t = t.In(loc)
		return &t, nil
	}

	// Try with nanoseconds (e.g. 2025-10-13T09:30:00.123Z)
	t, err = time.Parse(time.RFC3339Nano, s)
	if err == nil {
		t = t.In(loc)
		return &t, nil
	}

	// Try fallback common formats
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"15:04:05",
		"15:04",
	}
	for _, layout := range layouts {
		if tt, e := time.ParseInLocation(layout, s, loc); e == nil {
			return &tt, nil
		}
	}

	return nil, fmt.Errorf("failed to parse time: %v", s)
}

// FormatClock renders a server time value as HH:MM, or nil if it cannot be parsed.
func FormatClock(s *string, loc *time.Location) *string {
	if s == nil {
		return nil
	}
	t, err := ParseISOTime(*s, loc)
	if err != nil {
		return nil
	}
	return Ptr(t.Format(ClockLayout))
}
