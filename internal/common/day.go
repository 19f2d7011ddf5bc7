package common

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDay is returned when a day string cannot be parsed as a calendar date.
var ErrInvalidDay = errors.New("invalid day")

// dayLayouts are the accepted input formats for the `day` query parameter.
var dayLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	time.RFC3339,
}

// ParseDay parses a calendar date string in one of the accepted layouts.
func ParseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrInvalidDay
	}
	for _, layout := range dayLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, ErrInvalidDay
}

// DayKey formats a timestamp as a local calendar day bucket key.
// The format is YYYY-M-D without zero padding, e.g. "2024-3-7".
func DayKey(t time.Time) string {
	local := t.Local()
	return fmt.Sprintf("%d-%d-%d", local.Year(), int(local.Month()), local.Day())
}
