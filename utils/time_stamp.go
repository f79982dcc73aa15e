package utils

import (
	"fmt"
	"math"
	"time"
)

// isoLayouts are the datetime forms accepted for the event timestamp,
// tried in order.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseISODateTime parses an ISO 8601 date or datetime. Values without a
// zone are taken as local time.
func ParseISODateTime(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO datetime %q", s)
}

// MotecDate renders t the way the log header stores it: dd/mm/yyyy.
func MotecDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// MotecTime renders t as HH:MM:SS.
func MotecTime(t time.Time) string {
	return t.Format("15:04:05")
}

// SecondsToMicros converts a duration in seconds to whole microseconds.
func SecondsToMicros(s float64) int64 {
	return int64(math.Round(s * 1e6))
}

// FormatLapTime renders a lap time in seconds as m:ss.mmm.
func FormatLapTime(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	return fmt.Sprintf("%s%d:%02d.%03d", sign, ms/60000, (ms/1000)%60, ms%1000)
}
