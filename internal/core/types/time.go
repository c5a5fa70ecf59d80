package types

import (
	"strings"
	"time"
)

// TimestampLayout is the display layout used across the dashboard and the
// upstream inventory server: DD/MM/YYYY HH:MM:SS, 24-hour clock.
const TimestampLayout = "02/01/2006 15:04:05"

// limaLocation is the warehouse operating timezone.
var limaLocation = mustLoadLocation("America/Lima")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// UTC-5 year-round, Peru has no DST.
		return time.FixedZone("-05", -5*60*60)
	}
	return loc
}

// LimaLocation returns the warehouse timezone.
func LimaLocation() *time.Location {
	return limaLocation
}

// NowTimestamp formats the current instant in warehouse local time.
func NowTimestamp() string {
	return time.Now().In(limaLocation).Format(TimestampLayout)
}

// FormatTimestamp formats t in warehouse local time.
func FormatTimestamp(t time.Time) string {
	return t.In(limaLocation).Format(TimestampLayout)
}

// ParseServerTimestamp parses a timestamp as sent by the inventory server.
// The server emits either the display layout or MySQL datetime form, and
// uses zero-dates ("0000-...") for unset values. Returns ok=false for
// anything unusable.
func ParseServerTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000") {
		return time.Time{}, false
	}
	for _, layout := range []string{
		TimestampLayout,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, s, limaLocation); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
