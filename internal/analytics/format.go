// Package analytics derives display values and statistics from fasting session history.
//
// Every function here is pure: results depend only on the arguments, so callers recompute
// them on each request instead of caching.
package analytics

import (
	"fmt"
	"time"
)

// DurationParts is a second count split for clock display.
type DurationParts struct {
	Hours   int64 `json:"hours"`
	Minutes int   `json:"minutes"`
	Seconds int   `json:"seconds"`
}

// String renders the parts as zero-padded HH:MM:SS. Hours are not capped at 24.
func (p DurationParts) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", p.Hours, p.Minutes, p.Seconds)
}

// SplitSeconds splits seconds into hours, minutes and seconds. Negative input is treated as 0.
func SplitSeconds(seconds int64) DurationParts {
	if seconds < 0 {
		seconds = 0
	}
	return DurationParts{
		Hours:   seconds / 3600,
		Minutes: int(seconds % 3600 / 60),
		Seconds: int(seconds % 60),
	}
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int64) string {
	return SplitSeconds(seconds).String()
}

// FormatDuration renders seconds as "<H>h <M>m", dropping any sub-minute remainder.
func FormatDuration(seconds int64) string {
	p := SplitSeconds(seconds)
	return fmt.Sprintf("%dh %dm", p.Hours, p.Minutes)
}

// FormatDateTime renders t in loc for history lists, e.g. "Mar 4, 08:15 PM".
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("Jan 2, 03:04 PM")
}
