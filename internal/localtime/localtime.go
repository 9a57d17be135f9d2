// Package localtime centralizes station-local calendar arithmetic so that
// every consumer computes "today" the same way.
package localtime

import "time"

// DayStart returns midnight of now's calendar day in loc.
func DayStart(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayBounds returns the half-open [start, end) window covering now's calendar
// day in loc.
func DayBounds(now time.Time, loc *time.Location) (start, end time.Time) {
	start = DayStart(now, loc)
	return start, start.AddDate(0, 0, 1)
}

// DateString returns now's calendar date in loc as YYYY-MM-DD, the key format
// of the daily results store.
func DateString(now time.Time, loc *time.Location) string {
	return now.In(loc).Format("2006-01-02")
}
