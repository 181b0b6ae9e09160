package progress

import "time"

// ElapsedHours returns the wall-clock hours between quitAt and now.
// A missing quit instant or one in the future yields 0, never a negative value.
func ElapsedHours(quitAt *time.Time, now time.Time) float64 {
	if quitAt == nil || quitAt.IsZero() {
		return 0
	}
	d := now.Sub(*quitAt)
	if d <= 0 {
		return 0
	}
	return d.Hours()
}

// ElapsedDays is floor(ElapsedHours / 24).
func ElapsedDays(quitAt *time.Time, now time.Time) int {
	return int(ElapsedHours(quitAt, now) / 24)
}

// DayOf truncates t to its calendar day in loc. A nil loc means UTC.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayOf(a, loc).Equal(DayOf(b, loc))
}
