package progress

import "time"

// CurrentStreak counts the zero-usage days at the end of log, which must be
// ordered ascending and contain one record per day (see FillDays).
func CurrentStreak(log []DailyUsage) int {
	n := 0
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].TotalUnits != 0 {
			break
		}
		n++
	}
	return n
}

// LongestStreak is the longest run of consecutive zero-usage days in log.
func LongestStreak(log []DailyUsage) int {
	longest, run := 0, 0
	for _, d := range log {
		if d.TotalUnits != 0 {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return longest
}

// FillDays expands sparse records into one record per calendar day from
// `from` to `to` inclusive, in loc. Days without a record have zero usage.
// Record dates are calendar days and are read as-is, without conversion to
// loc. Records outside the range are dropped; duplicate days are summed.
func FillDays(records []DailyUsage, from, to time.Time, loc *time.Location) []DailyUsage {
	start, end := DayOf(from, loc), DayOf(to, loc)
	if end.Before(start) {
		return nil
	}

	byDay := make(map[string]int, len(records))
	for _, r := range records {
		byDay[r.Date.Format(time.DateOnly)] += r.TotalUnits
	}

	var out []DailyUsage
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, DailyUsage{Date: d, TotalUnits: byDay[d.Format(time.DateOnly)]})
	}
	return out
}
