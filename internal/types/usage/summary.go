package usage

import "math"

// Summarize aggregates a densified window. Days without a row must already
// be present as zero entries.
func Summarize(period Period, days []DailyUsage) Summary {
	s := Summary{Period: period, Days: len(days)}
	if len(days) == 0 {
		return s
	}
	s.Min = days[0].TotalUnits
	for _, d := range days {
		s.Total += d.TotalUnits
		if d.TotalUnits > s.Max {
			s.Max = d.TotalUnits
		}
		if d.TotalUnits < s.Min {
			s.Min = d.TotalUnits
		}
	}
	s.Average = int(math.Round(float64(s.Total) / float64(len(days))))
	return s
}

// Today builds the counter response against a daily limit.
func Today(date string, total, limit int) TodayResponse {
	resp := TodayResponse{Date: date, TotalUnits: total, DailyLimit: limit}
	if limit > 0 {
		resp.Remaining = max(limit-total, 0)
		resp.ProgressPercent = math.Min(float64(total)/float64(limit)*100, 100)
	}
	return resp
}
