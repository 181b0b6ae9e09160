package overview

import (
	"math"
	"time"

	"ditchAPI/internal/progress"
)

type TimelineEntry struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Achieved    bool   `json:"achieved"`
}

type NextMilestone struct {
	Title           string  `json:"title"`
	Day             int     `json:"day"`
	HoursRemaining  float64 `json:"hoursRemaining"`
	ProgressPercent float64 `json:"progressPercent"`
}

type Overview struct {
	QuitDate      *time.Time      `json:"quitDate,omitempty"`
	ElapsedHours  float64         `json:"elapsedHours"`
	ElapsedDays   int             `json:"elapsedDays"`
	MoneySaved    float64         `json:"moneySaved"`
	CurrentStreak int             `json:"currentStreak"`
	LongestStreak int             `json:"longestStreak"`
	Timeline      []TimelineEntry `json:"timeline"`
	Next          *NextMilestone  `json:"next,omitempty"`
}

// BuildTimeline marks each milestone reached at elapsedHours and describes
// progress toward the first one that is not.
func BuildTimeline(cat *progress.Catalog, elapsedHours float64) ([]TimelineEntry, *NextMilestone) {
	seq := cat.Sequence(progress.KindMilestone)
	timeline := make([]TimelineEntry, len(seq))
	for i, e := range seq {
		timeline[i] = TimelineEntry{
			Day:         e.ThresholdHours / 24,
			Title:       e.Title,
			Description: e.Body,
			Achieved:    float64(e.ThresholdHours) <= elapsedHours,
		}
	}

	next, ok := cat.Next(progress.KindMilestone, elapsedHours)
	if !ok {
		return timeline, nil
	}

	prev := 0
	for _, e := range seq {
		if e.ThresholdHours >= next.ThresholdHours {
			break
		}
		prev = e.ThresholdHours
	}
	span := float64(next.ThresholdHours - prev)
	pct := (elapsedHours - float64(prev)) / span * 100

	return timeline, &NextMilestone{
		Title:           next.Title,
		Day:             next.ThresholdHours / 24,
		HoursRemaining:  math.Round((float64(next.ThresholdHours)-elapsedHours)*10) / 10,
		ProgressPercent: math.Max(0, math.Min(100, math.Round(pct*10)/10)),
	}
}
