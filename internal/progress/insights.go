package progress

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type InsightKind string

const (
	InsightProgress    InsightKind = "progress"
	InsightWarning     InsightKind = "warning"
	InsightStable      InsightKind = "stable"
	InsightPattern     InsightKind = "pattern"
	InsightTrigger     InsightKind = "trigger"
	InsightSuccess     InsightKind = "success"
	InsightSupport     InsightKind = "support"
	InsightAchievement InsightKind = "achievement"
	InsightMilestone   InsightKind = "milestone"
	InsightGeneral     InsightKind = "general"
)

type Insight struct {
	Kind    InsightKind `json:"type"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
	// Value is the number the statement is about: a percentage, an hour of
	// day, a trigger count or a mean intensity. Zero when not applicable.
	Value float64 `json:"value,omitempty"`
}

type DailyUsage struct {
	Date       time.Time `json:"date"`
	TotalUnits int       `json:"total_units"`
}

type CravingEvent struct {
	OccurredAt      time.Time `json:"occurred_at"`
	Intensity       int       `json:"intensity"`
	Trigger         string    `json:"trigger,omitempty"`
	EmotionalState  string    `json:"emotional_state,omitempty"`
	Overcome        bool      `json:"overcome"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
}

type InsightInput struct {
	LastWeek     []DailyUsage
	PreviousWeek []DailyUsage
	// RecentCravings is ordered newest first.
	RecentCravings []CravingEvent
	Today          DailyUsage
	// DaysSinceQuit is nil when the user has not set a quit date.
	DaysSinceQuit *int
	// Location buckets craving hours; nil means UTC.
	Location *time.Location
}

const (
	weekLen            = 7
	minPatternCravings = 5
	intensitySample    = 7
	outstandingRatio   = 0.7
)

var milestoneInsights = map[int]Insight{
	7: {
		Kind:    InsightMilestone,
		Title:   "1 Week Milestone!",
		Message: "Congratulations on one week! The hardest part is behind you. Your body is already healing.",
	},
	30: {
		Kind:    InsightMilestone,
		Title:   "1 Month Achievement!",
		Message: "Amazing! 30 days nicotine-free. Your lung function has improved by up to 30%.",
	},
	90: {
		Kind:    InsightMilestone,
		Title:   "3 Months Strong!",
		Message: "Incredible achievement! Your circulation and lung function continue to improve significantly.",
	},
}

// GenerateInsights applies every trend and pattern rule to in and returns the
// statements that fire, in rule order. When none fire a single general
// statement is returned.
func GenerateInsights(in InsightInput) []Insight {
	var out []Insight

	rules := []func(InsightInput) (Insight, bool){
		weekOverWeek,
		cravingPattern,
		topTrigger,
		intensityTrend,
		outstandingDay,
		milestoneDay,
	}
	for _, rule := range rules {
		if insight, ok := rule(in); ok {
			out = append(out, insight)
		}
	}

	if len(out) == 0 {
		out = append(out, Insight{
			Kind:    InsightGeneral,
			Title:   "Getting Started",
			Message: "Keep logging your cravings and daily counts to receive personalized insights based on your patterns.",
		})
	}
	return out
}

func weekOverWeek(in InsightInput) (Insight, bool) {
	if len(in.LastWeek) != weekLen || len(in.PreviousWeek) != weekLen {
		return Insight{}, false
	}
	lastSum, prevSum := sumUnits(in.LastWeek), sumUnits(in.PreviousWeek)
	if prevSum == 0 {
		return Insight{}, false
	}
	lastAvg := float64(lastSum) / weekLen
	prevAvg := float64(prevSum) / weekLen

	switch {
	case lastSum < prevSum:
		pct := round1((prevAvg - lastAvg) / prevAvg * 100)
		return Insight{
			Kind:  InsightProgress,
			Title: "Great Progress!",
			Message: fmt.Sprintf("Your average daily count decreased by %.1f%% this week (%.1f vs %.1f last week). Keep it up!",
				pct, lastAvg, prevAvg),
			Value: pct,
		}, true
	case lastSum > prevSum:
		pct := round1((lastAvg - prevAvg) / prevAvg * 100)
		return Insight{
			Kind:    InsightWarning,
			Title:   "Trend Alert",
			Message: fmt.Sprintf("Your daily count increased by %.1f%% this week. Review your triggers and consider adjusting your strategy.", pct),
			Value:   pct,
		}, true
	default:
		return Insight{
			Kind:    InsightStable,
			Title:   "Steady Progress",
			Message: fmt.Sprintf("Your usage has remained stable at %.1f per day. Consider setting a new reduction goal.", lastAvg),
		}, true
	}
}

func cravingPattern(in InsightInput) (Insight, bool) {
	if len(in.RecentCravings) < minPatternCravings {
		return Insight{}, false
	}
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	var byHour [24]int
	for _, c := range in.RecentCravings {
		byHour[c.OccurredAt.In(loc).Hour()]++
	}
	// ties go to the earliest hour
	peak := 0
	for h := 1; h < len(byHour); h++ {
		if byHour[h] > byHour[peak] {
			peak = h
		}
	}

	return Insight{
		Kind:  InsightPattern,
		Title: "Craving Pattern Detected",
		Message: fmt.Sprintf("Most of your cravings occur in the %s (around %d:00). Plan alternative activities during this time.",
			PeriodOfDay(peak), peak),
		Value: float64(peak),
	}, true
}

// PeriodOfDay classifies an hour as morning (<12), afternoon (12-16) or
// evening (17+).
func PeriodOfDay(hour int) string {
	switch {
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func topTrigger(in InsightInput) (Insight, bool) {
	counts := make(map[string]int)
	var order []string
	for _, c := range in.RecentCravings {
		label := NormalizeTrigger(c.Trigger)
		if label == "" {
			continue
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}
	if len(order) == 0 {
		return Insight{}, false
	}

	// ties go to the label seen first (most recent)
	top := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[top] {
			top = label
		}
	}

	return Insight{
		Kind:  InsightTrigger,
		Title: "Top Trigger Identified",
		Message: fmt.Sprintf("%q is your most common trigger (%d times). Consider developing coping strategies for this situation.",
			top, counts[top]),
		Value: float64(counts[top]),
	}, true
}

func NormalizeTrigger(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func intensityTrend(in InsightInput) (Insight, bool) {
	sample := in.RecentCravings
	if len(sample) == 0 {
		return Insight{}, false
	}
	if len(sample) > intensitySample {
		sample = sample[:intensitySample]
	}
	total := 0
	for _, c := range sample {
		total += c.Intensity
	}
	avg := float64(total) / float64(len(sample))

	switch {
	case avg < 5:
		return Insight{
			Kind:    InsightSuccess,
			Title:   "Craving Intensity Decreasing",
			Message: fmt.Sprintf("Your average craving intensity is %.1f/10. Your body is adapting well!", avg),
			Value:   round1(avg),
		}, true
	case avg > 7:
		return Insight{
			Kind:    InsightSupport,
			Title:   "High Craving Intensity",
			Message: fmt.Sprintf("Your recent cravings average %.1f/10. Consider reaching out to support resources or trying relaxation techniques.", avg),
			Value:   round1(avg),
		}, true
	}
	return Insight{}, false
}

func outstandingDay(in InsightInput) (Insight, bool) {
	if len(in.LastWeek) < weekLen {
		return Insight{}, false
	}
	recent := in.LastWeek[len(in.LastWeek)-weekLen:]
	avg := float64(sumUnits(recent)) / weekLen
	if float64(in.Today.TotalUnits) >= avg*outstandingRatio {
		return Insight{}, false
	}
	return Insight{
		Kind:  InsightAchievement,
		Title: "Outstanding Day!",
		Message: fmt.Sprintf("You're at %d today, well below your 7-day average of %.1f. Excellent self-control!",
			in.Today.TotalUnits, avg),
		Value: float64(in.Today.TotalUnits),
	}, true
}

func milestoneDay(in InsightInput) (Insight, bool) {
	if in.DaysSinceQuit == nil {
		return Insight{}, false
	}
	insight, ok := milestoneInsights[*in.DaysSinceQuit]
	return insight, ok
}

func sumUnits(days []DailyUsage) int {
	total := 0
	for _, d := range days {
		total += d.TotalUnits
	}
	return total
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
