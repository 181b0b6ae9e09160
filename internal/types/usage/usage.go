package usage

import (
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/progress"
)

type Puff struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// DailyUsage is one row per user and calendar day. Date is stored as a
// DATE and scanned as midnight UTC.
type DailyUsage struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	Date       time.Time `json:"date" db:"date"`
	TotalUnits int       `json:"totalUnits" db:"total_units"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

func (d DailyUsage) Progress() progress.DailyUsage {
	return progress.DailyUsage{Date: d.Date, TotalUnits: d.TotalUnits}
}

func ToProgress(rows []DailyUsage) []progress.DailyUsage {
	out := make([]progress.DailyUsage, len(rows))
	for i, r := range rows {
		out[i] = r.Progress()
	}
	return out
}

type TodayResponse struct {
	Date            string  `json:"date"`
	TotalUnits      int     `json:"totalUnits"`
	DailyLimit      int     `json:"dailyLimit"`
	Remaining       int     `json:"remaining"`
	ProgressPercent float64 `json:"progressPercent"`
}

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) Days() (int, bool) {
	switch p {
	case PeriodWeek:
		return 7, true
	case PeriodMonth:
		return 30, true
	case PeriodYear:
		return 365, true
	}
	return 0, false
}

type Summary struct {
	Period  Period `json:"period"`
	Days    int    `json:"days"`
	Total   int    `json:"total"`
	Average int    `json:"average"`
	Max     int    `json:"max"`
	Min     int    `json:"min"`
}
