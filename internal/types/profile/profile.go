package profile

import (
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/progress"
)

const DefaultDailyLimit = 50

type Profile struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	ClerkID              string     `json:"clerkId" db:"clerk_id"`
	Email                *string    `json:"email,omitempty" db:"email"`
	FullName             *string    `json:"fullName,omitempty" db:"full_name"`
	DailyLimit           *int       `json:"dailyLimit,omitempty" db:"daily_limit"`
	QuitGoalDate         *time.Time `json:"quitGoalDate,omitempty" db:"quit_goal_date"`
	QuitDate             *time.Time `json:"quitDate,omitempty" db:"quit_date"`
	OnboardingCompleted  bool       `json:"onboardingCompleted" db:"onboarding_completed"`
	CurrentDailyPuffs    *int       `json:"currentDailyPuffs,omitempty" db:"current_daily_puffs"`
	CostPerDevice        *float64   `json:"costPerDevice,omitempty" db:"cost_per_device"`
	DevicesPerWeek       *float64   `json:"devicesPerWeek,omitempty" db:"devices_per_week"`
	LongestStreak        int        `json:"longestStreak" db:"longest_streak"`
	Timezone             string     `json:"timezone" db:"timezone"`
	Motivation           *string    `json:"motivation,omitempty" db:"motivation"`
	BiggestChallenge     *string    `json:"biggestChallenge,omitempty" db:"biggest_challenge"`
	VapingDurationMonths *int       `json:"vapingDurationMonths,omitempty" db:"vaping_duration_months"`
	CreatedAt            time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time  `json:"updatedAt" db:"updated_at"`
}

// QuitProfile is the subset of the profile the progress engine reads.
type QuitProfile struct {
	QuitAt             *time.Time
	DailyBaselineUnits int
	CostPerUnit        float64
	UnitsPerWeek       float64
	Location           *time.Location
}

func (p *Profile) QuitProfile() QuitProfile {
	qp := QuitProfile{QuitAt: p.QuitDate, Location: p.Location()}
	if p.CurrentDailyPuffs != nil {
		qp.DailyBaselineUnits = *p.CurrentDailyPuffs
	}
	if p.CostPerDevice != nil {
		qp.CostPerUnit = *p.CostPerDevice
	}
	if p.DevicesPerWeek != nil {
		qp.UnitsPerWeek = *p.DevicesPerWeek
	}
	return qp
}

// Location resolves the profile timezone, falling back to UTC.
func (p *Profile) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (p *Profile) EffectiveDailyLimit() int {
	if p.DailyLimit == nil || *p.DailyLimit <= 0 {
		return DefaultDailyLimit
	}
	return *p.DailyLimit
}

// DaysSinceQuit is nil without a quit date.
func (p *Profile) DaysSinceQuit(now time.Time) *int {
	if p.QuitDate == nil {
		return nil
	}
	d := progress.ElapsedDays(p.QuitDate, now)
	return &d
}
