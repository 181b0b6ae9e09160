package profile

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidProfile = errors.New("invalid profile")

type UpsertProfileRequest struct {
	Email                *string    `json:"email,omitempty"`
	FullName             *string    `json:"fullName,omitempty"`
	DailyLimit           *int       `json:"dailyLimit,omitempty"`
	QuitGoalDate         *time.Time `json:"quitGoalDate,omitempty"`
	QuitDate             *time.Time `json:"quitDate,omitempty"`
	OnboardingCompleted  *bool      `json:"onboardingCompleted,omitempty"`
	CurrentDailyPuffs    *int       `json:"currentDailyPuffs,omitempty"`
	CostPerDevice        *float64   `json:"costPerDevice,omitempty"`
	DevicesPerWeek       *float64   `json:"devicesPerWeek,omitempty"`
	Timezone             *string    `json:"timezone,omitempty"`
	Motivation           *string    `json:"motivation,omitempty"`
	BiggestChallenge     *string    `json:"biggestChallenge,omitempty"`
	VapingDurationMonths *int       `json:"vapingDurationMonths,omitempty"`
}

func (r *UpsertProfileRequest) Validate() error {
	if r.DailyLimit != nil && *r.DailyLimit < 0 {
		return fmt.Errorf("%w: dailyLimit must be >= 0", ErrInvalidProfile)
	}
	if r.CurrentDailyPuffs != nil && *r.CurrentDailyPuffs < 0 {
		return fmt.Errorf("%w: currentDailyPuffs must be >= 0", ErrInvalidProfile)
	}
	if r.CostPerDevice != nil && *r.CostPerDevice < 0 {
		return fmt.Errorf("%w: costPerDevice must be >= 0", ErrInvalidProfile)
	}
	if r.DevicesPerWeek != nil && *r.DevicesPerWeek < 0 {
		return fmt.Errorf("%w: devicesPerWeek must be >= 0", ErrInvalidProfile)
	}
	if r.VapingDurationMonths != nil && *r.VapingDurationMonths < 0 {
		return fmt.Errorf("%w: vapingDurationMonths must be >= 0", ErrInvalidProfile)
	}
	if r.Timezone != nil && *r.Timezone != "" {
		if _, err := time.LoadLocation(*r.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidProfile, *r.Timezone)
		}
	}
	return nil
}

type SetQuitDateRequest struct {
	QuitDate *time.Time `json:"quitDate"`
}
