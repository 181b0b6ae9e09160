package progress

import (
	"math"
	"time"
)

// EstimateSavings returns the money not spent since quitAt:
// elapsed weeks (real-valued) x units per week x cost per unit.
// It is 0 without a quit date, for a future quit date, or for negative rates,
// and never decreases as now advances.
func EstimateSavings(quitAt *time.Time, costPerUnit, unitsPerWeek float64, now time.Time) float64 {
	if costPerUnit <= 0 || unitsPerWeek <= 0 {
		return 0
	}
	weeks := ElapsedHours(quitAt, now) / 24 / 7
	return weeks * unitsPerWeek * costPerUnit
}

// RoundCents rounds an amount to two decimals for display.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
