package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestUpsertProfileRequestValidate(t *testing.T) {
	assert.NoError(t, (&UpsertProfileRequest{}).Validate())
	assert.NoError(t, (&UpsertProfileRequest{DailyLimit: intPtr(0), Timezone: strPtr("UTC")}).Validate())

	bad := []UpsertProfileRequest{
		{DailyLimit: intPtr(-1)},
		{CurrentDailyPuffs: intPtr(-3)},
		{CostPerDevice: floatPtr(-0.5)},
		{DevicesPerWeek: floatPtr(-1)},
		{Timezone: strPtr("Not/AZone")},
	}
	for _, req := range bad {
		assert.ErrorIs(t, req.Validate(), ErrInvalidProfile)
	}
}

func TestQuitProfileProjection(t *testing.T) {
	quit := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	p := &Profile{
		QuitDate:          &quit,
		CurrentDailyPuffs: intPtr(120),
		CostPerDevice:     floatPtr(8.5),
		DevicesPerWeek:    floatPtr(2),
	}

	qp := p.QuitProfile()
	assert.Equal(t, &quit, qp.QuitAt)
	assert.Equal(t, 120, qp.DailyBaselineUnits)
	assert.Equal(t, 8.5, qp.CostPerUnit)
	assert.Equal(t, 2.0, qp.UnitsPerWeek)
	assert.Equal(t, time.UTC, qp.Location)

	assert.Equal(t, QuitProfile{Location: time.UTC}, (&Profile{}).QuitProfile())
}

func TestProfileDefaults(t *testing.T) {
	p := &Profile{Timezone: "bogus"}
	assert.Equal(t, DefaultDailyLimit, p.EffectiveDailyLimit())
	assert.Equal(t, time.UTC, p.Location())
	assert.Nil(t, p.DaysSinceQuit(time.Now()))

	quit := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	p = &Profile{DailyLimit: intPtr(20), QuitDate: &quit}
	assert.Equal(t, 20, p.EffectiveDailyLimit())
	assert.Equal(t, 16, *p.DaysSinceQuit(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)))
}
