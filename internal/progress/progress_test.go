package progress

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func TestElapsedHours(t *testing.T) {
	assert.Equal(t, 0.0, ElapsedHours(nil, testNow), "no quit date")
	assert.Equal(t, 0.0, ElapsedHours(ptrTime(testNow.Add(5*time.Hour)), testNow), "future quit date is clamped")
	assert.Equal(t, 0.0, ElapsedHours(ptrTime(testNow), testNow))
	assert.InDelta(t, 36.0, ElapsedHours(ptrTime(testNow.Add(-36*time.Hour)), testNow), 1e-9)

	assert.Equal(t, 1, ElapsedDays(ptrTime(testNow.Add(-36*time.Hour)), testNow))
	assert.Equal(t, 0, ElapsedDays(ptrTime(testNow.Add(-23*time.Hour)), testNow))
	assert.Equal(t, 0, ElapsedDays(ptrTime(testNow.Add(72*time.Hour)), testNow))
}

func TestElapsedHoursNeverNegative(t *testing.T) {
	for offset := 1; offset <= 1000; offset += 37 {
		quit := testNow.Add(time.Duration(offset) * time.Minute)
		assert.Equal(t, 0.0, ElapsedHours(&quit, testNow))
	}
}

func TestSameDayUsesLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	a := time.Date(2026, 10, 17, 2, 0, 0, 0, time.UTC)  // Oct 16 21:00 EST
	b := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC) // Oct 16 10:00 EST

	assert.False(t, SameDay(a, b, time.UTC))
	assert.True(t, SameDay(a, b, est))
}

func healthOnlyCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]CatalogEntry{
		hoursEntry(KindHealthBenefit, 2, "2h", ""),
		hoursEntry(KindHealthBenefit, 8, "8h", ""),
		hoursEntry(KindHealthBenefit, 24, "24h", ""),
		hoursEntry(KindHealthBenefit, 48, "48h", ""),
		hoursEntry(KindHealthBenefit, 72, "72h", ""),
	}, nil, nil)
	require.NoError(t, err)
	return c
}

func titlesOf[T interface{ CatalogEntry | RecordedEvent }](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := any(it).(type) {
		case CatalogEntry:
			out = append(out, v.Title)
		case RecordedEvent:
			out = append(out, v.Title)
		}
	}
	return out
}

func TestEntriesDueAsOf(t *testing.T) {
	c := healthOnlyCatalog(t)

	assert.Equal(t, []string{"2h", "8h", "24h", "48h"}, titlesOf(c.EntriesDueAsOf(48)))
	assert.Empty(t, c.EntriesDueAsOf(1.99))
	assert.Len(t, c.EntriesDueAsOf(10_000), 5)

	next, ok := c.Next(KindHealthBenefit, 48)
	require.True(t, ok)
	assert.Equal(t, "72h", next.Title)

	_, ok = c.Next(KindHealthBenefit, 72)
	assert.False(t, ok)
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name   string
		health []CatalogEntry
		ach    []CatalogEntry
	}{
		{
			name: "duplicate threshold",
			health: []CatalogEntry{
				hoursEntry(KindHealthBenefit, 2, "a", ""),
				hoursEntry(KindHealthBenefit, 2, "b", ""),
			},
		},
		{
			name: "descending thresholds",
			health: []CatalogEntry{
				hoursEntry(KindHealthBenefit, 8, "a", ""),
				hoursEntry(KindHealthBenefit, 2, "b", ""),
			},
		},
		{
			name:   "wrong kind for sequence",
			health: []CatalogEntry{hoursEntry(KindAchievement, 2, "a", "")},
		},
		{
			name:   "non-positive threshold",
			health: []CatalogEntry{hoursEntry(KindHealthBenefit, 0, "a", "")},
		},
		{
			name:   "empty title",
			health: []CatalogEntry{hoursEntry(KindHealthBenefit, 2, "", "")},
		},
		{
			name:   "title shared across sequences",
			health: []CatalogEntry{hoursEntry(KindHealthBenefit, 2, "same", "")},
			ach:    []CatalogEntry{badgeEntry("x", 1, "same", "")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.health, tt.ach, nil)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c := DefaultCatalog()
	_, err := NewCatalog(c.Sequence(KindHealthBenefit), c.Sequence(KindAchievement), c.Sequence(KindMilestone))
	require.NoError(t, err)

	// one week in: 6 health benefits, 3 achievements, 5 milestones
	due := c.EntriesDueAsOf(7 * 24)
	assert.Len(t, due, 14)
	assert.Equal(t, KindHealthBenefit, due[0].Kind)
	assert.Equal(t, KindMilestone, due[len(due)-1].Kind)

	for _, e := range c.Sequence(KindAchievement) {
		assert.NotEmpty(t, e.Badge, e.Title)
	}
}

func TestResolveCrossSequenceOrder(t *testing.T) {
	c, err := NewCatalog(
		[]CatalogEntry{hoursEntry(KindHealthBenefit, 24, "health", "")},
		[]CatalogEntry{badgeEntry("first_day", 1, "achievement", "")},
		[]CatalogEntry{daysEntry(KindMilestone, 1, "milestone", "")},
	)
	require.NoError(t, err)

	r := NewResolver(c, rand.New(rand.NewSource(1)))
	got := r.Resolve(24, NewTitleSet())

	assert.Equal(t, []string{"health", "achievement", "milestone"}, titlesOf(got))
	assert.Equal(t, []Kind{KindHealthBenefit, KindAchievement, KindMilestone},
		[]Kind{got[0].Kind, got[1].Kind, got[2].Kind})
	assert.Equal(t, "first_day", got[1].Badge)
	for _, e := range got {
		assert.Equal(t, e.Title, e.Key)
		assert.True(t, e.CreatedAt.IsZero())
	}
}

func TestEntriesDueAsOfMergesSequencesByThreshold(t *testing.T) {
	c, err := NewCatalog(
		[]CatalogEntry{
			hoursEntry(KindHealthBenefit, 2, "2h", ""),
			hoursEntry(KindHealthBenefit, 24, "24h", ""),
			hoursEntry(KindHealthBenefit, 48, "48h", ""),
		},
		[]CatalogEntry{badgeEntry("first_day", 1, "day 1 badge", "")},
		[]CatalogEntry{
			daysEntry(KindMilestone, 1, "day 1", ""),
			daysEntry(KindMilestone, 2, "day 2", ""),
		},
	)
	require.NoError(t, err)

	due := c.EntriesDueAsOf(48)
	assert.Equal(t, []string{"2h", "24h", "day 1 badge", "day 1", "48h", "day 2"}, titlesOf(due))
	for i := 1; i < len(due); i++ {
		assert.LessOrEqual(t, due[i-1].ThresholdHours, due[i].ThresholdHours)
	}

	got := NewResolver(c, nil).Resolve(48, NewTitleSet("24h"))
	assert.Equal(t, []string{"2h", "day 1 badge", "day 1", "48h", "day 2"}, titlesOf(got))
}

func TestResolveSkipsRecordedTitles(t *testing.T) {
	r := NewResolver(healthOnlyCatalog(t), nil)

	got := r.Resolve(48, NewTitleSet("8h", "unrelated"))
	assert.Equal(t, []string{"2h", "24h", "48h"}, titlesOf(got))
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(DefaultCatalog(), rand.New(rand.NewSource(7)))
	all := titlesOf(DefaultCatalog().EntriesDueAsOf(1e9))
	pick := rand.New(rand.NewSource(42))

	for _, hours := range []float64{0, 1, 2, 7.5, 24, 71.9, 72, 200, 24 * 30, 24 * 400} {
		for trial := 0; trial < 20; trial++ {
			recorded := NewTitleSet()
			for _, title := range all {
				if pick.Intn(3) == 0 {
					recorded.Add(title)
				}
			}

			first := r.Resolve(hours, recorded)
			for _, e := range first {
				assert.False(t, recorded.Has(e.Title), "proposed an already recorded title %q", e.Title)
				recorded.Add(e.Title)
			}
			assert.Empty(t, r.Resolve(hours, recorded), "hours=%v", hours)
		}
	}
}

func TestDailyMotivation(t *testing.T) {
	r := NewResolver(DefaultCatalog(), rand.New(rand.NewSource(3)))

	ev, ok := r.DailyMotivation(testNow, time.UTC, nil)
	require.True(t, ok)
	assert.Equal(t, KindMotivation, ev.Kind)
	assert.Equal(t, MotivationTitle, ev.Title)
	assert.Equal(t, "motivation:2026-10-17", ev.Key)
	assert.Contains(t, DailyMotivations, ev.Body)

	_, ok = r.DailyMotivation(testNow, time.UTC, []time.Time{testNow.Add(-3 * time.Hour)})
	assert.False(t, ok, "already motivated today")

	_, ok = r.DailyMotivation(testNow, time.UTC, []time.Time{testNow.Add(-24 * time.Hour)})
	assert.True(t, ok, "yesterday's motivation does not count")
}

func TestDailyMotivationCalendarDayIsLocal(t *testing.T) {
	r := NewResolver(DefaultCatalog(), rand.New(rand.NewSource(3)))
	est := time.FixedZone("EST", -5*3600)
	now := time.Date(2026, 10, 17, 2, 0, 0, 0, time.UTC)
	earlier := []time.Time{time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)}

	_, ok := r.DailyMotivation(now, est, earlier)
	assert.False(t, ok)

	ev, ok := r.DailyMotivation(now, time.UTC, earlier)
	require.True(t, ok)
	assert.Equal(t, "motivation:2026-10-17", ev.Key)
	assert.Equal(t, "motivation:2026-10-16", MotivationKey(now, est))
}

func TestEstimateSavings(t *testing.T) {
	quit := testNow.Add(-25 * time.Hour)
	assert.InDelta(t, 4.17, EstimateSavings(&quit, 2.00, 14, testNow), 0.005)
	assert.Equal(t, 4.17, RoundCents(EstimateSavings(&quit, 2.00, 14, testNow)))

	assert.Equal(t, 0.0, EstimateSavings(nil, 2, 14, testNow))
	future := testNow.Add(time.Hour)
	assert.Equal(t, 0.0, EstimateSavings(&future, 2, 14, testNow))
	assert.Equal(t, 0.0, EstimateSavings(&quit, -1, 14, testNow))
	assert.Equal(t, 0.0, EstimateSavings(&quit, 2, 0, testNow))
}

func TestEstimateSavingsMonotonic(t *testing.T) {
	quit := testNow
	prev := -1.0
	for step := -48; step <= 24*60; step += 5 {
		now := testNow.Add(time.Duration(step) * time.Hour)
		got := EstimateSavings(&quit, 12.5, 3, now)
		assert.GreaterOrEqual(t, got, prev, "step %d", step)
		prev = got
	}
}

func usageLog(counts ...int) []DailyUsage {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]DailyUsage, len(counts))
	for i, c := range counts {
		out[i] = DailyUsage{Date: start.AddDate(0, 0, i), TotalUnits: c}
	}
	return out
}

func TestStreaks(t *testing.T) {
	tests := []struct {
		name             string
		log              []DailyUsage
		current, longest int
	}{
		{"documented example", usageLog(0, 0, 0, 3, 0, 0, 0, 0, 2, 0), 1, 4},
		{"empty", nil, 0, 0},
		{"all zero", usageLog(0, 0, 0), 3, 3},
		{"ends with usage", usageLog(0, 0, 1), 0, 2},
		{"all usage", usageLog(4, 5), 0, 0},
		{"trailing run is longest", usageLog(1, 0, 2, 0, 0, 0), 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.current, CurrentStreak(tt.log))
			assert.Equal(t, tt.longest, LongestStreak(tt.log))
		})
	}
}

func TestFillDays(t *testing.T) {
	records := []DailyUsage{
		{Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), TotalUnits: 3},
		{Date: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), TotalUnits: 9},
	}
	from := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 4, 20, 0, 0, 0, time.UTC)

	filled := FillDays(records, from, to, time.UTC)
	require.Len(t, filled, 4)

	counts := make([]int, len(filled))
	for i, d := range filled {
		counts[i] = d.TotalUnits
	}
	assert.Equal(t, []int{0, 3, 0, 0}, counts)
	assert.Equal(t, "2026-01-04", filled[3].Date.Format(time.DateOnly))
	assert.Equal(t, 2, CurrentStreak(filled))
	assert.Equal(t, 2, LongestStreak(filled))

	assert.Nil(t, FillDays(records, to, from, time.UTC))
}
