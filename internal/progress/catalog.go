package progress

import (
	"errors"
	"fmt"
	"sort"
)

type Kind string

const (
	KindHealthBenefit Kind = "health_benefit"
	KindAchievement   Kind = "achievement"
	KindMilestone     Kind = "milestone"
	KindMotivation    Kind = "motivation"
)

// sequenceOrder breaks ties between entries of different sequences that
// share a threshold.
var sequenceOrder = []Kind{KindHealthBenefit, KindAchievement, KindMilestone}

var ErrInvalidCatalog = errors.New("invalid catalog")

type CatalogEntry struct {
	ThresholdHours int    `json:"threshold_hours"`
	Kind           Kind   `json:"kind"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	// Badge is the stable achievement type ("one_week"); empty for other kinds.
	Badge string `json:"badge,omitempty"`
}

func hoursEntry(kind Kind, hours int, title, body string) CatalogEntry {
	return CatalogEntry{ThresholdHours: hours, Kind: kind, Title: title, Body: body}
}

func daysEntry(kind Kind, days int, title, body string) CatalogEntry {
	return CatalogEntry{ThresholdHours: days * 24, Kind: kind, Title: title, Body: body}
}

func badgeEntry(badge string, days int, title, body string) CatalogEntry {
	e := daysEntry(KindAchievement, days, title, body)
	e.Badge = badge
	return e
}

// Catalog is an immutable set of threshold-keyed entries, one ascending
// sequence per kind.
type Catalog struct {
	sequences map[Kind][]CatalogEntry
}

// NewCatalog validates and copies the given sequences. Every entry must carry
// the kind of the sequence it is in, thresholds must be positive and strictly
// increasing within a sequence, and titles must be unique across the catalog.
func NewCatalog(healthBenefits, achievements, milestones []CatalogEntry) (*Catalog, error) {
	c := &Catalog{sequences: make(map[Kind][]CatalogEntry, len(sequenceOrder))}
	titles := make(map[string]Kind)

	for i, seq := range [][]CatalogEntry{healthBenefits, achievements, milestones} {
		kind := sequenceOrder[i]
		prev := 0
		for _, e := range seq {
			if e.Kind != kind {
				return nil, fmt.Errorf("%w: %q has kind %s in %s sequence", ErrInvalidCatalog, e.Title, e.Kind, kind)
			}
			if e.Title == "" {
				return nil, fmt.Errorf("%w: empty title in %s sequence", ErrInvalidCatalog, kind)
			}
			if e.ThresholdHours <= 0 {
				return nil, fmt.Errorf("%w: %q has non-positive threshold %d", ErrInvalidCatalog, e.Title, e.ThresholdHours)
			}
			if e.ThresholdHours <= prev {
				return nil, fmt.Errorf("%w: %s thresholds not strictly increasing at %q (%dh after %dh)",
					ErrInvalidCatalog, kind, e.Title, e.ThresholdHours, prev)
			}
			if other, dup := titles[e.Title]; dup {
				return nil, fmt.Errorf("%w: title %q appears in %s and %s", ErrInvalidCatalog, e.Title, other, kind)
			}
			titles[e.Title] = kind
			prev = e.ThresholdHours
		}
		c.sequences[kind] = append([]CatalogEntry(nil), seq...)
	}

	return c, nil
}

// MustCatalog is NewCatalog for tables known at compile time.
func MustCatalog(healthBenefits, achievements, milestones []CatalogEntry) *Catalog {
	c, err := NewCatalog(healthBenefits, achievements, milestones)
	if err != nil {
		panic(err)
	}
	return c
}

// Sequence returns a copy of the ascending sequence for kind.
func (c *Catalog) Sequence(kind Kind) []CatalogEntry {
	return append([]CatalogEntry(nil), c.sequences[kind]...)
}

// DueIn returns the entries of one sequence whose threshold is at or below
// elapsedHours, ascending.
func (c *Catalog) DueIn(kind Kind, elapsedHours float64) []CatalogEntry {
	var due []CatalogEntry
	for _, e := range c.sequences[kind] {
		if float64(e.ThresholdHours) > elapsedHours {
			break
		}
		due = append(due, e)
	}
	return due
}

// EntriesDueAsOf merges DueIn for every sequence into one list ascending by
// threshold. Entries sharing a threshold keep the sequence order
// health_benefit, achievement, milestone.
func (c *Catalog) EntriesDueAsOf(elapsedHours float64) []CatalogEntry {
	var due []CatalogEntry
	for _, kind := range sequenceOrder {
		due = append(due, c.DueIn(kind, elapsedHours)...)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].ThresholdHours < due[j].ThresholdHours
	})
	return due
}

// Next returns the first entry of kind not yet reached, if any.
func (c *Catalog) Next(kind Kind, elapsedHours float64) (CatalogEntry, bool) {
	for _, e := range c.sequences[kind] {
		if float64(e.ThresholdHours) > elapsedHours {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

var defaultCatalog = MustCatalog(
	[]CatalogEntry{
		hoursEntry(KindHealthBenefit, 2, "Nicotine Levels Dropping", "Your body is starting to eliminate nicotine from your system."),
		hoursEntry(KindHealthBenefit, 8, "Oxygen Levels Normalizing", "Blood oxygen levels are returning to normal, improving circulation."),
		hoursEntry(KindHealthBenefit, 24, "Carbon Monoxide Cleared", "Carbon monoxide has been eliminated from your body."),
		hoursEntry(KindHealthBenefit, 48, "Senses Improving", "Your sense of taste and smell are starting to improve significantly."),
		hoursEntry(KindHealthBenefit, 72, "Breathing Easier", "Bronchial tubes are relaxing, making breathing easier. Energy levels increasing."),
		daysEntry(KindHealthBenefit, 7, "Week Milestone", "One week nicotine-free! Physical addiction is subsiding."),
		daysEntry(KindHealthBenefit, 14, "Two Weeks Clean", "Circulation is improving. Lung function is increasing up to 30%."),
		daysEntry(KindHealthBenefit, 30, "One Month Achievement", "Coughing and shortness of breath are decreasing. Cilia in lungs are regenerating."),
		daysEntry(KindHealthBenefit, 90, "Three Months Strong", "Lung function has improved significantly. Risk of heart attack is dropping."),
		daysEntry(KindHealthBenefit, 180, "Six Months Milestone", "Your body has healed significantly. Cravings are rare and manageable."),
		daysEntry(KindHealthBenefit, 365, "One Year Celebration", "Risk of heart disease is now half that of a smoker. Incredible achievement!"),
	},
	[]CatalogEntry{
		badgeEntry("first_day", 1, "First 24 Hours", "Completed your first day without vaping"),
		badgeEntry("three_days", 3, "Three Day Warrior", "Made it through the hardest three days"),
		badgeEntry("one_week", 7, "Week Champion", "Seven days of freedom"),
		badgeEntry("two_weeks", 14, "Fortnight Victor", "Two weeks of strength"),
		badgeEntry("one_month", 30, "Monthly Master", "One full month nicotine-free"),
		badgeEntry("three_months", 90, "Quarterly Hero", "Three months of dedication"),
		badgeEntry("six_months", 180, "Half-Year Legend", "Six months of transformation"),
		badgeEntry("one_year", 365, "Annual Champion", "One full year of freedom"),
	},
	[]CatalogEntry{
		daysEntry(KindMilestone, 1, "Oxygen Levels Recovering", "Your blood oxygen levels begin to return to normal, improving energy."),
		daysEntry(KindMilestone, 2, "Nicotine Elimination", "Nicotine is nearly eliminated from your body. Cravings may peak."),
		daysEntry(KindMilestone, 3, "Lung Function Improving", "Lung function begins to improve. Breathing feels easier."),
		daysEntry(KindMilestone, 5, "Taste & Smell Returning", "Your sense of taste and smell start to recover and enhance."),
		daysEntry(KindMilestone, 7, "Circulation Boost", "Blood circulation to hands and feet improves significantly."),
		daysEntry(KindMilestone, 14, "Mental Clarity", "Brain fog lifts. Concentration and mental focus improve."),
		daysEntry(KindMilestone, 21, "Skin Improvement", "Skin tone and texture improve due to better circulation."),
		daysEntry(KindMilestone, 30, "Lung Capacity Increase", "Lung capacity increases by up to 30%. Exercise feels easier."),
		daysEntry(KindMilestone, 90, "Complete Lung Recovery", "Lung function is significantly improved. Coughing reduced."),
		daysEntry(KindMilestone, 180, "Heart Health Restored", "Risk of heart disease drops dramatically."),
		daysEntry(KindMilestone, 365, "One Year Milestone", "Major health improvements. Long-term health risks significantly reduced."),
	},
)

// DefaultCatalog returns the built-in recovery catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}
