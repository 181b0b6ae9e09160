package progress

import (
	"math/rand"
	"sync"
	"time"
)

const MotivationTitle = "Daily Motivation"

var DailyMotivations = []string{
	"Every day without vaping is a victory for your health.",
	"Your lungs are thanking you right now.",
	"You're stronger than your cravings.",
	"Each smoke-free day adds time to your life.",
	"Your body is healing with every passing hour.",
	"You've already come so far. Keep going!",
	"Breaking free from nicotine is one of the best gifts you can give yourself.",
	"Your future self will thank you for this decision.",
	"Every craving you overcome makes you stronger.",
	"You're not giving up something, you're gaining freedom.",
	"Your health improvements are happening right now, even if you can't see them.",
	"You're proving to yourself that you can do hard things.",
}

// RecordedEvent is a catalog entry (or daily motivation) that has fired for a
// user. Key is the idempotency key the store enforces uniqueness on: the
// title for catalog events, "motivation:YYYY-MM-DD" for motivations.
// CreatedAt is zero on proposals; the store stamps it on insert.
type RecordedEvent struct {
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Badge     string    `json:"badge,omitempty"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// TitleSet is the snapshot of titles a user already has on record.
type TitleSet map[string]struct{}

func NewTitleSet(titles ...string) TitleSet {
	s := make(TitleSet, len(titles))
	for _, t := range titles {
		s[t] = struct{}{}
	}
	return s
}

func (s TitleSet) Has(title string) bool {
	_, ok := s[title]
	return ok
}

func (s TitleSet) Add(title string) {
	s[title] = struct{}{}
}

// Resolver proposes catalog events that are due but not yet recorded.
type Resolver struct {
	catalog     *Catalog
	motivations []string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver builds a resolver over catalog. rng picks the daily motivation
// text; pass a seeded source in tests. A nil rng is seeded from the clock.
func NewResolver(catalog *Catalog, rng *rand.Rand) *Resolver {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{catalog: catalog, motivations: DailyMotivations, rng: rng}
}

func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve returns every due entry whose title is not in recorded, in catalog
// order. Feeding the titles of the result back into recorded makes the next
// call return nothing.
func (r *Resolver) Resolve(elapsedHours float64, recorded TitleSet) []RecordedEvent {
	var out []RecordedEvent
	for _, e := range r.catalog.EntriesDueAsOf(elapsedHours) {
		if recorded.Has(e.Title) {
			continue
		}
		out = append(out, RecordedEvent{
			Kind:  e.Kind,
			Title: e.Title,
			Body:  e.Body,
			Badge: e.Badge,
			Key:   e.Title,
		})
	}
	return out
}

// DailyMotivation proposes one motivation event for the calendar day of now
// in loc, unless one of the given earlier motivations already falls on it.
// The text is picked at random.
func (r *Resolver) DailyMotivation(now time.Time, loc *time.Location, earlier []time.Time) (RecordedEvent, bool) {
	for _, at := range earlier {
		if SameDay(at, now, loc) {
			return RecordedEvent{}, false
		}
	}
	if len(r.motivations) == 0 {
		return RecordedEvent{}, false
	}

	r.mu.Lock()
	msg := r.motivations[r.rng.Intn(len(r.motivations))]
	r.mu.Unlock()

	return RecordedEvent{
		Kind:  KindMotivation,
		Title: MotivationTitle,
		Body:  msg,
		Key:   MotivationKey(now, loc),
	}, true
}

// MotivationKey is the per-day idempotency key for motivation events.
func MotivationKey(day time.Time, loc *time.Location) string {
	return string(KindMotivation) + ":" + DayOf(day, loc).Format(time.DateOnly)
}
