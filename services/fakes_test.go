package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/progress"
	"ditchAPI/internal/types/craving"
	"ditchAPI/internal/types/notification"
	"ditchAPI/internal/types/profile"
	"ditchAPI/internal/types/usage"
)

type fakeProfiles struct {
	mu      sync.Mutex
	profile *profile.Profile
	longest []int
}

func (f *fakeProfiles) GetProfile(_ context.Context, clerkID string) (*profile.Profile, error) {
	if f.profile == nil || f.profile.ClerkID != clerkID {
		return nil, ErrUserNotFound
	}
	cp := *f.profile
	return &cp, nil
}

func (f *fakeProfiles) RecordLongestStreak(_ context.Context, _ uuid.UUID, days int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.longest = append(f.longest, days)
	return nil
}

// fakeEvents enforces the same (user, key) uniqueness as the real table.
type fakeEvents struct {
	mu    sync.Mutex
	clock func() time.Time
	rows  []*notification.Notification
	keys  map[string]bool
}

func newFakeEvents(clock func() time.Time) *fakeEvents {
	return &fakeEvents{clock: clock, keys: map[string]bool{}}
}

func (f *fakeEvents) RecordedEvents(_ context.Context, userID uuid.UUID) ([]progress.RecordedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []progress.RecordedEvent
	for _, n := range f.rows {
		if n.UserID == userID {
			out = append(out, n.Event())
		}
	}
	return out, nil
}

func (f *fakeEvents) AppendEvents(_ context.Context, userID uuid.UUID, events []progress.RecordedEvent) ([]*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var created []*notification.Notification
	for _, ev := range events {
		k := userID.String() + "/" + ev.Key
		if f.keys[k] {
			continue
		}
		f.keys[k] = true
		title := ev.Title
		if ev.Kind == progress.KindAchievement {
			title = notification.AchievementTitle(ev.Title)
		}
		n := &notification.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      notification.NotificationType(ev.Kind),
			Title:     title,
			Message:   ev.Body,
			EventKey:  ev.Key,
			Status:    notification.StatusPending,
			CreatedAt: f.clock(),
		}
		f.rows = append(f.rows, n)
		created = append(created, n)
	}
	return created, nil
}

type fakeUsage struct {
	rows []usage.DailyUsage
}

func (f *fakeUsage) DailyRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]usage.DailyUsage, error) {
	lo, hi := from.Format(time.DateOnly), to.Format(time.DateOnly)
	var out []usage.DailyUsage
	for _, r := range f.rows {
		d := r.Date.Format(time.DateOnly)
		if r.UserID == userID && d >= lo && d <= hi {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeUsage) LatestDays(_ context.Context, userID uuid.UUID, n int) ([]usage.DailyUsage, error) {
	var out []usage.DailyUsage
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

type fakeCravings struct {
	rows []*craving.Craving
}

func (f *fakeCravings) RecentForUser(_ context.Context, _ uuid.UUID, limit int) ([]*craving.Craving, error) {
	if len(f.rows) > limit {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

type fakeSink struct {
	mu     sync.Mutex
	queued []*notification.Notification
}

func (f *fakeSink) Enqueue(n *notification.Notification) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, n)
	return true
}

type denyGuard struct {
	deny     map[string]bool
	mu       sync.Mutex
	released []string
}

func (g *denyGuard) Claim(_ context.Context, _, key string) (bool, error) {
	return !g.deny[key], nil
}

func (g *denyGuard) Release(_ context.Context, _, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released = append(g.released, key)
	return nil
}

type brokenGuard struct{}

func (brokenGuard) Claim(context.Context, string, string) (bool, error) {
	return false, errors.New("redis down")
}

func (brokenGuard) Release(context.Context, string, string) error {
	return errors.New("redis down")
}

type fakeDelivery struct {
	mu      sync.Mutex
	prefs   *notification.NotificationPreferences
	err     error
	sent    []uuid.UUID
	failed  map[uuid.UUID]string
	retries map[uuid.UUID]int
	gaveUp  map[uuid.UUID]bool
	pending []*notification.Notification
	leased  map[uuid.UUID]time.Time
	purged  int
}

func newFakeDelivery(prefs *notification.NotificationPreferences) *fakeDelivery {
	return &fakeDelivery{
		prefs:   prefs,
		failed:  map[uuid.UUID]string{},
		retries: map[uuid.UUID]int{},
		gaveUp:  map[uuid.UUID]bool{},
		leased:  map[uuid.UUID]time.Time{},
	}
}

func (f *fakeDelivery) settle(id uuid.UUID) {
	delete(f.leased, id)
	for i, n := range f.pending {
		if n.ID == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
}

func (f *fakeDelivery) GetPreferences(context.Context, uuid.UUID) (*notification.NotificationPreferences, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prefs, nil
}

func (f *fakeDelivery) MarkSent(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	f.settle(id)
	return nil
}

// MarkFailed makes retries due immediately; backoff is not simulated.
func (f *fakeDelivery) MarkFailed(_ context.Context, id uuid.UUID, reason string, maxRetries int, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = reason
	f.retries[id]++
	f.settle(id)
	if f.retries[id] < maxRetries {
		f.pending = append(f.pending, &notification.Notification{ID: id, Status: notification.StatusPending})
		return true, nil
	}
	f.gaveUp[id] = true
	return false, nil
}

func (f *fakeDelivery) addPending(n *notification.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, n)
}

// ClaimPending leases due rows until they settle or the lease runs out.
// Grace is not simulated.
func (f *fakeDelivery) ClaimPending(_ context.Context, _, lease time.Duration, limit int) ([]*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var claimed []*notification.Notification
	for _, n := range f.pending {
		if len(claimed) == limit {
			break
		}
		if until, ok := f.leased[n.ID]; ok && until.After(now) {
			continue
		}
		f.leased[n.ID] = now.Add(lease)
		claimed = append(claimed, n)
	}
	return claimed, nil
}

func (f *fakeDelivery) PurgeRead(context.Context, time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged++
	return 0, nil
}

func (f *fakeDelivery) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeDelivery) gaveUpOn(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gaveUp[id]
}

func (f *fakeDelivery) failedReason(id uuid.UUID) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.failed[id]
	return r, ok
}

// fakePush fails its first failFirst calls, then returns err.
type fakePush struct {
	mu        sync.Mutex
	err       error
	failFirst int
	calls     int
	data      []map[string]string
}

func (f *fakePush) SendPush(_ context.Context, _ []notification.DeviceToken, _, _ string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.data = append(f.data, data)
	if f.calls <= f.failFirst {
		return errors.New("service unavailable")
	}
	return f.err
}

func (f *fakePush) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
