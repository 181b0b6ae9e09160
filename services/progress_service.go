package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/dedupe"
	"ditchAPI/internal/logger"
	"ditchAPI/internal/progress"
	"ditchAPI/internal/types/notification"
	"ditchAPI/internal/types/overview"
	"ditchAPI/internal/types/profile"
	"ditchAPI/internal/types/usage"
)

type ProfileStore interface {
	GetProfile(ctx context.Context, clerkID string) (*profile.Profile, error)
	RecordLongestStreak(ctx context.Context, userID uuid.UUID, days int) error
}

type EventStore interface {
	RecordedEvents(ctx context.Context, userID uuid.UUID) ([]progress.RecordedEvent, error)
	AppendEvents(ctx context.Context, userID uuid.UUID, events []progress.RecordedEvent) ([]*notification.Notification, error)
}

type UsageReader interface {
	DailyRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]usage.DailyUsage, error)
}

type NotificationSink interface {
	Enqueue(n *notification.Notification) bool
}

type ProgressService struct {
	profiles ProfileStore
	events   EventStore
	usage    UsageReader
	guard    dedupe.Guard
	sink     NotificationSink
	resolver *progress.Resolver
	log      *logger.Logger
	now      func() time.Time
}

func NewProgressService(
	profiles ProfileStore,
	events EventStore,
	usage UsageReader,
	guard dedupe.Guard,
	sink NotificationSink,
	resolver *progress.Resolver,
	log *logger.Logger,
) *ProgressService {
	if guard == nil {
		guard = dedupe.NopGuard{}
	}
	if resolver == nil {
		resolver = progress.NewResolver(nil, nil)
	}
	return &ProgressService{
		profiles: profiles,
		events:   events,
		usage:    usage,
		guard:    guard,
		sink:     sink,
		resolver: resolver,
		log:      log,
		now:      time.Now,
	}
}

// SyncEvents writes every catalog event now due for the user, plus today's
// motivation, and queues them for delivery. It returns only the events this
// call created; a second call right after returns none.
func (s *ProgressService) SyncEvents(ctx context.Context, clerkID string) ([]*notification.Notification, error) {
	p, err := s.profiles.GetProfile(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	recorded, err := s.events.RecordedEvents(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	titles := progress.NewTitleSet()
	var motivations []time.Time
	for _, ev := range recorded {
		titles.Add(ev.Key)
		if ev.Kind == progress.KindMotivation {
			motivations = append(motivations, ev.CreatedAt)
		}
	}

	proposals := s.resolver.Resolve(progress.ElapsedHours(p.QuitDate, now), titles)
	if p.QuitDate != nil && !p.QuitDate.After(now) {
		if m, ok := s.resolver.DailyMotivation(now, p.Location(), motivations); ok && !titles.Has(m.Key) {
			proposals = append(proposals, m)
		}
	}
	if len(proposals) == 0 {
		return nil, nil
	}

	userKey := p.ID.String()
	claimed := make([]progress.RecordedEvent, 0, len(proposals))
	for _, ev := range proposals {
		ok, err := s.guard.Claim(ctx, userKey, ev.Key)
		if err != nil {
			// the unique constraint still protects the write
			s.log.Warn("event claim failed", "user", userKey, "key", ev.Key, "error", err)
			ok = true
		}
		if !ok {
			continue
		}
		claimed = append(claimed, ev)
	}
	defer func() {
		for _, ev := range claimed {
			if err := s.guard.Release(context.WithoutCancel(ctx), userKey, ev.Key); err != nil {
				s.log.Warn("event release failed", "user", userKey, "key", ev.Key, "error", err)
			}
		}
	}()

	created, err := s.events.AppendEvents(ctx, p.ID, claimed)
	if err != nil {
		return nil, err
	}

	for _, n := range created {
		eventsProposed.WithLabelValues(string(n.Type)).Inc()
		if s.sink != nil && !s.sink.Enqueue(n) {
			s.log.Warn("notification not queued, left for pending pickup", "notification", n.ID)
		}
	}
	if len(created) > 0 {
		s.log.Info("progress events recorded", "user", userKey, "count", len(created))
	}
	return created, nil
}

// GetOverview derives the user's progress as of now. Streaks count
// zero-usage days from the quit date (or sign-up, before quitting) through
// today in the user's timezone.
func (s *ProgressService) GetOverview(ctx context.Context, clerkID string) (*overview.Overview, error) {
	p, err := s.profiles.GetProfile(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	loc := p.Location()
	qp := p.QuitProfile()

	hours := progress.ElapsedHours(qp.QuitAt, now)
	out := &overview.Overview{
		QuitDate:     qp.QuitAt,
		ElapsedHours: hours,
		ElapsedDays:  progress.ElapsedDays(qp.QuitAt, now),
		MoneySaved:   progress.RoundCents(progress.EstimateSavings(qp.QuitAt, qp.CostPerUnit, qp.UnitsPerWeek, now)),
	}
	out.Timeline, out.Next = overview.BuildTimeline(s.resolver.Catalog(), hours)

	origin := p.CreatedAt
	if p.QuitDate != nil {
		origin = *p.QuitDate
	}
	from, to := progress.DayOf(origin, loc), progress.DayOf(now, loc)
	if !from.After(to) {
		rows, err := s.usage.DailyRange(ctx, p.ID, from, to)
		if err != nil {
			return nil, err
		}
		log := progress.FillDays(usage.ToProgress(rows), from, to, loc)
		out.CurrentStreak = progress.CurrentStreak(log)
		out.LongestStreak = progress.LongestStreak(log)
	}

	if out.LongestStreak > p.LongestStreak {
		if err := s.profiles.RecordLongestStreak(ctx, p.ID, out.LongestStreak); err != nil {
			s.log.Warn("record longest streak failed", "user", p.ID, "error", err)
		}
	} else {
		out.LongestStreak = p.LongestStreak
	}
	return out, nil
}
