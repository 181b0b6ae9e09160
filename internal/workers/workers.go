package workers

import (
	"context"
	"time"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/notification"
)

// QuitterLister pages through users whose quit date has passed.
type QuitterLister interface {
	ListQuitterClerkIDs(ctx context.Context, after string, limit int) ([]string, error)
}

type EventSyncer interface {
	SyncEvents(ctx context.Context, clerkID string) ([]*notification.Notification, error)
}

// ProgressSweeper syncs every quitter's progress events on a timer so due
// milestones are recorded and pushed even when the app stays closed.
type ProgressSweeper struct {
	users    QuitterLister
	syncer   EventSyncer
	log      *logger.Logger
	interval time.Duration
	pageSize int
	perUser  time.Duration
}

func NewProgressSweeper(users QuitterLister, syncer EventSyncer, log *logger.Logger, interval time.Duration) *ProgressSweeper {
	return &ProgressSweeper{
		users:    users,
		syncer:   syncer,
		log:      log,
		interval: interval,
		pageSize: 200,
		perUser:  10 * time.Second,
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *ProgressSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// SweepOnce syncs every quitter once and returns how many events were
// recorded. A failing user is logged and skipped.
func (s *ProgressSweeper) SweepOnce(ctx context.Context) int {
	start := time.Now()
	users, created, after := 0, 0, ""

	for {
		ids, err := s.users.ListQuitterClerkIDs(ctx, after, s.pageSize)
		if err != nil {
			s.log.Error("progress sweep: list users failed", "after", after, "error", err)
			break
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				return created
			}
			userCtx, cancel := context.WithTimeout(ctx, s.perUser)
			events, err := s.syncer.SyncEvents(userCtx, id)
			cancel()
			if err != nil {
				s.log.Warn("progress sweep: sync failed", "clerk_id", id, "error", err)
				continue
			}
			users++
			created += len(events)
		}

		if len(ids) < s.pageSize {
			break
		}
		after = ids[len(ids)-1]
	}

	s.log.Info("progress sweep done", "users", users, "events", created, "took", time.Since(start))
	return created
}
