package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ditchAPI/internal/progress"
	"ditchAPI/internal/types/craving"
	"ditchAPI/internal/types/profile"
	"ditchAPI/internal/types/usage"
)

const (
	insightWindowDays = 14
	insightCravings   = 50
)

type ProfileReader interface {
	GetProfile(ctx context.Context, clerkID string) (*profile.Profile, error)
}

type UsageHistory interface {
	LatestDays(ctx context.Context, userID uuid.UUID, n int) ([]usage.DailyUsage, error)
}

type CravingReader interface {
	RecentForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*craving.Craving, error)
}

type InsightService struct {
	profiles ProfileReader
	usage    UsageHistory
	cravings CravingReader
	now      func() time.Time
}

func NewInsightService(profiles ProfileReader, usage UsageHistory, cravings CravingReader) *InsightService {
	return &InsightService{profiles: profiles, usage: usage, cravings: cravings, now: time.Now}
}

// GenerateInsights feeds the user's latest 14 logged days and recent
// cravings to the insight rules.
func (s *InsightService) GenerateInsights(ctx context.Context, clerkID string) ([]progress.Insight, error) {
	p, err := s.profiles.GetProfile(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	loc := p.Location()

	var (
		days     []usage.DailyUsage
		cravings []*craving.Craving
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		days, err = s.usage.LatestDays(gctx, p.ID, insightWindowDays)
		return err
	})
	g.Go(func() error {
		var err error
		cravings, err = s.cravings.RecentForUser(gctx, p.ID, insightCravings)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in := BuildInsightInput(usage.ToProgress(days), craving.Events(cravings), now, loc)
	in.DaysSinceQuit = p.DaysSinceQuit(now)

	insights := progress.GenerateInsights(in)
	for _, ins := range insights {
		insightsGenerated.WithLabelValues(string(ins.Kind)).Inc()
	}
	return insights, nil
}

// BuildInsightInput splits up to 14 ascending logged days into the last and
// previous week, and picks out today's row.
func BuildInsightInput(days []progress.DailyUsage, cravings []progress.CravingEvent, now time.Time, loc *time.Location) progress.InsightInput {
	in := progress.InsightInput{RecentCravings: cravings, Location: loc}

	today := progress.DayOf(now, loc).Format(time.DateOnly)
	in.Today = progress.DailyUsage{Date: progress.DayOf(now, loc)}
	for _, d := range days {
		if d.Date.Format(time.DateOnly) == today {
			in.Today = d
		}
	}

	split := max(len(days)-7, 0)
	in.LastWeek = days[split:]
	in.PreviousWeek = days[max(split-7, 0):split]
	return in
}
