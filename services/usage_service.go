package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"ditchAPI/internal/progress"
	"ditchAPI/internal/types/usage"
)

const maxHistoryDays = 365

type UsageService struct {
	db       *pgxpool.Pool
	profiles *ProfileService
	now      func() time.Time
}

func NewUsageService(db *pgxpool.Pool, profiles *ProfileService) *UsageService {
	return &UsageService{db: db, profiles: profiles, now: time.Now}
}

// AddPuff appends a puff and bumps the user's total for the local day in one
// transaction.
func (s *UsageService) AddPuff(ctx context.Context, clerkID string) (*usage.TodayResponse, error) {
	p, err := s.profiles.GetProfile(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	day := progress.DayOf(now, p.Location()).Format(time.DateOnly)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO puffs (id, user_id, timestamp) VALUES ($1, $2, $3)`, uuid.New(), p.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert puff: %w", err)
	}

	var total int
	err = tx.QueryRow(ctx, `
		INSERT INTO daily_usage (id, user_id, date, total_units, updated_at)
		VALUES ($1, $2, $3, 1, NOW())
		ON CONFLICT (user_id, date)
		DO UPDATE SET total_units = daily_usage.total_units + 1, updated_at = NOW()
		RETURNING total_units
	`, uuid.New(), p.ID, day).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to update daily usage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit puff: %w", err)
	}

	resp := usage.Today(day, total, p.EffectiveDailyLimit())
	return &resp, nil
}

func (s *UsageService) GetToday(ctx context.Context, clerkID string) (*usage.TodayResponse, error) {
	p, err := s.profiles.GetProfile(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	day := progress.DayOf(s.now(), p.Location())

	var total int
	err = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_units), 0)
		FROM daily_usage
		WHERE user_id = $1 AND date = $2
	`, p.ID, day.Format(time.DateOnly)).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's usage: %w", err)
	}

	resp := usage.Today(day.Format(time.DateOnly), total, p.EffectiveDailyLimit())
	return &resp, nil
}

// GetHistory returns the last `days` calendar days ending today, ascending,
// with missing days filled in as zero.
func (s *UsageService) GetHistory(ctx context.Context, clerkID string, days int) ([]usage.DailyUsage, error) {
	if days <= 0 || days > maxHistoryDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, maxHistoryDays)
	}
	p, err := s.profiles.GetProfile(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	loc := p.Location()
	to := progress.DayOf(s.now(), loc)
	from := to.AddDate(0, 0, -(days - 1))

	rows, err := s.DailyRange(ctx, p.ID, from, to)
	if err != nil {
		return nil, err
	}

	dense := progress.FillDays(usage.ToProgress(rows), from, to, loc)
	out := make([]usage.DailyUsage, len(dense))
	for i, d := range dense {
		out[i] = usage.DailyUsage{UserID: p.ID, Date: d.Date, TotalUnits: d.TotalUnits}
	}
	return out, nil
}

func (s *UsageService) GetSummary(ctx context.Context, clerkID string, period usage.Period) (*usage.Summary, error) {
	days, ok := period.Days()
	if !ok {
		return nil, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
	}
	history, err := s.GetHistory(ctx, clerkID, days)
	if err != nil {
		return nil, err
	}
	summary := usage.Summarize(period, history)
	return &summary, nil
}

// DailyRange reads the stored rows between from and to inclusive, ascending.
// Days without usage have no row.
func (s *UsageService) DailyRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]usage.DailyUsage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, date, total_units, updated_at
		FROM daily_usage
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`, userID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily usage: %w", err)
	}
	defer rows.Close()

	var out []usage.DailyUsage
	for rows.Next() {
		var d usage.DailyUsage
		if err := rows.Scan(&d.ID, &d.UserID, &d.Date, &d.TotalUnits, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LatestDays reads the most recent n stored rows, returned ascending.
func (s *UsageService) LatestDays(ctx context.Context, userID uuid.UUID, n int) ([]usage.DailyUsage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, date, total_units, updated_at
		FROM daily_usage
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2
	`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily usage: %w", err)
	}
	defer rows.Close()

	var out []usage.DailyUsage
	for rows.Next() {
		var d usage.DailyUsage
		if err := rows.Scan(&d.ID, &d.UserID, &d.Date, &d.TotalUnits, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
