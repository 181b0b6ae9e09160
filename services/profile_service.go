package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ditchAPI/internal/types/profile"
)

const profileColumns = `
	id, clerk_id, email, full_name, daily_limit, quit_goal_date, quit_date,
	onboarding_completed, current_daily_puffs, cost_per_device, devices_per_week,
	longest_streak, timezone, motivation, biggest_challenge, vaping_duration_months,
	created_at, updated_at`

type ProfileService struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewProfileService(db *pgxpool.Pool) *ProfileService {
	return &ProfileService{db: db, now: time.Now}
}

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	err := row.Scan(
		&p.ID,
		&p.ClerkID,
		&p.Email,
		&p.FullName,
		&p.DailyLimit,
		&p.QuitGoalDate,
		&p.QuitDate,
		&p.OnboardingCompleted,
		&p.CurrentDailyPuffs,
		&p.CostPerDevice,
		&p.DevicesPerWeek,
		&p.LongestStreak,
		&p.Timezone,
		&p.Motivation,
		&p.BiggestChallenge,
		&p.VapingDurationMonths,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (s *ProfileService) GetProfile(ctx context.Context, clerkID string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE clerk_id = $1`

	p, err := scanProfile(s.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// UpsertProfile creates the profile on first call and applies the non-nil
// fields of req.
func (s *ProfileService) UpsertProfile(ctx context.Context, clerkID string, req *profile.UpsertProfileRequest) (*profile.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (id, clerk_id, timezone)
		VALUES ($1, $2, 'UTC')
		ON CONFLICT (clerk_id) DO NOTHING
	`, uuid.New(), clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	updates := []string{}
	args := []any{clerkID}
	set := func(column string, value any) {
		args = append(args, value)
		updates = append(updates, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.FullName != nil {
		set("full_name", *req.FullName)
	}
	if req.DailyLimit != nil {
		set("daily_limit", *req.DailyLimit)
	}
	if req.QuitGoalDate != nil {
		set("quit_goal_date", *req.QuitGoalDate)
	}
	if req.QuitDate != nil {
		set("quit_date", *req.QuitDate)
	}
	if req.OnboardingCompleted != nil {
		set("onboarding_completed", *req.OnboardingCompleted)
	}
	if req.CurrentDailyPuffs != nil {
		set("current_daily_puffs", *req.CurrentDailyPuffs)
	}
	if req.CostPerDevice != nil {
		set("cost_per_device", *req.CostPerDevice)
	}
	if req.DevicesPerWeek != nil {
		set("devices_per_week", *req.DevicesPerWeek)
	}
	if req.Timezone != nil && *req.Timezone != "" {
		set("timezone", *req.Timezone)
	}
	if req.Motivation != nil {
		set("motivation", *req.Motivation)
	}
	if req.BiggestChallenge != nil {
		set("biggest_challenge", *req.BiggestChallenge)
	}
	if req.VapingDurationMonths != nil {
		set("vaping_duration_months", *req.VapingDurationMonths)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE clerk_id = $1`
	if len(updates) > 0 {
		query = fmt.Sprintf(`
			UPDATE profiles
			SET %s, updated_at = NOW()
			WHERE clerk_id = $1
			RETURNING %s
		`, strings.Join(updates, ", "), profileColumns)
	}

	p, err := scanProfile(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit profile: %w", err)
	}
	return p, nil
}

// SetQuitDate records the quit instant. A nil quitDate means now.
func (s *ProfileService) SetQuitDate(ctx context.Context, clerkID string, quitDate *time.Time) (*profile.Profile, error) {
	at := s.now()
	if quitDate != nil {
		at = *quitDate
	}

	query := `
		UPDATE profiles
		SET quit_date = $2, updated_at = NOW()
		WHERE clerk_id = $1
		RETURNING ` + profileColumns

	p, err := scanProfile(s.db.QueryRow(ctx, query, clerkID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to set quit date: %w", err)
	}
	return p, nil
}

// RecordLongestStreak raises the stored longest streak; it never lowers it.
func (s *ProfileService) RecordLongestStreak(ctx context.Context, userID uuid.UUID, days int) error {
	_, err := s.db.Exec(ctx, `
		UPDATE profiles
		SET longest_streak = $2, updated_at = NOW()
		WHERE id = $1 AND longest_streak < $2
	`, userID, days)
	if err != nil {
		return fmt.Errorf("failed to record longest streak: %w", err)
	}
	return nil
}

// ListQuitterClerkIDs pages through users whose quit date has passed, ordered
// by clerk id. Pass the last id of the previous page as after.
func (s *ProfileService) ListQuitterClerkIDs(ctx context.Context, after string, limit int) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT clerk_id
		FROM profiles
		WHERE quit_date IS NOT NULL AND quit_date <= NOW() AND clerk_id > $1
		ORDER BY clerk_id
		LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quitters: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan clerk id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteProfile removes the profile and, through cascading keys, everything
// recorded for it. Deleting an unknown user is not an error.
func (s *ProfileService) DeleteProfile(ctx context.Context, clerkID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
