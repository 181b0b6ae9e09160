package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ditchAPI/internal/types/craving"
)

const (
	defaultCravingLimit = 20
	maxCravingLimit     = 100
)

const cravingColumns = `id, user_id, intensity, trigger_type, trigger_description, emotional_state, overcame, duration_minutes, created_at`

type CravingService struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewCravingService(db *pgxpool.Pool) *CravingService {
	return &CravingService{db: db, now: time.Now}
}

func scanCraving(row pgx.Row) (*craving.Craving, error) {
	c := &craving.Craving{}
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Intensity,
		&c.TriggerType,
		&c.TriggerDescription,
		&c.EmotionalState,
		&c.Overcame,
		&c.DurationMinutes,
		&c.CreatedAt,
	)
	return c, err
}

func (s *CravingService) LogCraving(ctx context.Context, clerkID string, req *craving.LogCravingRequest) (*craving.Craving, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO cravings (id, user_id, intensity, trigger_type, trigger_description, emotional_state, overcame, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7)
		RETURNING ` + cravingColumns

	c, err := scanCraving(s.db.QueryRow(ctx, query,
		uuid.New(), userID, req.Intensity, req.TriggerType, req.TriggerDescription, req.EmotionalState, s.now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to log craving: %w", err)
	}
	return c, nil
}

// MarkOvercome resolves a craving once, recording how many whole minutes it
// lasted.
func (s *CravingService) MarkOvercome(ctx context.Context, clerkID string, cravingID uuid.UUID) (*craving.Craving, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := scanCraving(tx.QueryRow(ctx,
		`SELECT `+cravingColumns+` FROM cravings WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		cravingID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load craving: %w", err)
	}
	if current.Overcame {
		return nil, ErrAlreadyOvercome
	}

	minutes := craving.OvercomeDuration(current.CreatedAt, s.now())
	updated, err := scanCraving(tx.QueryRow(ctx, `
		UPDATE cravings
		SET overcame = true, duration_minutes = $3
		WHERE id = $1 AND user_id = $2
		RETURNING `+cravingColumns,
		cravingID, userID, minutes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to mark craving overcome: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit craving: %w", err)
	}
	return updated, nil
}

func (s *CravingService) ListRecent(ctx context.Context, clerkID string, limit int) ([]*craving.Craving, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	return s.RecentForUser(ctx, userID, limit)
}

// RecentForUser returns up to limit cravings, newest first.
func (s *CravingService) RecentForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*craving.Craving, error) {
	if limit <= 0 {
		limit = defaultCravingLimit
	}
	limit = min(limit, maxCravingLimit)

	rows, err := s.db.Query(ctx, `
		SELECT `+cravingColumns+`
		FROM cravings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cravings: %w", err)
	}
	defer rows.Close()

	cravings := []*craving.Craving{}
	for rows.Next() {
		c, err := scanCraving(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan craving: %w", err)
		}
		cravings = append(cravings, c)
	}
	return cravings, rows.Err()
}
