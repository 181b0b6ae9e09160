package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ditchAPI/internal/types/goal"
)

const goalColumns = `id, user_id, title, description, target_puffs, completed_at, created_at`

type GoalService struct {
	db *pgxpool.Pool
}

func NewGoalService(db *pgxpool.Pool) *GoalService {
	return &GoalService{db: db}
}

func scanGoal(row pgx.Row) (*goal.Goal, error) {
	g := &goal.Goal{}
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.TargetPuffs, &g.CompletedAt, &g.CreatedAt)
	return g, err
}

// CreateGoal inserts the goal and, when asked, makes its target the user's
// daily limit in the same transaction.
func (s *GoalService) CreateGoal(ctx context.Context, clerkID string, req *goal.CreateGoalRequest) (*goal.Goal, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userID, err := getUserID(ctx, tx, clerkID)
	if err != nil {
		return nil, err
	}

	g, err := scanGoal(tx.QueryRow(ctx, `
		INSERT INTO goals (id, user_id, title, description, target_puffs, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING `+goalColumns,
		uuid.New(), userID, req.Title, req.Description, req.TargetPuffs,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	if req.UpdateDailyLimit {
		_, err = tx.Exec(ctx, `UPDATE profiles SET daily_limit = $2, updated_at = NOW() WHERE id = $1`, userID, req.TargetPuffs)
		if err != nil {
			return nil, fmt.Errorf("failed to update daily limit: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) ListGoals(ctx context.Context, clerkID string) ([]*goal.Goal, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %w", err)
	}
	defer rows.Close()

	goals := []*goal.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// ToggleGoal flips completion: it stamps completed_at or clears it.
func (s *GoalService) ToggleGoal(ctx context.Context, clerkID string, goalID uuid.UUID) (*goal.Goal, error) {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	g, err := scanGoal(s.db.QueryRow(ctx, `
		UPDATE goals
		SET completed_at = CASE WHEN completed_at IS NULL THEN NOW() ELSE NULL END
		WHERE id = $1 AND user_id = $2
		RETURNING `+goalColumns,
		goalID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to toggle goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, clerkID string, goalID uuid.UUID) error {
	userID, err := getUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
