package goal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidGoal = errors.New("invalid goal")

type Goal struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	TargetPuffs int        `json:"targetPuffs" db:"target_puffs"`
	CompletedAt *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

func (g *Goal) Completed() bool {
	return g.CompletedAt != nil
}

type CreateGoalRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	TargetPuffs int     `json:"targetPuffs"`
	// UpdateDailyLimit also writes TargetPuffs to the profile's daily limit.
	UpdateDailyLimit bool `json:"updateDailyLimit"`
}

func (r *CreateGoalRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidGoal)
	}
	if r.TargetPuffs < 0 {
		return fmt.Errorf("%w: targetPuffs must be >= 0", ErrInvalidGoal)
	}
	return nil
}
