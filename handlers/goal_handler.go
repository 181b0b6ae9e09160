package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/goal"
)

type goalService interface {
	CreateGoal(ctx context.Context, clerkID string, req *goal.CreateGoalRequest) (*goal.Goal, error)
	ListGoals(ctx context.Context, clerkID string) ([]*goal.Goal, error)
	ToggleGoal(ctx context.Context, clerkID string, goalID uuid.UUID) (*goal.Goal, error)
	DeleteGoal(ctx context.Context, clerkID string, goalID uuid.UUID) error
}

type GoalHandler struct {
	goals goalService
	log   *logger.Logger
}

func NewGoalHandler(goals goalService, log *logger.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, log: log}
}

// GET /api/v1/goals
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	goals, err := h.goals.ListGoals(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to list goals")
		return
	}
	respondWithJSON(w, http.StatusOK, goals)
}

// POST /api/v1/goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	var req goal.CreateGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := h.goals.CreateGoal(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to create goal")
		return
	}
	respondWithJSON(w, http.StatusCreated, g)
}

// PUT /api/v1/goals/{id}/toggle
func (h *GoalHandler) ToggleGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "goal")
	if !ok {
		return
	}

	g, err := h.goals.ToggleGoal(ctx, clerkID, id)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to toggle goal")
		return
	}
	respondWithJSON(w, http.StatusOK, g)
}

// DELETE /api/v1/goals/{id}
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "goal")
	if !ok {
		return
	}

	if err := h.goals.DeleteGoal(ctx, clerkID, id); err != nil {
		respondWithServiceError(w, h.log, err, "Failed to delete goal")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Goal deleted"})
}
