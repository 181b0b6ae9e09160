package handlers

import (
	"context"
	"net/http"
	"time"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/progress"
	"ditchAPI/internal/types/notification"
	"ditchAPI/internal/types/overview"
)

type progressService interface {
	SyncEvents(ctx context.Context, clerkID string) ([]*notification.Notification, error)
	GetOverview(ctx context.Context, clerkID string) (*overview.Overview, error)
}

type insightService interface {
	GenerateInsights(ctx context.Context, clerkID string) ([]progress.Insight, error)
}

type SyncResponse struct {
	Created []*notification.Notification `json:"created"`
	Count   int                          `json:"count"`
}

type ProgressHandler struct {
	progress progressService
	insights insightService
	log      *logger.Logger
}

func NewProgressHandler(progress progressService, insights insightService, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{progress: progress, insights: insights, log: log}
}

// POST /api/v1/progress/sync records every event that has come due since the
// last sync and returns the new ones.
func (h *ProgressHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	created, err := h.progress.SyncEvents(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to sync progress")
		return
	}
	if created == nil {
		created = []*notification.Notification{}
	}
	respondWithJSON(w, http.StatusOK, SyncResponse{Created: created, Count: len(created)})
}

// GET /api/v1/progress/overview
func (h *ProgressHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	ov, err := h.progress.GetOverview(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get progress overview")
		return
	}
	respondWithJSON(w, http.StatusOK, ov)
}

// GET /api/v1/premium/insights. Routed behind middleware.RequirePremium.
func (h *ProgressHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	insights, err := h.insights.GenerateInsights(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to generate insights")
		return
	}
	if insights == nil {
		insights = []progress.Insight{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"insights": insights})
}
