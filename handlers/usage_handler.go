package handlers

import (
	"context"
	"net/http"
	"time"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/usage"
)

type usageService interface {
	AddPuff(ctx context.Context, clerkID string) (*usage.TodayResponse, error)
	GetToday(ctx context.Context, clerkID string) (*usage.TodayResponse, error)
	GetHistory(ctx context.Context, clerkID string, days int) ([]usage.DailyUsage, error)
	GetSummary(ctx context.Context, clerkID string, period usage.Period) (*usage.Summary, error)
}

type UsageHandler struct {
	usage usageService
	log   *logger.Logger
}

func NewUsageHandler(usage usageService, log *logger.Logger) *UsageHandler {
	return &UsageHandler{usage: usage, log: log}
}

// POST /api/v1/usage/puff
func (h *UsageHandler) AddPuff(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	today, err := h.usage.AddPuff(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to log puff")
		return
	}
	respondWithJSON(w, http.StatusCreated, today)
}

// GET /api/v1/usage/today
func (h *UsageHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	today, err := h.usage.GetToday(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get today's usage")
		return
	}
	respondWithJSON(w, http.StatusOK, today)
}

// GET /api/v1/usage/history?days=7
func (h *UsageHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	days, err := queryInt(r, "days", 7)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'days' must be a number")
		return
	}

	history, err := h.usage.GetHistory(ctx, clerkID, days)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get usage history")
		return
	}
	respondWithJSON(w, http.StatusOK, history)
}

// GET /api/v1/usage/summary?period=week
func (h *UsageHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	period := usage.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = usage.PeriodWeek
	}

	summary, err := h.usage.GetSummary(ctx, clerkID, period)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get usage summary")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}
