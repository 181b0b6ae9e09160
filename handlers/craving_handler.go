package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/craving"
)

type cravingService interface {
	LogCraving(ctx context.Context, clerkID string, req *craving.LogCravingRequest) (*craving.Craving, error)
	ListRecent(ctx context.Context, clerkID string, limit int) ([]*craving.Craving, error)
	MarkOvercome(ctx context.Context, clerkID string, cravingID uuid.UUID) (*craving.Craving, error)
}

type CravingHandler struct {
	cravings cravingService
	log      *logger.Logger
}

func NewCravingHandler(cravings cravingService, log *logger.Logger) *CravingHandler {
	return &CravingHandler{cravings: cravings, log: log}
}

// POST /api/v1/cravings
func (h *CravingHandler) LogCraving(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	var req craving.LogCravingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.cravings.LogCraving(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to log craving")
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

// GET /api/v1/cravings?limit=20
func (h *CravingHandler) ListCravings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'limit' must be a number")
		return
	}

	cravings, err := h.cravings.ListRecent(ctx, clerkID, limit)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to list cravings")
		return
	}
	respondWithJSON(w, http.StatusOK, cravings)
}

// PUT /api/v1/cravings/{id}/overcome
func (h *CravingHandler) MarkOvercome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "craving")
	if !ok {
		return
	}

	c, err := h.cravings.MarkOvercome(ctx, clerkID, id)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to update craving")
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}
