package handlers

import (
	"context"
	"net/http"
	"time"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/profile"
)

type profileService interface {
	GetProfile(ctx context.Context, clerkID string) (*profile.Profile, error)
	UpsertProfile(ctx context.Context, clerkID string, req *profile.UpsertProfileRequest) (*profile.Profile, error)
	SetQuitDate(ctx context.Context, clerkID string, quitDate *time.Time) (*profile.Profile, error)
}

type ProfileHandler struct {
	profiles profileService
	log      *logger.Logger
}

func NewProfileHandler(profiles profileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	p, err := h.profiles.GetProfile(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get profile")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

// PUT /api/v1/profile creates the profile on first call and patches the
// supplied fields afterwards.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	var req profile.UpsertProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.profiles.UpsertProfile(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to update profile")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

// PUT /api/v1/profile/quit-date. An empty body or null quitDate means now.
func (h *ProfileHandler) SetQuitDate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	var req profile.SetQuitDateRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	p, err := h.profiles.SetQuitDate(ctx, clerkID, req.QuitDate)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to set quit date")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}
