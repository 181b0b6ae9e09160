package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/buddy"
)

type buddyService interface {
	SendRequest(ctx context.Context, clerkID string, req *buddy.BuddyRequest) (*buddy.Connection, error)
	RespondToRequest(ctx context.Context, clerkID string, connectionID uuid.UUID, req buddy.RespondRequest) (*buddy.Connection, error)
	ListBuddies(ctx context.Context, clerkID string) ([]*buddy.Connection, error)
	ListRequests(ctx context.Context, clerkID string) ([]*buddy.Connection, error)
	RemoveBuddy(ctx context.Context, clerkID string, connectionID uuid.UUID) error
	GetMessages(ctx context.Context, clerkID string, connectionID uuid.UUID) ([]*buddy.Message, error)
	SendMessage(ctx context.Context, clerkID string, connectionID uuid.UUID, req *buddy.SendMessageRequest) (*buddy.Message, error)
}

type BuddyHandler struct {
	buddies buddyService
	log     *logger.Logger
}

func NewBuddyHandler(buddies buddyService, log *logger.Logger) *BuddyHandler {
	return &BuddyHandler{buddies: buddies, log: log}
}

// GET /api/v1/buddies
func (h *BuddyHandler) ListBuddies(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	buddies, err := h.buddies.ListBuddies(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to fetch buddies")
		return
	}
	respondWithJSON(w, http.StatusOK, buddies)
}

// GET /api/v1/buddies/requests
func (h *BuddyHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	requests, err := h.buddies.ListRequests(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to fetch buddy requests")
		return
	}
	respondWithJSON(w, http.StatusOK, requests)
}

// POST /api/v1/buddies/requests
func (h *BuddyHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	var req buddy.BuddyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.buddies.SendRequest(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to send buddy request")
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

// PUT /api/v1/buddies/requests/{id}
func (h *BuddyHandler) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "request")
	if !ok {
		return
	}

	var req buddy.RespondRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.buddies.RespondToRequest(ctx, clerkID, id, req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to respond to buddy request")
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

// DELETE /api/v1/buddies/{id}
func (h *BuddyHandler) RemoveBuddy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "buddy")
	if !ok {
		return
	}

	if err := h.buddies.RemoveBuddy(ctx, clerkID, id); err != nil {
		respondWithServiceError(w, h.log, err, "Failed to remove buddy")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Buddy removed"})
}

// GET /api/v1/buddies/{id}/messages
func (h *BuddyHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "buddy")
	if !ok {
		return
	}

	messages, err := h.buddies.GetMessages(ctx, clerkID, id)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to fetch messages")
		return
	}
	respondWithJSON(w, http.StatusOK, messages)
}

// POST /api/v1/buddies/{id}/messages
func (h *BuddyHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "buddy")
	if !ok {
		return
	}

	var req buddy.SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m, err := h.buddies.SendMessage(ctx, clerkID, id, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to send message")
		return
	}
	respondWithJSON(w, http.StatusCreated, m)
}

// GET /api/v1/buddies/quick-messages
func (h *BuddyHandler) QuickMessages(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{"messages": buddy.QuickMessages})
}
