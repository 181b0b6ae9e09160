package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/community"
)

type communityService interface {
	ListPosts(ctx context.Context, clerkID string, limit int) ([]*community.Post, error)
	CreatePost(ctx context.Context, clerkID string, req *community.CreatePostRequest) (*community.Post, error)
	ToggleReaction(ctx context.Context, clerkID string, postID uuid.UUID, req *community.ReactRequest) (*community.ReactionResult, error)
	DeletePost(ctx context.Context, clerkID string, postID uuid.UUID) error
}

type CommunityHandler struct {
	community communityService
	log       *logger.Logger
}

func NewCommunityHandler(community communityService, log *logger.Logger) *CommunityHandler {
	return &CommunityHandler{community: community, log: log}
}

// GET /api/v1/community/posts?limit=20
func (h *CommunityHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", community.DefaultFeedSize)
	if err != nil || limit < 1 || limit > community.MaxFeedSize {
		limit = community.DefaultFeedSize
	}

	posts, err := h.community.ListPosts(ctx, clerkID, limit)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to fetch posts")
		return
	}
	respondWithJSON(w, http.StatusOK, posts)
}

// POST /api/v1/community/posts
func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	var req community.CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.community.CreatePost(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to create post")
		return
	}
	respondWithJSON(w, http.StatusCreated, post)
}

// POST /api/v1/community/posts/{id}/reactions
func (h *CommunityHandler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "post")
	if !ok {
		return
	}

	var req community.ReactRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	result, err := h.community.ToggleReaction(ctx, clerkID, id, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to react to post")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// DELETE /api/v1/community/posts/{id}
func (h *CommunityHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := authenticated(w, ctx)
	if !ok {
		return
	}

	id, ok := pathID(w, r, "post")
	if !ok {
		return
	}

	if err := h.community.DeletePost(ctx, clerkID, id); err != nil {
		respondWithServiceError(w, h.log, err, "Failed to delete post")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}
