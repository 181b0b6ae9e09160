package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ditchAPI/internal/logger"
	"ditchAPI/internal/types/buddy"
	"ditchAPI/internal/types/community"
	"ditchAPI/services"
)

type fakeCommunity struct {
	limit    int
	reaction community.ReactionType
}

func (f *fakeCommunity) ListPosts(_ context.Context, _ string, limit int) ([]*community.Post, error) {
	f.limit = limit
	return []*community.Post{}, nil
}

func (f *fakeCommunity) CreatePost(_ context.Context, _ string, req *community.CreatePostRequest) (*community.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	return &community.Post{ID: uuid.New(), Content: req.Content, PostType: req.PostType}, nil
}

func (f *fakeCommunity) ToggleReaction(_ context.Context, _ string, postID uuid.UUID, req *community.ReactRequest) (*community.ReactionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	f.reaction = req.ReactionType
	rt := req.ReactionType
	return &community.ReactionResult{PostID: postID, Reacted: true, ReactionType: &rt, ReactionCount: 1}, nil
}

func (f *fakeCommunity) DeletePost(context.Context, string, uuid.UUID) error {
	return services.ErrNotFound
}

func TestCommunityHandler(t *testing.T) {
	fc := &fakeCommunity{}
	h := NewCommunityHandler(fc, logger.Nop())

	rec := serve(h.ListPosts, newRequest(http.MethodGet, "/api/v1/community/posts?limit=500", "", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, community.DefaultFeedSize, fc.limit)

	serve(h.ListPosts, newRequest(http.MethodGet, "/api/v1/community/posts?limit=5", "", nil))
	assert.Equal(t, 5, fc.limit)

	rec = serve(h.CreatePost, newRequest(http.MethodPost, "/api/v1/community/posts", `{"content":"  "}`, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.CreatePost, newRequest(http.MethodPost, "/api/v1/community/posts", `{"content":"One week today","postType":"milestone"}`, nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var post community.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, community.PostMilestone, post.PostType)

	postID := uuid.NewString()
	rec = serve(h.ToggleReaction, newRequest(http.MethodPost, "/", "", map[string]string{"id": postID}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, community.ReactionHeart, fc.reaction)

	rec = serve(h.ToggleReaction, newRequest(http.MethodPost, "/", `{"reactionType":"fire"}`, map[string]string{"id": postID}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"postId":%q,"reacted":true,"reactionType":"fire","reactionCount":1}`, postID), rec.Body.String())

	rec = serve(h.ToggleReaction, newRequest(http.MethodPost, "/", `{"reactionType":"thumbs"}`, map[string]string{"id": postID}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.DeletePost, newRequest(http.MethodDelete, "/", "", map[string]string{"id": postID}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeBuddies struct {
	responded buddy.RespondRequest
	sendErr   error
}

func (f *fakeBuddies) SendRequest(_ context.Context, _ string, req *buddy.BuddyRequest) (*buddy.Connection, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	if req.Email == "taken@ditch.test" {
		return nil, services.ErrAlreadyConnected
	}
	return &buddy.Connection{ID: uuid.New(), Status: buddy.StatusPending}, nil
}

func (f *fakeBuddies) RespondToRequest(_ context.Context, _ string, id uuid.UUID, req buddy.RespondRequest) (*buddy.Connection, error) {
	f.responded = req
	return &buddy.Connection{ID: id, Status: req.Status()}, nil
}

func (f *fakeBuddies) ListBuddies(context.Context, string) ([]*buddy.Connection, error) {
	return []*buddy.Connection{}, nil
}

func (f *fakeBuddies) ListRequests(context.Context, string) ([]*buddy.Connection, error) {
	return []*buddy.Connection{}, nil
}

func (f *fakeBuddies) RemoveBuddy(context.Context, string, uuid.UUID) error { return nil }

func (f *fakeBuddies) GetMessages(context.Context, string, uuid.UUID) ([]*buddy.Message, error) {
	return nil, services.ErrNotConnected
}

func (f *fakeBuddies) SendMessage(_ context.Context, _ string, id uuid.UUID, req *buddy.SendMessageRequest) (*buddy.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	return &buddy.Message{ID: uuid.New(), ConnectionID: id, Message: req.Message, IsMine: true}, nil
}

func TestBuddyHandler(t *testing.T) {
	fb := &fakeBuddies{}
	h := NewBuddyHandler(fb, logger.Nop())

	rec := serve(h.ListBuddies, newRequest(http.MethodGet, "/api/v1/buddies", "", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(h.ListRequests, newRequest(http.MethodGet, "/api/v1/buddies/requests", "", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(h.SendRequest, newRequest(http.MethodPost, "/api/v1/buddies/requests", `{"email":"nope"}`, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.SendRequest, newRequest(http.MethodPost, "/api/v1/buddies/requests", `{"email":"Taken@Ditch.test"}`, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h.SendRequest, newRequest(http.MethodPost, "/api/v1/buddies/requests", `{"email":"new@ditch.test"}`, nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	id := uuid.NewString()
	rec = serve(h.RespondToRequest, newRequest(http.MethodPut, "/", `{"accept":true}`, map[string]string{"id": id}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fb.responded.Accept)
	assert.Contains(t, rec.Body.String(), `"status":"accepted"`)

	rec = serve(h.RespondToRequest, newRequest(http.MethodPut, "/", `{"accept":true}`, map[string]string{"id": "nope"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.RemoveBuddy, newRequest(http.MethodDelete, "/", "", map[string]string{"id": id}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h.GetMessages, newRequest(http.MethodGet, "/", "", map[string]string{"id": id}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h.SendMessage, newRequest(http.MethodPost, "/", `{"message":"  "}`, map[string]string{"id": id}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.SendMessage, newRequest(http.MethodPost, "/", `{"message":"Stay strong today!"}`, map[string]string{"id": id}))
	require.Equal(t, http.StatusCreated, rec.Code)
	var m buddy.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "Stay strong today!", m.Message)
	assert.True(t, m.IsMine)

	fb.sendErr = services.ErrNotFound
	rec = serve(h.SendMessage, newRequest(http.MethodPost, "/", `{"message":"hi"}`, map[string]string{"id": id}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h.QuickMessages, newRequest(http.MethodGet, "/api/v1/buddies/quick-messages", "", nil))
	var quick map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quick))
	assert.Len(t, quick["messages"], len(buddy.QuickMessages))
}
