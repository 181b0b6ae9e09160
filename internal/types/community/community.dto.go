package community

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxContentLength = 2000
	DefaultFeedSize  = 20
	MaxFeedSize      = 50
)

var ErrInvalidPost = errors.New("invalid post")

type CreatePostRequest struct {
	Content     string   `json:"content"`
	PostType    PostType `json:"postType"`
	IsAnonymous bool     `json:"isAnonymous"`
}

func (r *CreatePostRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidPost)
	}
	if utf8.RuneCountInString(r.Content) > MaxContentLength {
		return fmt.Errorf("%w: content exceeds %d characters", ErrInvalidPost, MaxContentLength)
	}
	if r.PostType == "" {
		r.PostType = PostStory
	}
	switch r.PostType {
	case PostMilestone, PostStory, PostEncouragement, PostTip:
	default:
		return fmt.Errorf("%w: unknown post type %q", ErrInvalidPost, r.PostType)
	}
	return nil
}

type ReactRequest struct {
	ReactionType ReactionType `json:"reactionType"`
}

func (r *ReactRequest) Validate() error {
	if r.ReactionType == "" {
		r.ReactionType = ReactionHeart
	}
	switch r.ReactionType {
	case ReactionHeart, ReactionFire, ReactionZap, ReactionStar:
		return nil
	}
	return fmt.Errorf("%w: unknown reaction %q", ErrInvalidPost, r.ReactionType)
}
