package community

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreatePostRequestValidate(t *testing.T) {
	req := &CreatePostRequest{Content: "  Day 3, still going  "}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "Day 3, still going", req.Content)
	assert.Equal(t, PostStory, req.PostType)

	assert.ErrorIs(t, (&CreatePostRequest{Content: "  "}).Validate(), ErrInvalidPost)
	assert.ErrorIs(t, (&CreatePostRequest{Content: "hi", PostType: "rant"}).Validate(), ErrInvalidPost)
	assert.ErrorIs(t, (&CreatePostRequest{Content: strings.Repeat("é", MaxContentLength+1)}).Validate(), ErrInvalidPost)
	assert.NoError(t, (&CreatePostRequest{Content: strings.Repeat("é", MaxContentLength)}).Validate())
}

func TestReactRequestValidate(t *testing.T) {
	req := &ReactRequest{}
	assert.NoError(t, req.Validate())
	assert.Equal(t, ReactionHeart, req.ReactionType)

	assert.NoError(t, (&ReactRequest{ReactionType: ReactionZap}).Validate())
	assert.ErrorIs(t, (&ReactRequest{ReactionType: "thumbs"}).Validate(), ErrInvalidPost)
}

func TestPostForViewer(t *testing.T) {
	author, viewer := uuid.New(), uuid.New()
	name := "Sam"

	p := &Post{UserID: author, AuthorName: &name, IsAnonymous: true}
	p.ForViewer(viewer)
	assert.Nil(t, p.AuthorName)
	assert.False(t, p.IsMine)

	p = &Post{UserID: author, AuthorName: &name}
	p.ForViewer(author)
	assert.Equal(t, "Sam", *p.AuthorName)
	assert.True(t, p.IsMine)
}

func TestNewMilestoneData(t *testing.T) {
	assert.Equal(t, &MilestoneData{DaysClean: 10, PuffsAvoided: 1200}, NewMilestoneData(10, 120))
	assert.Equal(t, 0, NewMilestoneData(0, 120).PuffsAvoided)
}
