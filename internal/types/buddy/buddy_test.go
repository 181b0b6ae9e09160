package buddy

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuddyRequestValidate(t *testing.T) {
	req := &BuddyRequest{Email: "  Friend@Example.COM "}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "friend@example.com", req.Email)

	assert.ErrorIs(t, (&BuddyRequest{Email: "friend"}).Validate(), ErrInvalidBuddyRequest)
	assert.ErrorIs(t, (&BuddyRequest{}).Validate(), ErrInvalidBuddyRequest)
}

func TestSendMessageRequestValidate(t *testing.T) {
	req := &SendMessageRequest{Message: " Stay strong "}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "Stay strong", req.Message)

	assert.ErrorIs(t, (&SendMessageRequest{Message: "\n\t"}).Validate(), ErrInvalidBuddyRequest)
	assert.ErrorIs(t, (&SendMessageRequest{Message: strings.Repeat("a", MaxMessageLength+1)}).Validate(), ErrInvalidBuddyRequest)
}

func TestRespondRequestStatus(t *testing.T) {
	assert.Equal(t, StatusAccepted, RespondRequest{Accept: true}.Status())
	assert.Equal(t, StatusDeclined, RespondRequest{}.Status())
}

func TestConnectionParties(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	c := &Connection{UserID: a, BuddyID: b}

	assert.True(t, c.Involves(a))
	assert.True(t, c.Involves(b))
	assert.False(t, c.Involves(uuid.New()))
	assert.Equal(t, b, c.Other(a))
	assert.Equal(t, a, c.Other(b))
}
