package buddy

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxMessageLength = 1000
	MessagePageSize  = 100
)

var ErrInvalidBuddyRequest = errors.New("invalid buddy request")

type BuddyRequest struct {
	Email string `json:"email"`
}

func (r *BuddyRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidBuddyRequest)
	}
	return nil
}

type RespondRequest struct {
	Accept bool `json:"accept"`
}

func (r RespondRequest) Status() Status {
	if r.Accept {
		return StatusAccepted
	}
	return StatusDeclined
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

func (r *SendMessageRequest) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	if r.Message == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidBuddyRequest)
	}
	if utf8.RuneCountInString(r.Message) > MaxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidBuddyRequest, MaxMessageLength)
	}
	return nil
}
