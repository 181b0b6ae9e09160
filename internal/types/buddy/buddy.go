package buddy

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusBlocked  Status = "blocked"
)

// Connection links two users. UserID is the requester and BuddyID the
// recipient; once accepted the link is symmetric.
type Connection struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"userId" db:"user_id"`
	BuddyID           uuid.UUID `json:"buddyId" db:"buddy_id"`
	Status            Status    `json:"status" db:"status"`
	InitiatedBy       uuid.UUID `json:"initiatedBy" db:"initiated_by"`
	LastInteractionAt time.Time `json:"lastInteractionAt" db:"last_interaction_at"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	// Buddy is the other party as seen from the caller.
	Buddy       *Profile `json:"buddy,omitempty"`
	UnreadCount int      `json:"unreadCount"`
}

func (c *Connection) Involves(userID uuid.UUID) bool {
	return c.UserID == userID || c.BuddyID == userID
}

// Other returns the party that is not userID.
func (c *Connection) Other(userID uuid.UUID) uuid.UUID {
	if c.UserID == userID {
		return c.BuddyID
	}
	return c.UserID
}

type Profile struct {
	ID            uuid.UUID  `json:"id"`
	FullName      *string    `json:"fullName,omitempty"`
	LongestStreak int        `json:"longestStreak"`
	QuitDate      *time.Time `json:"quitDate,omitempty"`
}

type Message struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ConnectionID uuid.UUID `json:"connectionId" db:"connection_id"`
	SenderID     uuid.UUID `json:"senderId" db:"sender_id"`
	Message      string    `json:"message" db:"message"`
	IsRead       bool      `json:"isRead" db:"is_read"`
	IsMine       bool      `json:"isMine"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// QuickMessages are canned encouragements offered in the chat composer.
var QuickMessages = []string{
	"Keep going! You've got this! 💪",
	"Proud of your progress! 🌟",
	"Stay strong today! 🔥",
	"Thinking of you! You're doing amazing! ❤️",
	"Let's crush our goals together! 🎯",
}
