package notification

import (
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/progress"
)

type NotificationType string

const (
	TypeHealthBenefit NotificationType = NotificationType(progress.KindHealthBenefit)
	TypeAchievement   NotificationType = NotificationType(progress.KindAchievement)
	TypeMilestone     NotificationType = NotificationType(progress.KindMilestone)
	TypeMotivation    NotificationType = NotificationType(progress.KindMotivation)
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusFailed  NotificationStatus = "failed"
)

type Notification struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	UserID        uuid.UUID          `json:"userId" db:"user_id"`
	Type          NotificationType   `json:"type" db:"type"`
	Title         string             `json:"title" db:"title"`
	Message       string             `json:"message" db:"message"`
	EventKey      string             `json:"eventKey" db:"event_key"`
	Status        NotificationStatus `json:"status" db:"status"`
	IsRead        bool               `json:"isRead" db:"is_read"`
	SentAt        *time.Time         `json:"sentAt,omitempty" db:"sent_at"`
	FailureReason *string            `json:"failureReason,omitempty" db:"failure_reason"`
	CreatedAt     time.Time          `json:"createdAt" db:"created_at"`
}

// Event converts a stored notification back into the engine's view.
func (n *Notification) Event() progress.RecordedEvent {
	return progress.RecordedEvent{
		Kind:      progress.Kind(n.Type),
		Title:     n.Title,
		Body:      n.Message,
		Key:       n.EventKey,
		CreatedAt: n.CreatedAt,
	}
}

// PushData is the string payload attached to the push message.
func (n *Notification) PushData() map[string]string {
	return map[string]string{
		"notificationId": n.ID.String(),
		"type":           string(n.Type),
		"eventKey":       n.EventKey,
	}
}

type Achievement struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"userId" db:"user_id"`
	AchievementType string    `json:"achievementType" db:"achievement_type"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	UnlockedAt      time.Time `json:"unlockedAt" db:"unlocked_at"`
}

// AchievementTitle is the title of the companion notification written when
// an achievement unlocks.
func AchievementTitle(title string) string {
	return "🎉 Achievement Unlocked: " + title
}

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformWeb     = "web"
)

type DeviceToken struct {
	Token    string    `json:"token"`
	Platform string    `json:"platform"`
	AddedAt  time.Time `json:"addedAt"`
}

type NotificationPreferences struct {
	UserID       uuid.UUID     `json:"userId" db:"user_id"`
	PushEnabled  bool          `json:"pushEnabled" db:"push_enabled"`
	DeviceTokens []DeviceToken `json:"deviceTokens" db:"device_tokens"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}
