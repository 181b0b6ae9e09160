package community

import (
	"time"

	"github.com/google/uuid"
)

type PostType string

const (
	PostMilestone     PostType = "milestone"
	PostStory         PostType = "story"
	PostEncouragement PostType = "encouragement"
	PostTip           PostType = "tip"
)

type ReactionType string

const (
	ReactionHeart ReactionType = "heart"
	ReactionFire  ReactionType = "fire"
	ReactionZap   ReactionType = "zap"
	ReactionStar  ReactionType = "star"
)

// MilestoneData is the progress snapshot attached to milestone posts when
// they are written.
type MilestoneData struct {
	DaysClean    int `json:"daysClean"`
	PuffsAvoided int `json:"puffsAvoided"`
}

func NewMilestoneData(daysClean, dailyPuffs int) *MilestoneData {
	return &MilestoneData{DaysClean: daysClean, PuffsAvoided: daysClean * dailyPuffs}
}

type Post struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	UserID        uuid.UUID      `json:"-" db:"user_id"`
	AuthorName    *string        `json:"authorName,omitempty"`
	Content       string         `json:"content" db:"content"`
	PostType      PostType       `json:"postType" db:"post_type"`
	MilestoneData *MilestoneData `json:"milestoneData,omitempty" db:"milestone_data"`
	IsAnonymous   bool           `json:"isAnonymous" db:"is_anonymous"`
	ReactionCount int            `json:"reactionCount" db:"reaction_count"`
	MyReaction    *ReactionType  `json:"myReaction,omitempty"`
	IsMine        bool           `json:"isMine"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
}

// ForViewer fills the viewer-relative fields and hides the author of
// anonymous posts.
func (p *Post) ForViewer(viewer uuid.UUID) {
	p.IsMine = p.UserID == viewer
	if p.IsAnonymous {
		p.AuthorName = nil
	}
}

type ReactionResult struct {
	PostID        uuid.UUID     `json:"postId"`
	Reacted       bool          `json:"reacted"`
	ReactionType  *ReactionType `json:"reactionType,omitempty"`
	ReactionCount int           `json:"reactionCount"`
}
