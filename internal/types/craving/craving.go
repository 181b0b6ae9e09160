package craving

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ditchAPI/internal/progress"
)

var ErrInvalidCraving = errors.New("invalid craving")

const maxLabelLen = 200

type Craving struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	UserID             uuid.UUID `json:"userId" db:"user_id"`
	Intensity          int       `json:"intensity" db:"intensity"`
	TriggerType        *string   `json:"triggerType,omitempty" db:"trigger_type"`
	TriggerDescription *string   `json:"triggerDescription,omitempty" db:"trigger_description"`
	EmotionalState     *string   `json:"emotionalState,omitempty" db:"emotional_state"`
	Overcame           bool      `json:"overcame" db:"overcame"`
	DurationMinutes    *int      `json:"durationMinutes,omitempty" db:"duration_minutes"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
}

func (c *Craving) Event() progress.CravingEvent {
	ev := progress.CravingEvent{
		OccurredAt:      c.CreatedAt,
		Intensity:       c.Intensity,
		Overcome:        c.Overcame,
		DurationMinutes: c.DurationMinutes,
	}
	if c.TriggerType != nil {
		ev.Trigger = *c.TriggerType
	}
	if c.EmotionalState != nil {
		ev.EmotionalState = *c.EmotionalState
	}
	return ev
}

func Events(cravings []*Craving) []progress.CravingEvent {
	out := make([]progress.CravingEvent, len(cravings))
	for i, c := range cravings {
		out[i] = c.Event()
	}
	return out
}

// OvercomeDuration is whole minutes between the craving and now.
func OvercomeDuration(createdAt, now time.Time) int {
	d := now.Sub(createdAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

type LogCravingRequest struct {
	Intensity          int     `json:"intensity"`
	TriggerType        *string `json:"triggerType,omitempty"`
	TriggerDescription *string `json:"triggerDescription,omitempty"`
	EmotionalState     *string `json:"emotionalState,omitempty"`
}

func (r *LogCravingRequest) Validate() error {
	if r.Intensity < 1 || r.Intensity > 10 {
		return fmt.Errorf("%w: intensity must be between 1 and 10", ErrInvalidCraving)
	}
	for name, v := range map[string]*string{
		"triggerType":        r.TriggerType,
		"triggerDescription": r.TriggerDescription,
		"emotionalState":     r.EmotionalState,
	} {
		if v != nil && len(*v) > maxLabelLen {
			return fmt.Errorf("%w: %s is too long", ErrInvalidCraving, name)
		}
	}
	return nil
}

// Normalize trims labels and drops the empty ones.
func (r *LogCravingRequest) Normalize() {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		if v == "" {
			return nil
		}
		return &v
	}
	r.TriggerType = trim(r.TriggerType)
	r.TriggerDescription = trim(r.TriggerDescription)
	r.EmotionalState = trim(r.EmotionalState)
}
