package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyquest/internal/domain"
)

// Event types
const (
	TypeBadgeUnlocked      = "badge.unlocked"
	TypeLevelUp            = "level.up"
	TypeDailyGoalCompleted = "daily_goal.completed"
	TypeSessionRecorded    = "session.recorded"
)

// Event is a single milestone notification.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload is the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// OccurredAt is when the milestone was reached
	OccurredAt time.Time `json:"occurredAt"`
}

// BadgeUnlocked is the payload of TypeBadgeUnlocked.
type BadgeUnlocked struct {
	Badge domain.Badge `json:"badge"`
}

// LevelUp is the payload of TypeLevelUp.
type LevelUp struct {
	From    int `json:"from"`
	To      int `json:"to"`
	TotalXP int `json:"totalXp"`
}

// DailyGoalCompleted is the payload of TypeDailyGoalCompleted.
type DailyGoalCompleted struct {
	Goal domain.DailyGoal `json:"goal"`
}

// SessionRecorded is the payload of TypeSessionRecorded.
type SessionRecorded struct {
	Session domain.StudySession `json:"session"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event of the given type at the given time.
func NewEvent(eventType string, payload any, at time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		Payload:    payloadBytes,
		OccurredAt: at,
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event. Returns an error if the event
	// cannot be handled.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
