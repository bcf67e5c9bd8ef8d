package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "message.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeMessageCompleted = "message.completed"
	TypeMessageFailed    = "message.failed"
	TypeSessionArchived  = "session.archived"
)

// NewMessageCompleted signals that an assistant reply finished generating.
func NewMessageCompleted(sessionId, messageId, userId uuid.UUID, sourceCount int) Event {
	return BaseEvent{
		Type: TypeMessageCompleted,
		Data: map[string]interface{}{
			"chat_session_id": sessionId.String(),
			"message_id":      messageId.String(),
			"user_id":         userId.String(),
			"source_count":    sourceCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewMessageFailed signals that generation for an assistant reply failed.
func NewMessageFailed(sessionId, messageId, userId uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypeMessageFailed,
		Data: map[string]interface{}{
			"chat_session_id": sessionId.String(),
			"message_id":      messageId.String(),
			"user_id":         userId.String(),
			"reason":          reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionArchived signals that a chat session was archived.
func NewSessionArchived(sessionId, userId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeSessionArchived,
		Data: map[string]interface{}{
			"chat_session_id": sessionId.String(),
			"user_id":         userId.String(),
		},
		OccurredAt: time.Now(),
	}
}
