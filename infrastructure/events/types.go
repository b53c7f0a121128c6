// Package events defines the envelope used when formfill actions are
// published to a Redis stream for out-of-process consumers.
package events

import (
	"time"

	"github.com/google/uuid"
)

// StreamName is the Redis stream receiving action envelopes.
const StreamName = "formfill:actions"

// Envelope wraps one action notification.
type Envelope struct {
	EventID   uuid.UUID `json:"event_id"`
	Type      string    `json:"type"`
	WorkID    string    `json:"work_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEnvelope stamps a fresh id and UTC timestamp.
func NewEnvelope(eventType, workID string, payload any) Envelope {
	return Envelope{
		EventID:   uuid.New(),
		Type:      eventType,
		WorkID:    workID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
