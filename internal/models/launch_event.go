package models

import "time"

// Journal event types.
const (
	EventTransition = "TRANSITION"
	EventConfig     = "CONFIG"
	EventFire       = "FIRE"
	EventRejected   = "REJECTED"
)

// LaunchEvent is a single session journal entry.
type LaunchEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // TRANSITION | CONFIG | FIRE | REJECTED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
