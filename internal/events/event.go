// Package events publishes FastLog domain events to a message broker.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type is the event name, also used as the AMQP routing key.
type Type string

// Domain events.
const (
	FastStarted      Type = "fasting.started"
	FastCompleted    Type = "fasting.completed"
	FastGoalReached  Type = "fasting.goal_reached"
	MilestoneReached Type = "milestone.achieved"
)

// Event is the JSON envelope written to the broker.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New creates an event with a random UUID.
func New(t Type, userID string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// FastPayload describes a fast in fasting.* events.
type FastPayload struct {
	FastID      string     `json:"fast_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	GoalHours   float64    `json:"goal_hours"`
	Duration    int64      `json:"duration"`
	GoalReached bool       `json:"goal_reached"`
}

// MilestonePayload describes a milestone.achieved event.
type MilestonePayload struct {
	Milestone string `json:"milestone"`
	Message   string `json:"message"`
}
