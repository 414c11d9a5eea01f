// Package sse streams per-user FastLog events over Server-Sent Events.
package sse

import "time"

// EventType names an SSE event.
type EventType string

// Event types delivered to clients.
const (
	EventHeartbeat EventType = "heartbeat"

	EventFastStarted     EventType = "fasting.started"
	EventFastCompleted   EventType = "fasting.completed"
	EventFastGoalUpdated EventType = "fasting.goal_updated"
	EventFastDeleted     EventType = "fasting.deleted"

	EventHydrationLogged EventType = "hydration.logged"
	EventMoodLogged      EventType = "mood.logged"

	// EventNotification carries a notify.Notification for the client to display.
	EventNotification EventType = "notification"
)

// Event is one SSE message. UserID scopes delivery and is never serialized.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	UserID    string    `json:"-"`
}

// HeartbeatEventData is the payload of heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewEvent creates an event for one user. An empty userID broadcasts to everyone.
func NewEvent(eventType EventType, userID string, data any) Event {
	return Event{
		Timestamp: time.Now(),
		Type:      eventType,
		UserID:    userID,
		Data:      data,
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Timestamp: now,
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
	}
}
