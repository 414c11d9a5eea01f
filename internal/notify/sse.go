package notify

import (
	"context"
	"errors"

	"github.com/fastlogapp/fastlog-server/internal/sse"
)

// Emitter is the part of sse.Manager that SSE delivery needs.
type Emitter interface {
	EmitToUser(userID string, eventType sse.EventType, data any)
}

// SSE pushes notifications to the user's open event streams.
type SSE struct {
	emitter Emitter
}

// NewSSE creates an SSE notifier.
func NewSSE(emitter Emitter) *SSE {
	return &SSE{emitter: emitter}
}

// Notify implements Notifier.
func (s *SSE) Notify(_ context.Context, n Notification) error {
	if n.UserID == "" {
		return errors.New("sse notification without user")
	}
	s.emitter.EmitToUser(n.UserID, sse.EventNotification, n)
	return nil
}
