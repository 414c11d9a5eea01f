// Package service implements FastLog's use cases: accounts and sessions, fasting,
// hydration and mood logging, and the analytics views built on top of them.
//
// Services validate input, translate store errors into domain errors and fan
// changes out to SSE streams, the event broker and notifications.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/events"
	"github.com/fastlogapp/fastlog-server/internal/notify"
	"github.com/fastlogapp/fastlog-server/internal/sse"
	"github.com/fastlogapp/fastlog-server/internal/store"
)

// publishTimeout bounds how long a request waits on the broker.
const publishTimeout = 3 * time.Second

// Dispatcher delivers the side effects of a change. Every channel is optional and
// failures are logged, never returned to the caller.
type Dispatcher struct {
	emitter   notify.Emitter
	publisher events.Publisher
	notifier  notify.Notifier
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher. Any of emitter, publisher and notifier may be nil.
func NewDispatcher(emitter notify.Emitter, publisher events.Publisher, notifier notify.Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		emitter:   emitter,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Emit sends an SSE event to the user's open streams.
func (d *Dispatcher) Emit(userID string, eventType sse.EventType, data any) {
	if d == nil || d.emitter == nil {
		return
	}
	d.emitter.EmitToUser(userID, eventType, data)
}

// Publish sends a domain event to the broker. It outlives request cancellation.
func (d *Dispatcher) Publish(ctx context.Context, e events.Event) {
	if d == nil || d.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, e); err != nil {
		d.logger.Warn("failed to publish event",
			"type", e.Type,
			"user_id", e.UserID,
			"error", err,
		)
	}
}

// Notify delivers a user notification.
func (d *Dispatcher) Notify(ctx context.Context, n notify.Notification) {
	if d == nil || d.notifier == nil {
		return
	}
	if err := d.notifier.Notify(ctx, n); err != nil {
		d.logger.Warn("failed to deliver notification",
			"tag", n.Tag,
			"user_id", n.UserID,
			"error", err,
		)
	}
}

// locator resolves the calendar used for a user's day boundaries.
type locator struct {
	users    store.UserStore
	fallback *time.Location
	logger   *slog.Logger
}

func (l locator) location(ctx context.Context, userID string) *time.Location {
	fallback := l.fallback
	if fallback == nil {
		fallback = time.Local
	}
	user, err := l.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.logger.Warn("failed to load user timezone", "user_id", userID, "error", err)
		}
		return fallback
	}
	return user.Location(fallback)
}
