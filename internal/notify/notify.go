// Package notify delivers user-facing notifications such as "goal reached".
// Delivery is best effort: a channel that fails is logged and skipped.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
)

// Tags identify the kind of notification so clients can coalesce them.
const (
	TagGoalReached = "goal-reached"
	TagMilestone   = "milestone"
)

// Notification is one message for one user.
type Notification struct {
	UserID string         `json:"-"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Tag    string         `json:"tag"`
	Data   map[string]any `json:"data,omitempty"`
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// GoalReached builds the notification sent when a fast crosses its goal.
func GoalReached(userID, fastID string, goalHours float64) Notification {
	hours := strconv.FormatFloat(goalHours, 'f', -1, 64)
	return Notification{
		UserID: userID,
		Title:  "Fasting Goal Reached!",
		Body:   "Congratulations! You've completed your " + hours + "-hour fast!",
		Tag:    TagGoalReached,
		Data:   map[string]any{"fast_id": fastID, "goal_hours": goalHours},
	}
}

// MilestoneUnlocked builds the notification for a newly achieved milestone.
// A milestone carrying only its ID gets the catalog message.
func MilestoneUnlocked(userID string, m analytics.Milestone) Notification {
	body := m.Message
	if body == "" {
		body = analytics.MilestoneMessage(m.ID)
	}
	return Notification{
		UserID: userID,
		Title:  "Milestone Unlocked!",
		Body:   body,
		Tag:    TagMilestone,
		Data:   map[string]any{"milestone": m.ID},
	}
}

// Multi fans a notification out to every channel. It logs failures and always returns nil.
type Multi struct {
	notifiers []Notifier
	logger    *slog.Logger
}

// NewMulti creates a Multi. Nil notifiers are skipped.
func NewMulti(logger *slog.Logger, notifiers ...Notifier) *Multi {
	m := &Multi{logger: logger}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Notify implements Notifier.
func (m *Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		m.logger.Warn("notification delivery failed",
			slog.String("user_id", n.UserID),
			slog.String("tag", n.Tag),
			slog.String("error", err.Error()))
	}
	return nil
}

// Noop discards notifications.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, Notification) error { return nil }
