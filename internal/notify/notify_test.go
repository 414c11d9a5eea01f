package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/sse"
)

type recorder struct {
	got []Notification
	err error
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestGoalReached(t *testing.T) {
	n := GoalReached("usr-1", "fst-1", 16)
	assert.Equal(t, "Fasting Goal Reached!", n.Title)
	assert.Equal(t, "Congratulations! You've completed your 16-hour fast!", n.Body)
	assert.Equal(t, TagGoalReached, n.Tag)
	assert.Equal(t, "fst-1", n.Data["fast_id"])

	assert.Equal(t, "Congratulations! You've completed your 18.5-hour fast!", GoalReached("usr-1", "fst-2", 18.5).Body)
}

func TestMilestoneUnlocked(t *testing.T) {
	n := MilestoneUnlocked("usr-1", analytics.Milestone{ID: "10_sessions", Message: "10 fasting sessions completed!"})
	assert.Equal(t, "Milestone Unlocked!", n.Title)
	assert.Equal(t, "10 fasting sessions completed!", n.Body)
	assert.Equal(t, TagMilestone, n.Tag)
	assert.Equal(t, "10_sessions", n.Data["milestone"])
}

func TestMilestoneUnlocked_FillsCatalogMessage(t *testing.T) {
	n := MilestoneUnlocked("usr-1", analytics.Milestone{ID: "30_day_streak", Achieved: true})
	assert.Equal(t, "30-day streak! You're unstoppable!", n.Body)

	n = MilestoneUnlocked("usr-1", analytics.Milestone{ID: "unknown"})
	assert.Equal(t, "Milestone achieved!", n.Body)
}

func TestMulti_ContinuesPastFailures(t *testing.T) {
	failing := &recorder{err: errors.New("no display")}
	ok := &recorder{}
	m := NewMulti(slog.New(slog.DiscardHandler), failing, nil, ok)

	err := m.Notify(context.Background(), GoalReached("usr-1", "fst-1", 16))

	require.NoError(t, err)
	assert.Len(t, failing.got, 1)
	assert.Len(t, ok.got, 1)
}

type fakeEmitter struct {
	userID    string
	eventType sse.EventType
	data      any
}

func (f *fakeEmitter) EmitToUser(userID string, eventType sse.EventType, data any) {
	f.userID, f.eventType, f.data = userID, eventType, data
}

func TestSSE(t *testing.T) {
	em := &fakeEmitter{}
	s := NewSSE(em)

	n := GoalReached("usr-1", "fst-1", 16)
	require.NoError(t, s.Notify(context.Background(), n))
	assert.Equal(t, "usr-1", em.userID)
	assert.Equal(t, sse.EventNotification, em.eventType)
	assert.Equal(t, n, em.data)

	assert.Error(t, s.Notify(context.Background(), Notification{Title: "x"}))
}

func TestDesktop(t *testing.T) {
	var title, body string
	d := &Desktop{alert: func(t, m string, _ any) error {
		title, body = t, m
		return nil
	}}
	require.NoError(t, d.Notify(context.Background(), GoalReached("usr-1", "fst-1", 20)))
	assert.Equal(t, "Fasting Goal Reached!", title)
	assert.Contains(t, body, "20-hour")

	d.alert = func(string, string, any) error { return errors.New("dbus down") }
	assert.ErrorContains(t, d.Notify(context.Background(), Notification{}), "dbus down")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Notify(context.Background(), Notification{}))
}
