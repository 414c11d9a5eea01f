package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/events"
	"github.com/fastlogapp/fastlog-server/internal/notify"
)

func newTestWatcher(t *testing.T, now func() time.Time) (*GoalWatcher, *recordingNotifier, *recordingPublisher) {
	t.Helper()
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	w := NewGoalWatcher(NewDispatcher(nil, publisher, notifier, testLogger), testLogger)
	w.interval = 5 * time.Millisecond
	w.now = now
	t.Cleanup(w.Shutdown)
	return w, notifier, publisher
}

func TestGoalWatcher_FiresOnce(t *testing.T) {
	start := time.Now()
	w, notifier, publisher := newTestWatcher(t, func() time.Time { return start.Add(2 * time.Hour) })

	w.Watch(domain.NewFastingSession("fst-1", "usr-1", start, 1))

	require.Eventually(t, func() bool { return len(notifier.Notes()) == 1 }, time.Second, 5*time.Millisecond)

	// Let several more ticks pass.
	time.Sleep(50 * time.Millisecond)
	notes := notifier.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.TagGoalReached, notes[0].Tag)
	assert.Equal(t, "Congratulations! You've completed your 1-hour fast!", notes[0].Body)
	assert.Equal(t, []events.Type{events.FastGoalReached}, publisher.Types())
}

func TestGoalWatcher_NotBeforeGoal(t *testing.T) {
	start := time.Now()
	w, notifier, _ := newTestWatcher(t, func() time.Time { return start.Add(30 * time.Minute) })

	w.Watch(domain.NewFastingSession("fst-1", "usr-1", start, 1))
	time.Sleep(30 * time.Millisecond)

	assert.Empty(t, notifier.Notes())
	assert.True(t, w.Watching("usr-1"))
}

func TestGoalWatcher_LoweredGoalFires(t *testing.T) {
	start := time.Now()
	w, notifier, _ := newTestWatcher(t, func() time.Time { return start.Add(3 * time.Hour) })

	w.Watch(domain.NewFastingSession("fst-1", "usr-1", start, 16))
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, notifier.Notes())

	w.SetGoal("usr-1", 2)
	require.Eventually(t, func() bool { return len(notifier.Notes()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestGoalWatcher_ResumeDoesNotAnnounceLate(t *testing.T) {
	start := time.Now().Add(-20 * time.Hour)
	w, notifier, _ := newTestWatcher(t, time.Now)

	w.Resume(domain.NewFastingSession("fst-1", "usr-1", start, 16))
	time.Sleep(30 * time.Millisecond)

	assert.Empty(t, notifier.Notes())
	assert.True(t, w.Watching("usr-1"))
}

func TestGoalWatcher_UnwatchAndShutdown(t *testing.T) {
	w, _, _ := newTestWatcher(t, time.Now)

	w.Watch(domain.NewFastingSession("fst-1", "usr-1", time.Now(), 16))
	w.Watch(domain.NewFastingSession("fst-2", "usr-2", time.Now(), 16))
	assert.Equal(t, 2, w.Count())

	// Watching a newer fast replaces the old timer.
	w.Watch(domain.NewFastingSession("fst-3", "usr-1", time.Now(), 18))
	assert.Equal(t, 2, w.Count())

	w.Unwatch("usr-1")
	w.Unwatch("usr-1")
	assert.False(t, w.Watching("usr-1"))

	w.Shutdown()
	w.Shutdown()
	assert.Zero(t, w.Count())
}

func TestGoalWatcher_InactiveFastUnwatches(t *testing.T) {
	w, _, _ := newTestWatcher(t, time.Now)

	f := domain.NewFastingSession("fst-1", "usr-1", time.Now(), 16)
	w.Watch(f)
	f.Complete(time.Now(), "")
	w.Watch(f)

	assert.False(t, w.Watching("usr-1"))
}

func TestGoalWatcher_Rearm(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	ada := env.register(t, "ada@example.com").User.ID
	bob := env.register(t, "bob@example.com").User.ID

	_, err := env.fasting.Start(ctx, ada, StartFastRequest{})
	require.NoError(t, err)
	_, err = env.fasting.Start(ctx, bob, StartFastRequest{})
	require.NoError(t, err)

	// Simulate a restart with a fresh watcher.
	w, _, _ := newTestWatcher(t, time.Now)
	n, err := w.Rearm(ctx, env.store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, w.Watching(ada))
	assert.True(t, w.Watching(bob))
}
