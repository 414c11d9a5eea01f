package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/notify"
	"github.com/fastlogapp/fastlog-server/internal/timer"
)

type recordingNotifier struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return nil
}

func (r *recordingNotifier) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.got...)
}

func testWatchModel(start time.Time, goal float64) watchModel {
	user := &domain.User{Email: "watcher@example.com", DisplayName: "Watcher"}
	fast := domain.NewFastingSession("fst-1", "usr-1", start, goal)
	return newWatchModel(user, fast, time.UTC)
}

func TestWatchModel_Tick(t *testing.T) {
	m := testWatchModel(time.Date(2025, 3, 4, 20, 0, 0, 0, time.UTC), 16)

	next, cmd := m.Update(tickMsg(timer.Tick{Elapsed: 3600, GoalHours: 16}))
	assert.Nil(t, cmd)

	view := next.View()
	assert.Contains(t, view, "Watcher is fasting")
	assert.Contains(t, view, "01:00:00")
	assert.Contains(t, view, "Blood Sugar Rising")
	assert.Contains(t, view, "Blood Sugar Falling in 3h 0m")
	assert.Contains(t, view, "15h 0m")
	assert.NotContains(t, view, "Goal reached!")
}

func TestWatchModel_GoalReached(t *testing.T) {
	m := testWatchModel(time.Date(2025, 3, 4, 20, 0, 0, 0, time.UTC), 16)

	next, _ := m.Update(goalReachedMsg(timer.Tick{Elapsed: 16 * 3600, GoalHours: 16, GoalReached: true}))
	wm := next.(watchModel)
	assert.True(t, wm.reached)
	assert.Contains(t, wm.View(), "Goal reached!")
	assert.Contains(t, wm.View(), "100%")
}

func TestWatchModel_Quit(t *testing.T) {
	m := testWatchModel(time.Now(), 16)

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		next, cmd := m.Update(key)
		require.NotNil(t, cmd, key.String())
		assert.Empty(t, next.View())
	}

	// Other keys are ignored.
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
}

func runTestProgram(t *testing.T, fast *domain.FastingSession, notifier notify.Notifier, now time.Time) string {
	t.Helper()
	var out bytes.Buffer
	user := &domain.User{Email: "watcher@example.com"}
	program := tea.NewProgram(newWatchModel(user, fast, time.UTC),
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(&out),
		tea.WithoutSignalHandler(),
	)
	require.NoError(t, runWatch(context.Background(), program, fast, notifier, now))
	return out.String()
}

func TestRunWatch_AnnouncesGoal(t *testing.T) {
	start := time.Now().Add(-2 * time.Hour)
	fast := domain.NewFastingSession("fst-1", "usr-1", start, 1)
	notifier := &recordingNotifier{}

	// Watching began before the goal, so crossing it is announced.
	runTestProgram(t, fast, notifier, start)

	got := notifier.all()
	require.Len(t, got, 1)
	assert.Equal(t, notify.TagGoalReached, got[0].Tag)
	assert.Equal(t, "usr-1", got[0].UserID)
	assert.Equal(t, "fst-1", got[0].Data["fast_id"])
}

func TestRunWatch_DoesNotAnnounceLate(t *testing.T) {
	start := time.Now().Add(-2 * time.Hour)
	fast := domain.NewFastingSession("fst-1", "usr-1", start, 1)
	notifier := &recordingNotifier{}

	runTestProgram(t, fast, notifier, time.Now())

	assert.Empty(t, notifier.all())
}
