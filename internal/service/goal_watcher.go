package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/events"
	"github.com/fastlogapp/fastlog-server/internal/notify"
	"github.com/fastlogapp/fastlog-server/internal/timer"
)

// ActiveFastLister lists every active fast, across users.
type ActiveFastLister interface {
	ListActiveFasts(ctx context.Context) ([]*domain.FastingSession, error)
}

// GoalWatcher runs one timer per active fast and announces the goal once it is crossed.
// Timers are keyed by user, so a user never has more than one.
type GoalWatcher struct {
	registry *timer.Registry
	dispatch *Dispatcher
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	interval time.Duration
	now      func() time.Time
}

// NewGoalWatcher creates a watcher. Call Shutdown to stop every timer.
func NewGoalWatcher(dispatch *Dispatcher, logger *slog.Logger) *GoalWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &GoalWatcher{
		registry: timer.NewRegistry(),
		dispatch: dispatch,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		interval: timer.DefaultInterval,
		now:      time.Now,
	}
}

// Watch arms a timer for a fast that just started.
func (w *GoalWatcher) Watch(fast *domain.FastingSession) {
	w.arm(fast, false)
}

// Resume arms a timer for a fast that was already running, e.g. after a restart.
// A goal crossed while nothing was watching is not announced late.
func (w *GoalWatcher) Resume(fast *domain.FastingSession) {
	if _, ok := w.registry.Get(fast.UserID); ok {
		return
	}
	elapsed := fast.Elapsed(w.now())
	w.arm(fast, float64(elapsed) >= fast.GoalSeconds())
}

func (w *GoalWatcher) arm(fast *domain.FastingSession, reached bool) {
	if !fast.IsActive {
		w.Unwatch(fast.UserID)
		return
	}

	userID, fastID, start := fast.UserID, fast.ID, fast.StartTime
	d := timer.Start(w.ctx, timer.Config{
		Start:     start,
		GoalHours: fast.GoalHours,
		Reached:   reached,
		Interval:  w.interval,
		Now:       w.now,
		OnGoalReached: func(t timer.Tick) {
			w.goalReached(userID, fastID, start, t)
		},
	})
	w.registry.Replace(userID, d)

	w.logger.Debug("goal watcher armed",
		"user_id", userID,
		"fast_id", fastID,
		"goal_hours", fast.GoalHours,
		"reached", reached,
	)
}

func (w *GoalWatcher) goalReached(userID, fastID string, start time.Time, t timer.Tick) {
	w.logger.Info("fasting goal reached",
		"user_id", userID,
		"fast_id", fastID,
		"goal_hours", t.GoalHours,
		"elapsed", t.Elapsed,
	)

	w.dispatch.Notify(w.ctx, notify.GoalReached(userID, fastID, t.GoalHours))
	w.dispatch.Publish(w.ctx, events.New(events.FastGoalReached, userID, events.FastPayload{
		FastID:    fastID,
		StartTime: start,
		GoalHours: t.GoalHours,
		Duration:  t.Elapsed,
	}))
}

// SetGoal updates the goal of the user's running timer. A goal already announced
// is not announced again.
func (w *GoalWatcher) SetGoal(userID string, goalHours float64) {
	if d, ok := w.registry.Get(userID); ok {
		d.SetGoal(goalHours)
	}
}

// Unwatch stops the user's timer, if any.
func (w *GoalWatcher) Unwatch(userID string) {
	w.registry.Cancel(userID)
}

// Watching reports whether the user has a running timer.
func (w *GoalWatcher) Watching(userID string) bool {
	_, ok := w.registry.Get(userID)
	return ok
}

// Count returns the number of running timers.
func (w *GoalWatcher) Count() int {
	return w.registry.Len()
}

// Rearm resumes a timer for every active fast in the store.
func (w *GoalWatcher) Rearm(ctx context.Context, fasts ActiveFastLister) (int, error) {
	active, err := fasts.ListActiveFasts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active fasts: %w", err)
	}
	for _, f := range active {
		w.Resume(f)
	}
	if len(active) > 0 {
		w.logger.Info("goal watchers re-armed", "count", len(active))
	}
	return len(active), nil
}

// Shutdown stops every timer. Safe to call more than once.
func (w *GoalWatcher) Shutdown() {
	w.cancel()
	w.registry.CancelAll()
}
