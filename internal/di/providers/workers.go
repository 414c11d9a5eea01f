package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/fastlogapp/fastlog-server/internal/logger"
	"github.com/fastlogapp/fastlog-server/internal/service"
)

// GoalWatcherHandle wraps the goal watcher with shutdown capability.
type GoalWatcherHandle struct {
	*service.GoalWatcher
}

// Shutdown implements do.Shutdownable.
func (h *GoalWatcherHandle) Shutdown() error {
	h.GoalWatcher.Shutdown()
	return nil
}

// ProvideGoalWatcher provides the goal watcher and re-arms timers for fasts that were
// running when the server last stopped.
func ProvideGoalWatcher(i do.Injector) (*GoalWatcherHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	dispatch := do.MustInvoke[*service.Dispatcher](i)
	log := do.MustInvoke[*logger.Logger](i)

	watcher := service.NewGoalWatcher(dispatch, log.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	count, err := watcher.Rearm(ctx, storeHandle.Store)
	if err != nil {
		// Non-fatal: fasts still complete normally, only the goal notification is lost.
		log.Warn("Failed to re-arm goal watchers", "error", err)
	}

	log.Info("Goal watcher started", "active_fasts", count)

	return &GoalWatcherHandle{GoalWatcher: watcher}, nil
}

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessions := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go runSessionCleanup(ctx, sessions, sessionCleanupInterval, log)

	log.Info("Session cleanup job started", "interval", sessionCleanupInterval)

	return &SessionCleanupJob{cancel: cancel}, nil
}

type expiredSessionDeleter interface {
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

func runSessionCleanup(ctx context.Context, sessions expiredSessionDeleter, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial cleanup on startup
	if count, err := sessions.DeleteExpiredSessions(ctx); err != nil {
		log.Warn("Initial session cleanup failed", "error", err)
	} else if count > 0 {
		log.Info("Initial session cleanup completed", "deleted", count)
	}

	for {
		select {
		case <-ticker.C:
			if count, err := sessions.DeleteExpiredSessions(ctx); err != nil {
				log.Warn("Session cleanup failed", "error", err)
			} else if count > 0 {
				log.Info("Session cleanup completed", "deleted", count)
			}
		case <-ctx.Done():
			return
		}
	}
}
