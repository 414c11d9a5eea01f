package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/domain"
	domainerrors "github.com/fastlogapp/fastlog-server/internal/errors"
	"github.com/fastlogapp/fastlog-server/internal/events"
	"github.com/fastlogapp/fastlog-server/internal/id"
	"github.com/fastlogapp/fastlog-server/internal/notify"
	"github.com/fastlogapp/fastlog-server/internal/sse"
	"github.com/fastlogapp/fastlog-server/internal/store"
	"github.com/fastlogapp/fastlog-server/internal/validation"
)

const (
	// DefaultHistoryLimit is the number of fasts returned when no limit is given.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps a single history page.
	MaxHistoryLimit = 500
)

// Messages shown to users when the single-active-fast rule is broken.
const (
	msgActiveExists = "An active session already exists"
	msgNoActive     = "No active session found"
)

// FastingStore is the persistence FastingService needs.
type FastingStore interface {
	store.FastStore
	store.UserStore
}

// FastingService starts, stops and edits fasting sessions.
// A user has at most one active fast; the store enforces the same rule.
type FastingService struct {
	store       FastingStore
	watcher     *GoalWatcher
	dispatch    *Dispatcher
	validator   *validation.Validator
	locator     locator
	defaultGoal float64
	logger      *slog.Logger
	now         func() time.Time
}

// NewFastingService creates a fasting service. A non-positive defaultGoal falls back to 16 hours.
func NewFastingService(
	store FastingStore,
	watcher *GoalWatcher,
	dispatch *Dispatcher,
	validator *validation.Validator,
	defaultGoal float64,
	loc *time.Location,
	logger *slog.Logger,
) *FastingService {
	if defaultGoal <= 0 {
		defaultGoal = domain.DefaultGoalHours
	}
	return &FastingService{
		store:       store,
		watcher:     watcher,
		dispatch:    dispatch,
		validator:   validator,
		locator:     locator{users: store, fallback: loc, logger: logger},
		defaultGoal: defaultGoal,
		logger:      logger,
		now:         time.Now,
	}
}

// StartFastRequest starts a fast now. GoalHours 0 uses the server default.
type StartFastRequest struct {
	GoalHours float64 `json:"goal_hours,omitempty" validate:"gte=0,lte=168"`
	Notes     string  `json:"notes,omitempty" validate:"max=500"`
}

// StopFastRequest stops the active fast now.
type StopFastRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=500"`
}

// UpdateGoalRequest changes the goal of the active fast.
type UpdateGoalRequest struct {
	GoalHours float64 `json:"goal_hours" validate:"required,gt=0,lte=168"`
}

// ActiveFast is the live view of a running fast.
type ActiveFast struct {
	Session          *domain.FastingSession  `json:"session"`
	Elapsed          int64                   `json:"elapsed"` // seconds
	ElapsedFormatted string                  `json:"elapsed_formatted"`
	Remaining        int64                   `json:"remaining"` // seconds until the goal, 0 once reached
	GoalProgress     float64                 `json:"goal_progress"`
	GoalReached      bool                    `json:"goal_reached"`
	Stage            analytics.StageProgress `json:"stage"`
}

// StopResult is a completed fast and any milestones it unlocked.
type StopResult struct {
	Session       *domain.FastingSession `json:"session"`
	NewMilestones []analytics.Milestone  `json:"new_milestones"`
}

// NewActiveFast computes the live view of fast at now.
func NewActiveFast(fast *domain.FastingSession, now time.Time) *ActiveFast {
	elapsed := fast.Elapsed(now)
	remaining := max(int64(fast.GoalSeconds())-elapsed, 0)
	return &ActiveFast{
		Session:          fast,
		Elapsed:          elapsed,
		ElapsedFormatted: analytics.FormatClock(elapsed),
		Remaining:        remaining,
		GoalProgress:     analytics.GoalProgress(elapsed, fast.GoalHours),
		GoalReached:      float64(elapsed) >= fast.GoalSeconds(),
		Stage:            analytics.ClassifyStage(elapsed),
	}
}

// Start begins a fast for the user.
func (s *FastingService) Start(ctx context.Context, userID string, req StartFastRequest) (*domain.FastingSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetActiveFast(ctx, userID); err == nil {
		return nil, domainerrors.Conflict(msgActiveExists)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check active fast: %w", err)
	}

	goal := req.GoalHours
	if goal == 0 {
		goal = s.defaultGoal
	}

	fastID, err := id.Generate(id.PrefixFast)
	if err != nil {
		return nil, fmt.Errorf("generate fast ID: %w", err)
	}

	fast := domain.NewFastingSession(fastID, userID, s.now(), goal)
	fast.Notes = req.Notes

	if err := s.store.CreateFast(ctx, fast); err != nil {
		// Another device started a fast between the check and the insert.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict(msgActiveExists)
		}
		return nil, fmt.Errorf("create fast: %w", err)
	}

	if s.watcher != nil {
		s.watcher.Watch(fast)
	}
	s.dispatch.Emit(userID, sse.EventFastStarted, fast)
	s.dispatch.Publish(ctx, events.New(events.FastStarted, userID, fastPayload(fast)))

	s.logger.Info("Fast started", "user_id", userID, "fast_id", fast.ID, "goal_hours", goal)
	return fast, nil
}

// Stop completes the user's active fast and reports newly unlocked milestones.
func (s *FastingService) Stop(ctx context.Context, userID string, req StopFastRequest) (*StopResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	active, err := s.store.GetActiveFast(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Conflict(msgNoActive)
		}
		return nil, fmt.Errorf("get active fast: %w", err)
	}

	history, err := s.store.ListFasts(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list fasts: %w", err)
	}
	loc := s.locator.location(ctx, userID)
	before := milestonesFor(history, loc)

	active.Complete(s.now(), req.Notes)
	if err := s.store.CompleteFast(ctx, active); err != nil {
		// Stopped from another device in the meantime.
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Conflict(msgNoActive)
		}
		return nil, fmt.Errorf("complete fast: %w", err)
	}

	if s.watcher != nil {
		s.watcher.Unwatch(userID)
	}

	// The stored copy of this fast in history is still active, so Summarize skips it.
	after := milestonesFor(append(history, active), loc)
	unlocked := analytics.NewlyAchieved(before, after)
	if unlocked == nil {
		unlocked = []analytics.Milestone{}
	}

	s.dispatch.Emit(userID, sse.EventFastCompleted, active)
	s.dispatch.Publish(ctx, events.New(events.FastCompleted, userID, fastPayload(active)))
	for _, m := range unlocked {
		s.dispatch.Notify(ctx, notify.MilestoneUnlocked(userID, m))
		s.dispatch.Publish(ctx, events.New(events.MilestoneReached, userID, events.MilestonePayload{
			Milestone: m.ID,
			Message:   m.Message,
		}))
	}

	s.logger.Info("Fast completed",
		"user_id", userID,
		"fast_id", active.ID,
		"duration", active.Duration,
		"goal_reached", active.GoalReached,
		"milestones", len(unlocked),
	)

	return &StopResult{Session: active, NewMilestones: unlocked}, nil
}

// UpdateGoal changes the goal of the user's active fast.
func (s *FastingService) UpdateGoal(ctx context.Context, userID string, req UpdateGoalRequest) (*domain.FastingSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	fast, err := s.store.UpdateFastGoal(ctx, userID, req.GoalHours)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Conflict(msgNoActive)
		}
		return nil, fmt.Errorf("update goal: %w", err)
	}

	if s.watcher != nil {
		s.watcher.SetGoal(userID, fast.GoalHours)
	}
	s.dispatch.Emit(userID, sse.EventFastGoalUpdated, fast)

	s.logger.Info("Fast goal updated", "user_id", userID, "fast_id", fast.ID, "goal_hours", fast.GoalHours)
	return fast, nil
}

// GetActive returns the live view of the user's active fast, or nil when none is running.
func (s *FastingService) GetActive(ctx context.Context, userID string) (*ActiveFast, error) {
	fast, err := s.store.GetActiveFast(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active fast: %w", err)
	}
	return NewActiveFast(fast, s.now()), nil
}

// Get returns one of the user's fasts.
func (s *FastingService) Get(ctx context.Context, userID, fastID string) (*domain.FastingSession, error) {
	fast, err := s.store.GetFast(ctx, userID, fastID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Fasting session not found")
		}
		return nil, fmt.Errorf("get fast: %w", err)
	}
	return fast, nil
}

// History returns the user's completed fasts, newest first. The running fast is left out;
// GetActive reports it. limit <= 0 uses DefaultHistoryLimit.
func (s *FastingService) History(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	fasts, err := s.store.ListCompletedFasts(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list fasts: %w", err)
	}
	if fasts == nil {
		fasts = []*domain.FastingSession{}
	}
	return fasts, nil
}

// Delete removes one of the user's fasts. Deleting the active fast stops its timer.
func (s *FastingService) Delete(ctx context.Context, userID, fastID string) (*domain.FastingSession, error) {
	fast, err := s.store.DeleteFast(ctx, userID, fastID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Fasting session not found")
		}
		return nil, fmt.Errorf("delete fast: %w", err)
	}

	if fast.IsActive && s.watcher != nil {
		s.watcher.Unwatch(userID)
	}
	s.dispatch.Emit(userID, sse.EventFastDeleted, map[string]string{"id": fast.ID})

	s.logger.Info("Fast deleted", "user_id", userID, "fast_id", fast.ID, "was_active", fast.IsActive)
	return fast, nil
}

// Stages returns the stage catalog.
func (s *FastingService) Stages() []analytics.Stage {
	return analytics.Stages()
}

func milestonesFor(history []*domain.FastingSession, loc *time.Location) []analytics.Milestone {
	return analytics.Milestones(analytics.Summarize(history), analytics.CalculateStreaks(history, loc))
}

func fastPayload(f *domain.FastingSession) events.FastPayload {
	return events.FastPayload{
		FastID:      f.ID,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		GoalHours:   f.GoalHours,
		Duration:    f.Duration,
		GoalReached: f.GoalReached,
	}
}
