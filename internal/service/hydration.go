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
	"github.com/fastlogapp/fastlog-server/internal/id"
	"github.com/fastlogapp/fastlog-server/internal/sse"
	"github.com/fastlogapp/fastlog-server/internal/store"
	"github.com/fastlogapp/fastlog-server/internal/validation"
)

const (
	// DefaultHydrationDays is the history window when none is given.
	DefaultHydrationDays = 7
	// MaxHistoryDays caps history windows for hydration and moods.
	MaxHistoryDays = 90
)

// HydrationStore is the persistence HydrationService needs.
type HydrationStore interface {
	store.HydrationStore
	store.UserStore
}

// HydrationService logs water intake and totals it per day.
type HydrationService struct {
	store     HydrationStore
	dispatch  *Dispatcher
	validator *validation.Validator
	locator   locator
	logger    *slog.Logger
	now       func() time.Time
}

// NewHydrationService creates a hydration service.
func NewHydrationService(store HydrationStore, dispatch *Dispatcher, validator *validation.Validator, loc *time.Location, logger *slog.Logger) *HydrationService {
	return &HydrationService{
		store:     store,
		dispatch:  dispatch,
		validator: validator,
		locator:   locator{users: store, fallback: loc, logger: logger},
		logger:    logger,
		now:       time.Now,
	}
}

// LogHydrationRequest records an intake in millilitres. Goal 0 keeps the current goal.
type LogHydrationRequest struct {
	Amount int `json:"amount" validate:"gt=0,lte=5000"`
	Goal   int `json:"goal,omitempty" validate:"gte=0,lte=20000"`
}

// HydrationHistoryDay is one day of intake totals.
type HydrationHistoryDay struct {
	Date  string `json:"date"` // "2006-01-02"
	Total int    `json:"total"`
	Goal  int    `json:"goal"`
	Logs  int    `json:"logs"`
}

// Log records an intake.
func (s *HydrationService) Log(ctx context.Context, userID string, req LogHydrationRequest) (*domain.HydrationLog, error) {
	if req.Amount == 0 {
		return nil, domainerrors.Validation("Amount is required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	goal := req.Goal
	if goal == 0 {
		current, err := s.currentGoal(ctx, userID)
		if err != nil {
			return nil, err
		}
		goal = current
	}

	logID, err := id.Generate(id.PrefixHydration)
	if err != nil {
		return nil, fmt.Errorf("generate hydration ID: %w", err)
	}

	entry := &domain.HydrationLog{
		ID:        logID,
		UserID:    userID,
		Amount:    req.Amount,
		Goal:      goal,
		Timestamp: s.now(),
	}
	if err := s.store.CreateHydration(ctx, entry); err != nil {
		return nil, fmt.Errorf("create hydration log: %w", err)
	}

	s.dispatch.Emit(userID, sse.EventHydrationLogged, entry)
	s.logger.Debug("Hydration logged", "user_id", userID, "amount", entry.Amount)
	return entry, nil
}

// Today returns today's logs and total. The goal is the one set by the user's most recent log.
func (s *HydrationService) Today(ctx context.Context, userID string) (*domain.HydrationDay, error) {
	loc := s.locator.location(ctx, userID)
	from, to := analytics.DayBounds(s.now(), loc)

	logs, err := s.store.ListHydration(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list hydration: %w", err)
	}

	latest, err := s.latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewHydrationDay(logs, latest), nil
}

// History returns daily totals for the last days calendar days, oldest first.
func (s *HydrationService) History(ctx context.Context, userID string, days int) ([]HydrationHistoryDay, error) {
	days = clampDays(days, DefaultHydrationDays)
	loc := s.locator.location(ctx, userID)
	now := s.now()
	from := analytics.WindowStart(now, days, loc)
	_, to := analytics.DayBounds(now, loc)

	logs, err := s.store.ListHydration(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list hydration: %w", err)
	}
	goal, err := s.currentGoal(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]HydrationHistoryDay, days)
	index := make(map[string]int, days)
	for i := range days {
		key := from.AddDate(0, 0, i).Format(time.DateOnly)
		out[i] = HydrationHistoryDay{Date: key, Goal: goal}
		index[key] = i
	}

	// Logs are newest first, so the first log seen for a day carries that day's goal.
	seen := make(map[string]bool, days)
	for _, l := range logs {
		key := l.Timestamp.In(loc).Format(time.DateOnly)
		i, ok := index[key]
		if !ok {
			continue
		}
		out[i].Total += l.Amount
		out[i].Logs++
		if !seen[key] && l.Goal > 0 {
			out[i].Goal = l.Goal
			seen[key] = true
		}
	}
	return out, nil
}

// Delete removes one of the user's hydration logs.
func (s *HydrationService) Delete(ctx context.Context, userID, logID string) error {
	if err := s.store.DeleteHydration(ctx, userID, logID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Hydration log not found")
		}
		return fmt.Errorf("delete hydration log: %w", err)
	}
	return nil
}

func (s *HydrationService) latest(ctx context.Context, userID string) (*domain.HydrationLog, error) {
	latest, err := s.store.LatestHydration(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest hydration: %w", err)
	}
	return latest, nil
}

func (s *HydrationService) currentGoal(ctx context.Context, userID string) (int, error) {
	latest, err := s.latest(ctx, userID)
	if err != nil {
		return 0, err
	}
	if latest == nil || latest.Goal <= 0 {
		return domain.DefaultHydrationGoal, nil
	}
	return latest.Goal, nil
}

func clampDays(days, def int) int {
	if days <= 0 {
		return def
	}
	return min(days, MaxHistoryDays)
}
