package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/domain"
	domainerrors "github.com/fastlogapp/fastlog-server/internal/errors"
	"github.com/fastlogapp/fastlog-server/internal/id"
	"github.com/fastlogapp/fastlog-server/internal/sse"
	"github.com/fastlogapp/fastlog-server/internal/store"
	"github.com/fastlogapp/fastlog-server/internal/validation"
)

// DefaultMoodDays is the mood window when none is given.
const DefaultMoodDays = 7

// MoodStore is the persistence MoodService needs.
type MoodStore interface {
	store.MoodStore
	store.UserStore
}

// MoodService logs mood and energy check-ins.
type MoodService struct {
	store     MoodStore
	dispatch  *Dispatcher
	validator *validation.Validator
	locator   locator
	logger    *slog.Logger
	now       func() time.Time
}

// NewMoodService creates a mood service.
func NewMoodService(store MoodStore, dispatch *Dispatcher, validator *validation.Validator, loc *time.Location, logger *slog.Logger) *MoodService {
	return &MoodService{
		store:     store,
		dispatch:  dispatch,
		validator: validator,
		locator:   locator{users: store, fallback: loc, logger: logger},
		logger:    logger,
		now:       time.Now,
	}
}

// LogMoodRequest records a check-in.
type LogMoodRequest struct {
	Mood   domain.Mood `json:"mood" validate:"required,mood"`
	Energy int         `json:"energy" validate:"required,gte=1,lte=5"`
	Notes  string      `json:"notes,omitempty" validate:"max=200"`
}

// MoodOverview is a window of check-ins with simple aggregates.
type MoodOverview struct {
	Logs          []*domain.MoodLog   `json:"logs"`
	AverageEnergy float64             `json:"average_energy"`
	Counts        map[domain.Mood]int `json:"counts"`
}

// Log records a check-in.
func (s *MoodService) Log(ctx context.Context, userID string, req LogMoodRequest) (*domain.MoodLog, error) {
	req.Mood = domain.Mood(strings.ToLower(string(req.Mood)))
	req.Notes = strings.TrimSpace(req.Notes)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	logID, err := id.Generate(id.PrefixMood)
	if err != nil {
		return nil, fmt.Errorf("generate mood ID: %w", err)
	}

	entry := &domain.MoodLog{
		ID:        logID,
		UserID:    userID,
		Mood:      req.Mood,
		Energy:    req.Energy,
		Notes:     req.Notes,
		Timestamp: s.now(),
	}
	if err := s.store.CreateMood(ctx, entry); err != nil {
		return nil, fmt.Errorf("create mood log: %w", err)
	}

	s.dispatch.Emit(userID, sse.EventMoodLogged, entry)
	s.logger.Debug("Mood logged", "user_id", userID, "mood", entry.Mood, "energy", entry.Energy)
	return entry, nil
}

// Recent returns check-ins from the rolling window of days days ending now, newest first.
func (s *MoodService) Recent(ctx context.Context, userID string, days int) (*MoodOverview, error) {
	days = clampDays(days, DefaultMoodDays)
	loc := s.locator.location(ctx, userID)
	now := s.now().In(loc)
	from := now.AddDate(0, 0, -days)
	_, to := analytics.DayBounds(now, loc)

	logs, err := s.store.ListMoods(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	return summarizeMoods(logs), nil
}

// Delete removes one of the user's mood logs.
func (s *MoodService) Delete(ctx context.Context, userID, logID string) error {
	if err := s.store.DeleteMood(ctx, userID, logID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Mood log not found")
		}
		return fmt.Errorf("delete mood log: %w", err)
	}
	return nil
}

func summarizeMoods(logs []*domain.MoodLog) *MoodOverview {
	o := &MoodOverview{Logs: logs, Counts: make(map[domain.Mood]int)}
	if o.Logs == nil {
		o.Logs = []*domain.MoodLog{}
	}
	if len(logs) == 0 {
		return o
	}
	total := 0
	for _, l := range logs {
		total += l.Energy
		o.Counts[l.Mood]++
	}
	o.AverageEnergy = float64(total) / float64(len(logs))
	return o
}
