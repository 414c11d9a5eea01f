package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/domain"
)

// AnalyticsService derives statistics from a user's whole fasting history.
// Nothing is cached; every call recomputes from the store.
type AnalyticsService struct {
	store   FastingStore
	locator locator
	now     func() time.Time
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(store FastingStore, loc *time.Location, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:   store,
		locator: locator{users: store, fallback: loc, logger: logger},
		now:     time.Now,
	}
}

// Stats pairs the summary with the streaks.
type Stats struct {
	analytics.Summary
	analytics.Streaks
}

// Report is every derived view of a history, computed at one instant.
type Report struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Timezone    string                `json:"timezone"`
	Stats       Stats                 `json:"stats"`
	Trends      analytics.Trends      `json:"trends"`
	Milestones  []analytics.Milestone `json:"milestones"`
}

func (s *AnalyticsService) history(ctx context.Context, userID string) ([]*domain.FastingSession, *time.Location, error) {
	fasts, err := s.store.ListFasts(ctx, userID, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("list fasts: %w", err)
	}
	return fasts, s.locator.location(ctx, userID), nil
}

// Stats returns the summary and streaks.
func (s *AnalyticsService) Stats(ctx context.Context, userID string) (*Stats, error) {
	fasts, loc, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Summary: analytics.Summarize(fasts),
		Streaks: analytics.CalculateStreaks(fasts, loc),
	}, nil
}

// Trends returns the chart series.
func (s *AnalyticsService) Trends(ctx context.Context, userID string) (*analytics.Trends, error) {
	fasts, loc, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	t := analytics.BuildTrends(fasts, s.now(), loc)
	return &t, nil
}

// Milestones returns every milestone and whether it is achieved.
func (s *AnalyticsService) Milestones(ctx context.Context, userID string) ([]analytics.Milestone, error) {
	fasts, loc, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	return milestonesFor(fasts, loc), nil
}

// Report computes stats, trends and milestones in one pass over the history.
func (s *AnalyticsService) Report(ctx context.Context, userID string) (*Report, error) {
	fasts, loc, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := analytics.Summarize(fasts)
	streaks := analytics.CalculateStreaks(fasts, loc)
	return &Report{
		GeneratedAt: s.now(),
		Timezone:    loc.String(),
		Stats:       Stats{Summary: summary, Streaks: streaks},
		Trends:      analytics.BuildTrends(fasts, s.now(), loc),
		Milestones:  analytics.Milestones(summary, streaks),
	}, nil
}
