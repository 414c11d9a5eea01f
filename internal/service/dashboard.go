package service

import (
	"context"

	"github.com/fastlogapp/fastlog-server/internal/domain"
)

// DashboardRecentFasts is the number of fasts shown on the dashboard.
const DashboardRecentFasts = 20

// Dashboard is everything the home screen shows.
type Dashboard struct {
	Active      *ActiveFast              `json:"active"`
	RecentFasts []*domain.FastingSession `json:"recent_fasts"`
	Hydration   *domain.HydrationDay     `json:"hydration"`
	Moods       *MoodOverview            `json:"moods"`
	Stats       *Stats                   `json:"stats"`
}

// DashboardService composes the other services into one read.
type DashboardService struct {
	fasting   *FastingService
	hydration *HydrationService
	moods     *MoodService
	analytics *AnalyticsService
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(fasting *FastingService, hydration *HydrationService, moods *MoodService, analytics *AnalyticsService) *DashboardService {
	return &DashboardService{
		fasting:   fasting,
		hydration: hydration,
		moods:     moods,
		analytics: analytics,
	}
}

// Get builds the user's dashboard.
func (s *DashboardService) Get(ctx context.Context, userID string) (*Dashboard, error) {
	active, err := s.fasting.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.fasting.History(ctx, userID, DashboardRecentFasts)
	if err != nil {
		return nil, err
	}
	hydration, err := s.hydration.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	moods, err := s.moods.Recent(ctx, userID, DefaultMoodDays)
	if err != nil {
		return nil, err
	}
	stats, err := s.analytics.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Active:      active,
		RecentFasts: recent,
		Hydration:   hydration,
		Moods:       moods,
		Stats:       stats,
	}, nil
}
