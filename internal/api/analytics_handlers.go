package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/charts"
	"github.com/fastlogapp/fastlog-server/internal/service"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Dashboard",
		Description: "Returns the active fast, recent fasts, today's hydration, this week's moods, summary and streaks",
		Tags:        []string{"Dashboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetDashboard)
}

func (s *Server) registerAnalyticsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/stats",
		Summary:     "Summary and streaks",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTrends",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/trends",
		Summary:     "Trends",
		Description: "Returns the weekly hours, success rate, best start times and heatmap series",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTrends)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMilestones",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/milestones",
		Summary:     "Milestones",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMilestones)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReport",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/report",
		Summary:     "Full report",
		Description: "Returns stats, trends and milestones computed at one instant",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCharts",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/charts",
		Summary:     "Chart page",
		Description: "Returns a standalone HTML page with the trend charts",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCharts)
}

// === DTOs ===

// DashboardResponse is everything the home screen shows.
type DashboardResponse struct {
	Active      ActiveFastResponse     `json:"active" doc:"The running fast, if any"`
	RecentFasts []FastResponse         `json:"recent_fasts" doc:"Most recent completed fasts"`
	Hydration   HydrationTodayResponse `json:"hydration" doc:"Today's hydration"`
	Moods       MoodOverviewResponse   `json:"moods" doc:"Check-ins from the last 7 days"`
	Stats       service.Stats          `json:"stats" doc:"Summary and streaks"`
}

// DashboardOutput wraps the dashboard for Huma.
type DashboardOutput struct {
	Body DashboardResponse
}

// StatsOutput wraps the summary and streaks for Huma.
type StatsOutput struct {
	Body service.Stats
}

// TrendsOutput wraps the chart series for Huma.
type TrendsOutput struct {
	Body analytics.Trends
}

// MilestonesResponse lists every milestone.
type MilestonesResponse struct {
	Milestones []analytics.Milestone `json:"milestones" doc:"Milestones and whether each is achieved"`
}

// MilestonesOutput wraps the milestones for Huma.
type MilestonesOutput struct {
	Body MilestonesResponse
}

// ReportOutput wraps the full report for Huma.
type ReportOutput struct {
	Body service.Report
}

// ChartsInput accepts the token as a query parameter so the page can be opened in a browser.
type ChartsInput struct {
	Authorization string `header:"Authorization"`
	Token         string `query:"token" doc:"Access token, alternative to the Authorization header"`
}

// === Handlers ===

func (s *Server) handleGetDashboard(ctx context.Context, input *AuthenticatedInput) (*DashboardOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	d, err := s.services.Dashboard.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := DashboardResponse{
		Active:      mapActiveFast(d.Active),
		RecentFasts: make([]FastResponse, 0, len(d.RecentFasts)),
		Hydration:   mapHydrationDay(d.Hydration),
		Moods:       mapMoodOverview(d.Moods),
		Stats:       *d.Stats,
	}
	for _, f := range d.RecentFasts {
		resp.RecentFasts = append(resp.RecentFasts, mapFast(f))
	}
	return &DashboardOutput{Body: resp}, nil
}

func (s *Server) handleGetStats(ctx context.Context, input *AuthenticatedInput) (*StatsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Analytics.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: *stats}, nil
}

func (s *Server) handleGetTrends(ctx context.Context, input *AuthenticatedInput) (*TrendsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	trends, err := s.services.Analytics.Trends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TrendsOutput{Body: *trends}, nil
}

func (s *Server) handleGetMilestones(ctx context.Context, input *AuthenticatedInput) (*MilestonesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	milestones, err := s.services.Analytics.Milestones(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MilestonesOutput{Body: MilestonesResponse{Milestones: milestones}}, nil
}

func (s *Server) handleGetReport(ctx context.Context, input *AuthenticatedInput) (*ReportOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	report, err := s.services.Analytics.Report(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ReportOutput{Body: *report}, nil
}

func (s *Server) handleGetCharts(ctx context.Context, input *ChartsInput) (*huma.StreamResponse, error) {
	authHeader := input.Authorization
	if authHeader == "" && input.Token != "" {
		authHeader = "Bearer " + input.Token
	}
	userID, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return nil, err
	}

	report, err := s.services.Analytics.Report(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Render up front so failures still produce an error envelope.
	var buf bytes.Buffer
	if err := charts.Render(&buf, charts.Page{
		Title:   "FastLog trends",
		Summary: report.Stats.Summary,
		Streaks: report.Stats.Streaks,
		Trends:  report.Trends,
	}); err != nil {
		return nil, huma.Error500InternalServerError("failed to render charts", err)
	}

	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			ctx.SetHeader("Cache-Control", CacheNoStore)
			if _, err := ctx.BodyWriter().Write(buf.Bytes()); err != nil {
				s.logger.Debug("failed to write chart page", "error", err)
			}
		},
	}, nil
}
