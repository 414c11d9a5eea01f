package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/service"
)

// seedStreak stores three successful 17h fasts starting on consecutive days.
func (ts *testServer) seedStreak(t *testing.T, userID string) {
	t.Helper()
	base := time.Now().UTC().Add(-4 * 24 * time.Hour)
	for i, id := range []string{"fast-1", "fast-2", "fast-3"} {
		ts.seedFast(t, userID, id, base.Add(time.Duration(i)*24*time.Hour), 17, 16)
	}
}

func TestAnalytics_Stats(t *testing.T) {
	ts := setupTestServer(t)
	registered := ts.register(t, "stats@example.com")
	auth := bearer(registered.AccessToken)

	resp := ts.api.Get("/api/v1/analytics/stats", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	empty := decode[service.Stats](t, resp.Body.Bytes()).Data
	assert.Zero(t, empty.TotalSessions)
	assert.Zero(t, empty.Longest)

	ts.seedStreak(t, registered.User.ID)

	resp = ts.api.Get("/api/v1/analytics/stats", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	stats := decode[service.Stats](t, resp.Body.Bytes()).Data
	assert.Equal(t, 3, stats.TotalSessions)
	assert.InDelta(t, 100.0, stats.SuccessRate, 0.001)
	assert.Equal(t, int64(17*3600), stats.LongestFast)
	assert.InDelta(t, 51.0, stats.TotalHoursFasted, 0.001)
	assert.Equal(t, 3, stats.Longest)
}

func TestAnalytics_Milestones(t *testing.T) {
	ts := setupTestServer(t)
	registered := ts.register(t, "stats@example.com")
	auth := bearer(registered.AccessToken)
	ts.seedStreak(t, registered.User.ID)

	resp := ts.api.Get("/api/v1/analytics/milestones", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	milestones := decode[MilestonesResponse](t, resp.Body.Bytes()).Data.Milestones
	require.NotEmpty(t, milestones)

	achieved := map[string]bool{}
	for _, m := range milestones {
		achieved[m.ID] = m.Achieved
	}
	assert.True(t, achieved["50_hours"])
	assert.False(t, achieved["100_hours"])
	assert.False(t, achieved["10_sessions"])
}

func TestAnalytics_TrendsAndReport(t *testing.T) {
	ts := setupTestServer(t)
	registered := ts.register(t, "stats@example.com")
	auth := bearer(registered.AccessToken)
	ts.seedStreak(t, registered.User.ID)

	resp := ts.api.Get("/api/v1/analytics/trends", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	trends := decode[analytics.Trends](t, resp.Body.Bytes()).Data
	assert.Len(t, trends.Weekly, 7)
	assert.NotEmpty(t, trends.Heatmap)

	var weeklyHours float64
	for _, d := range trends.Weekly {
		weeklyHours += d.Hours
	}
	assert.InDelta(t, 51.0, weeklyHours, 0.001)

	resp = ts.api.Get("/api/v1/analytics/report", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	report := decode[service.Report](t, resp.Body.Bytes()).Data
	assert.Equal(t, "UTC", report.Timezone)
	assert.False(t, report.GeneratedAt.IsZero())
	assert.Equal(t, 3, report.Stats.TotalSessions)
	assert.Len(t, report.Trends.Weekly, 7)
	assert.NotEmpty(t, report.Milestones)
}

func TestAnalytics_Charts(t *testing.T) {
	ts := setupTestServer(t)
	registered := ts.register(t, "charts@example.com")
	ts.seedStreak(t, registered.User.ID)

	resp := ts.api.Get("/api/v1/analytics/charts?token=" + registered.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/html"))
	assert.Equal(t, CacheNoStore, resp.Header().Get("Cache-Control"))
	assert.Contains(t, resp.Body.String(), "FastLog trends")

	resp = ts.api.Get("/api/v1/analytics/charts", bearer(registered.AccessToken))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/analytics/charts")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDashboard(t *testing.T) {
	ts := setupTestServer(t)
	registered := ts.register(t, "home@example.com")
	auth := bearer(registered.AccessToken)
	ts.seedStreak(t, registered.User.ID)

	require.Equal(t, http.StatusCreated, ts.api.Post("/api/v1/fasting/start", auth, map[string]any{}).Code)
	require.Equal(t, http.StatusCreated, ts.api.Post("/api/v1/hydration", auth, map[string]any{"amount": 400}).Code)
	require.Equal(t, http.StatusCreated, ts.api.Post("/api/v1/moods", auth, map[string]any{"mood": "good", "energy": 4}).Code)

	resp := ts.api.Get("/api/v1/dashboard", auth)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	d := decode[DashboardResponse](t, resp.Body.Bytes()).Data
	assert.True(t, d.Active.Active)
	require.NotNil(t, d.Active.Fast)
	require.Len(t, d.RecentFasts, 3, "the running fast is not history")
	for _, f := range d.RecentFasts {
		assert.NotEqual(t, d.Active.Fast.ID, f.ID)
		assert.False(t, f.IsActive)
	}
	assert.Equal(t, 400, d.Hydration.Total)
	assert.Len(t, d.Moods.Logs, 1)
	assert.Equal(t, 3, d.Stats.TotalSessions)
}
