package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastlogapp/fastlog-server/internal/auth"
	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/events"
	"github.com/fastlogapp/fastlog-server/internal/notify"
	"github.com/fastlogapp/fastlog-server/internal/service"
	"github.com/fastlogapp/fastlog-server/internal/sse"
	"github.com/fastlogapp/fastlog-server/internal/store/sqlite"
	"github.com/fastlogapp/fastlog-server/internal/validation"
)

// testEnvelope mirrors response.Envelope with a typed payload.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api        humatest.TestAPI
	tokens     *auth.TokenService
	sseManager *sse.Manager
}

type testVerifier struct {
	auth *service.AuthService
}

func (v testVerifier) VerifyAccessToken(ctx context.Context, token string) (*domain.User, error) {
	user, _, err := v.auth.VerifyAccessToken(ctx, token)
	return user, err
}

func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithOptions(t, Options{CORSOrigins: []string{"*"}, AuthRateLimit: 1000})
}

// setupTestServerWithOptions wires the full service graph against a temporary SQLite database.
func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	sseManager := sse.NewManager(logger)
	go sseManager.Start(ctx)
	t.Cleanup(cancel)

	dispatch := service.NewDispatcher(sseManager, events.NewNoopPublisher(logger), notify.NewSSE(sseManager), logger)
	watcher := service.NewGoalWatcher(dispatch, logger)
	t.Cleanup(watcher.Shutdown)

	v := validation.New()
	sessions := service.NewSessionService(st, tokens, logger)
	authService := service.NewAuthService(st, tokens, sessions, auth.NewMemoryRevoker(), watcher, v, logger)
	fasting := service.NewFastingService(st, watcher, dispatch, v, 16, time.UTC, logger)
	hydration := service.NewHydrationService(st, dispatch, v, time.UTC, logger)
	moods := service.NewMoodService(st, dispatch, v, time.UTC, logger)
	analyticsService := service.NewAnalyticsService(st, time.UTC, logger)

	services := &Services{
		Auth:      authService,
		Fasting:   fasting,
		Hydration: hydration,
		Mood:      moods,
		Analytics: analyticsService,
		Dashboard: service.NewDashboardService(fasting, hydration, moods, analyticsService),
	}

	sseHandler := sse.NewHandler(sseManager, logger, testVerifier{auth: authService})
	server := NewServer(st, services, sseManager, sseHandler, opts, logger)
	t.Cleanup(server.Shutdown)

	return &testServer{
		Server:     server,
		api:        humatest.Wrap(t, server.api),
		tokens:     tokens,
		sseManager: sseManager,
	}
}

// register creates an account and returns its tokens.
func (ts *testServer) register(t *testing.T, email string) AuthResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        email,
		"password":     "correct-horse-battery",
		"display_name": "Tester",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &envelope), "body: %s", body)
	return envelope
}

func TestServer_UnauthenticatedRequestsAreRejected(t *testing.T) {
	ts := setupTestServer(t)

	paths := []string{
		"/api/v1/users/me",
		"/api/v1/fasting/active",
		"/api/v1/fasting/sessions",
		"/api/v1/hydration/today",
		"/api/v1/moods",
		"/api/v1/dashboard",
		"/api/v1/analytics/stats",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp := ts.api.Get(path)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)

			envelope := decode[any](t, resp.Body.Bytes())
			assert.False(t, envelope.Success)
			assert.Equal(t, "UNAUTHORIZED", envelope.Code)
			assert.Equal(t, "Missing authorization header", envelope.Error)
		})
	}
}

func TestServer_RejectsMalformedAuthorization(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me", "Authorization: Token abc")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid authorization header format", decode[any](t, resp.Body.Bytes()).Error)

	resp = ts.api.Get("/api/v1/users/me", bearer("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid or expired token", decode[any](t, resp.Body.Bytes()).Error)
}

func TestServer_AuthRateLimit(t *testing.T) {
	ts := setupTestServerWithOptions(t, Options{AuthRateLimit: 2})

	body := map[string]any{"email": "nobody@example.com", "password": "whatever-password"}
	for range 2 {
		resp := ts.api.Post("/api/v1/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/v1/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	envelope := decode[any](t, resp.Body.Bytes())
	assert.False(t, envelope.Success)
	assert.Equal(t, "RATE_LIMITED", envelope.Code)

	// Other routes are not limited.
	resp = ts.api.Get("/api/v1/fasting/stages")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestServer_EventStreamRequiresToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/events/stream")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/events/stream?token=garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"2001:db8::1", "2001:db8::1"},
		{"10.0.0.7", "10.0.0.7"},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodGet, "/", nil)
			require.NoError(t, err)
			r.RemoteAddr = tt.remote
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}
