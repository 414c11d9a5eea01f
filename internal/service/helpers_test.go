package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastlogapp/fastlog-server/internal/auth"
	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/events"
	"github.com/fastlogapp/fastlog-server/internal/notify"
	"github.com/fastlogapp/fastlog-server/internal/sse"
	"github.com/fastlogapp/fastlog-server/internal/store/sqlite"
	"github.com/fastlogapp/fastlog-server/internal/validation"
)

var testLogger = slog.New(slog.DiscardHandler)

type recordingEmitter struct {
	mu    sync.Mutex
	types []sse.EventType
}

func (r *recordingEmitter) EmitToUser(_ string, eventType sse.EventType, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
}

func (r *recordingEmitter) Types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sse.EventType(nil), r.types...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) Types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return nil
}

func (r *recordingNotifier) Notes() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.notes...)
}

// testEnv wires every service against a temporary SQLite database.
type testEnv struct {
	store     *sqlite.Store
	tokens    *auth.TokenService
	revoker   *auth.MemoryRevoker
	emitter   *recordingEmitter
	publisher *recordingPublisher
	notifier  *recordingNotifier
	watcher   *GoalWatcher

	auth      *AuthService
	sessions  *SessionService
	fasting   *FastingService
	hydration *HydrationService
	moods     *MoodService
	analytics *AnalyticsService
	dashboard *DashboardService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	s, err := sqlite.Open(filepath.Join(dir, "test.db"), testLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		store:     s,
		tokens:    tokens,
		revoker:   auth.NewMemoryRevoker(),
		emitter:   &recordingEmitter{},
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
	}

	dispatch := NewDispatcher(env.emitter, env.publisher, env.notifier, testLogger)
	env.watcher = NewGoalWatcher(dispatch, testLogger)
	env.watcher.interval = 5 * time.Millisecond
	t.Cleanup(env.watcher.Shutdown)

	v := validation.New()
	env.sessions = NewSessionService(s, tokens, testLogger)
	env.auth = NewAuthService(s, tokens, env.sessions, env.revoker, env.watcher, v, testLogger)
	env.fasting = NewFastingService(s, env.watcher, dispatch, v, 16, time.UTC, testLogger)
	env.hydration = NewHydrationService(s, dispatch, v, time.UTC, testLogger)
	env.moods = NewMoodService(s, dispatch, v, time.UTC, testLogger)
	env.analytics = NewAnalyticsService(s, time.UTC, testLogger)
	env.dashboard = NewDashboardService(env.fasting, env.hydration, env.moods, env.analytics)
	return env
}

func (e *testEnv) register(t *testing.T, email string) *AuthResponse {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return resp
}

// seedFast inserts a completed fast directly into the store.
func (e *testEnv) seedFast(t *testing.T, userID, fastID string, start time.Time, hours, goal float64) *domain.FastingSession {
	t.Helper()
	ctx := context.Background()
	f := domain.NewFastingSession(fastID, userID, start, goal)
	require.NoError(t, e.store.CreateFast(ctx, f))
	f.Complete(start.Add(time.Duration(hours*float64(time.Hour))), "")
	require.NoError(t, e.store.CompleteFast(ctx, f))
	return f
}
