package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastlogapp/fastlog-server/internal/store/sqlite"
)

const demoFixture = `
user:
  email: Demo@Example.com
  password: correct-horse-battery
  display_name: Demo
fasts:
  - days_ago: 4
    hour: 20
    hours: 17
    goal_hours: 16
  - days_ago: 3
    hour: 20
    hours: 17
  - days_ago: 2
    hour: 20
    hours: 12
    notes: broke it early
hydration:
  - days_ago: 0
    hour: 0
    amount: 500
  - days_ago: 1
    hour: 9
    amount: 250
    goal: 2500
moods:
  - days_ago: 1
    hour: 12
    mood: good
    energy: 4
`

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "fastlog.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustParse(t *testing.T, doc string) *Fixture {
	t.Helper()
	fx, err := ParseFixture(strings.NewReader(doc))
	require.NoError(t, err)
	return fx
}

func TestParseFixture(t *testing.T) {
	fx := mustParse(t, demoFixture)
	assert.Equal(t, "Demo@Example.com", fx.User.Email)
	require.Len(t, fx.Fasts, 3)
	assert.Equal(t, 4, fx.Fasts[0].DaysAgo)
	assert.InDelta(t, 17.0, fx.Fasts[0].Hours, 0.001)
	assert.Equal(t, "broke it early", fx.Fasts[2].Notes)
	assert.Len(t, fx.Hydration, 2)
	assert.Len(t, fx.Moods, 1)
}

func TestParseFixture_AbsoluteStart(t *testing.T) {
	fx := mustParse(t, `
user: {email: a@example.com, password: pw}
fasts:
  - start: 2025-03-04T20:00:00Z
    active: true
`)
	require.Len(t, fx.Fasts, 1)
	assert.True(t, fx.Fasts[0].Start.Equal(time.Date(2025, 3, 4, 20, 0, 0, 0, time.UTC)))
	assert.True(t, fx.Fasts[0].Active)
}

func TestParseFixture_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "user: {email: a@example.com}\nfasts:\n  - hourz: 3\n"},
		{"missing email", "user: {password: pw}\n"},
		{"not yaml", "user: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixture(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestSeed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	res, err := Seed(ctx, st, mustParse(t, demoFixture), now, time.UTC)
	require.NoError(t, err)
	assert.True(t, res.UserCreated)
	assert.Equal(t, 3, res.Fasts)
	assert.Equal(t, 2, res.Hydration)
	assert.Equal(t, 1, res.Moods)

	user, err := st.GetUserByEmail(ctx, "demo@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.UserID, user.ID)
	assert.Equal(t, "demo@example.com", user.Email)

	fasts, err := st.ListFasts(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, fasts, 3)
	reached := 0
	for _, f := range fasts {
		assert.False(t, f.IsActive)
		if f.GoalReached {
			reached++
		}
	}
	assert.Equal(t, 2, reached)

	// Re-seeding reuses the account.
	again, err := Seed(ctx, st, &Fixture{User: FixtureUser{Email: "DEMO@example.com"}}, now, time.UTC)
	require.NoError(t, err)
	assert.False(t, again.UserCreated)
	assert.Equal(t, user.ID, again.UserID)
}

func TestSeed_ActiveFast(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	fx := mustParse(t, `
user: {email: active@example.com, password: correct-horse-battery}
fasts:
  - days_ago: 1
    hour: 20
    active: true
`)
	res, err := Seed(ctx, st, fx, time.Now(), time.UTC)
	require.NoError(t, err)

	active, err := st.GetActiveFast(ctx, res.UserID)
	require.NoError(t, err)
	assert.InDelta(t, 16.0, active.GoalHours, 0.001)

	// A second active fast for the same user is refused.
	_, err = Seed(ctx, st, fx, time.Now(), time.UTC)
	assert.ErrorContains(t, err, "fast 1")
}

func TestSeed_Rejects(t *testing.T) {
	user := "user: {email: bad@example.com, password: correct-horse-battery}\n"
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"unknown mood", "moods:\n  - {mood: meh, energy: 3}\n", "unknown mood"},
		{"energy out of range", "moods:\n  - {mood: good, energy: 0}\n", "energy"},
		{"no water", "hydration:\n  - {amount: 0}\n", "amount"},
		{"goal beyond a week", "fasts:\n  - {days_ago: 3, hours: 10, goal_hours: 200}\n", "goal_hours"},
		{"ends in the future", "fasts:\n  - {days_ago: 0, hour: 23, hours: 30}\n", "future"},
		{"no duration", "fasts:\n  - {days_ago: 3}\n", "hours must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStore(t)
			_, err := Seed(context.Background(), st, mustParse(t, user+tt.doc), time.Now(), time.UTC)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGenerateFixture(t *testing.T) {
	u := FixtureUser{Email: "gen@example.com", Password: "correct-horse-battery"}

	fx := GenerateFixture(u, 5, 42)
	assert.Len(t, fx.Fasts, 5)
	assert.Len(t, fx.Hydration, 15)
	assert.Len(t, fx.Moods, 5)
	assert.Equal(t, fx, GenerateFixture(u, 5, 42), "same seed, same history")

	res, err := Seed(context.Background(), newTestStore(t), fx, time.Now(), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Fasts)
}
