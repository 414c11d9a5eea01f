package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewFastingSession_DefaultGoal(t *testing.T) {
	start := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	s := NewFastingSession("fast-1", "user-1", start, 0)

	assert.Equal(t, DefaultGoalHours, s.GoalHours)
	assert.True(t, s.IsActive)
	assert.Nil(t, s.EndTime)
}

func TestFastingSession_CompleteImmediately(t *testing.T) {
	start := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	for _, goal := range []float64{0.5, 1, 16, 72} {
		s := NewFastingSession("fast-1", "user-1", start, goal)
		s.Complete(start, "")

		assert.Equal(t, int64(0), s.Duration)
		assert.False(t, s.GoalReached, "goal %v", goal)
		assert.False(t, s.IsActive)
	}
}

func TestFastingSession_CompleteReachesGoal(t *testing.T) {
	start := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	s := NewFastingSession("fast-1", "user-1", start, 16)

	s.Complete(start.Add(16*time.Hour), "felt fine")

	assert.Equal(t, int64(57600), s.Duration)
	assert.True(t, s.GoalReached)
	assert.Equal(t, "felt fine", s.Notes)
}

func TestFastingSession_CompleteIsFinal(t *testing.T) {
	start := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	s := NewFastingSession("fast-1", "user-1", start, 1)
	s.Complete(start.Add(30*time.Minute), "")

	s.Complete(start.Add(5*time.Hour), "later")

	assert.Equal(t, int64(1800), s.Duration)
	assert.False(t, s.GoalReached)
	assert.Empty(t, s.Notes)
}

func TestFastingSession_Elapsed(t *testing.T) {
	start := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	s := NewFastingSession("fast-1", "user-1", start, 16)

	assert.Equal(t, int64(90), s.Elapsed(start.Add(90*time.Second+900*time.Millisecond)))
	assert.Equal(t, int64(0), s.Elapsed(start.Add(-time.Minute)))
}

func TestNewHydrationDay(t *testing.T) {
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	empty := NewHydrationDay(nil, nil)
	assert.Equal(t, DefaultHydrationGoal, empty.Goal)
	assert.Equal(t, 0, empty.Total)
	assert.NotNil(t, empty.Logs)

	latest := &HydrationLog{Amount: 250, Goal: 2500, Timestamp: base.Add(2 * time.Hour)}
	day := NewHydrationDay([]*HydrationLog{
		latest,
		{Amount: 500, Goal: 2000, Timestamp: base},
	}, latest)
	assert.Equal(t, 750, day.Total)
	assert.Equal(t, 2500, day.Goal)

	carried := NewHydrationDay(nil, &HydrationLog{Amount: 300, Goal: 3000})
	assert.Equal(t, 0, carried.Total)
	assert.Equal(t, 3000, carried.Goal)
}

func TestMood_Valid(t *testing.T) {
	assert.True(t, MoodGreat.Valid())
	assert.True(t, Mood("okay").Valid())
	assert.False(t, Mood("ecstatic").Valid())
}
