package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/store"
)

func TestHydrationLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "user-1")

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	logs := []*domain.HydrationLog{
		{ID: "hyd-1", UserID: "user-1", Amount: 250, Goal: 2000, Timestamp: day.Add(8 * time.Hour)},
		{ID: "hyd-2", UserID: "user-1", Amount: 500, Goal: 2500, Timestamp: day.Add(12 * time.Hour)},
		{ID: "hyd-3", UserID: "user-1", Amount: 300, Goal: 2000, Timestamp: day.Add(-2 * time.Hour)},
	}
	for _, l := range logs {
		if err := s.CreateHydration(ctx, l); err != nil {
			t.Fatalf("CreateHydration(%s): %v", l.ID, err)
		}
	}

	got, err := s.ListHydration(ctx, "user-1", day, day.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		t.Fatalf("ListHydration: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(got))
	}
	if got[0].ID != "hyd-2" {
		t.Errorf("expected newest first, got %s", got[0].ID)
	}

	latest, err := s.LatestHydration(ctx, "user-1")
	if err != nil {
		t.Fatalf("LatestHydration: %v", err)
	}
	if latest.ID != "hyd-2" || latest.Goal != 2500 {
		t.Errorf("latest: got %s goal %d", latest.ID, latest.Goal)
	}

	if err := s.DeleteHydration(ctx, "user-2", "hyd-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("other user delete: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteHydration(ctx, "user-1", "hyd-1"); err != nil {
		t.Errorf("DeleteHydration: %v", err)
	}
}

func TestLatestHydration_None(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.LatestHydration(context.Background(), "user-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMoodLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "user-1")

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	logs := []*domain.MoodLog{
		{ID: "mood-1", UserID: "user-1", Mood: domain.MoodGood, Energy: 4, Notes: "light", Timestamp: now.Add(-time.Hour)},
		{ID: "mood-2", UserID: "user-1", Mood: domain.MoodLow, Energy: 2, Timestamp: now.AddDate(0, 0, -3)},
		{ID: "mood-3", UserID: "user-1", Mood: domain.MoodGreat, Energy: 5, Timestamp: now.AddDate(0, 0, -10)},
	}
	for _, l := range logs {
		if err := s.CreateMood(ctx, l); err != nil {
			t.Fatalf("CreateMood(%s): %v", l.ID, err)
		}
	}

	got, err := s.ListMoods(ctx, "user-1", now.AddDate(0, 0, -7), now)
	if err != nil {
		t.Fatalf("ListMoods: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 moods, got %d", len(got))
	}
	if got[0].ID != "mood-1" || got[0].Mood != domain.MoodGood || got[0].Notes != "light" {
		t.Errorf("first mood: got %+v", got[0])
	}

	if err := s.DeleteMood(ctx, "user-1", "mood-2"); err != nil {
		t.Errorf("DeleteMood: %v", err)
	}
	if err := s.DeleteMood(ctx, "user-1", "mood-2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
