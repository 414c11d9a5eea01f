package domain

import "time"

// DefaultHydrationGoal is the daily water goal in millilitres.
const DefaultHydrationGoal = 2000

// HydrationLog records water intake.
type HydrationLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int       `json:"amount"` // ml
	Goal      int       `json:"goal"`   // ml
	Timestamp time.Time `json:"timestamp"`
}

// HydrationDay summarizes a day's intake.
type HydrationDay struct {
	Logs  []*HydrationLog `json:"logs"`
	Total int             `json:"total"`
	Goal  int             `json:"goal"`
}

// NewHydrationDay totals logs. The goal is taken from latest, the user's most recent log
// on any day, or the default when there is none.
func NewHydrationDay(logs []*HydrationLog, latest *HydrationLog) *HydrationDay {
	day := &HydrationDay{Logs: logs, Goal: DefaultHydrationGoal}
	if day.Logs == nil {
		day.Logs = []*HydrationLog{}
	}
	for _, l := range logs {
		day.Total += l.Amount
	}
	if latest != nil && latest.Goal > 0 {
		day.Goal = latest.Goal
	}
	return day
}

// Mood is a self-reported mood label.
type Mood string

// Supported moods.
const (
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOkay  Mood = "okay"
	MoodLow   Mood = "low"
	MoodBad   Mood = "bad"
)

// MaxMoodNotesLength is the maximum length of a mood log's notes.
const MaxMoodNotesLength = 200

// Valid reports whether m is a supported mood.
func (m Mood) Valid() bool {
	switch m {
	case MoodGreat, MoodGood, MoodOkay, MoodLow, MoodBad:
		return true
	}
	return false
}

// MoodLog records mood and energy at a point in time.
type MoodLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      Mood      `json:"mood"`
	Energy    int       `json:"energy"` // 1..5
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
