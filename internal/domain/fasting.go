package domain

import "time"

const (
	// DefaultGoalHours is the goal applied when a fast is started without one.
	DefaultGoalHours = 16.0
	// MaxGoalHours caps goals at one week.
	MaxGoalHours = 168.0
	// MaxFastNotesLength is the maximum length of a fast's notes.
	MaxFastNotesLength = 500
)

// FastingSession is one start-to-stop fasting interval.
// Duration and GoalReached are set once, when the session is stopped.
type FastingSession struct {
	Record
	UserID      string     `json:"user_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Duration    int64      `json:"duration"` // seconds
	GoalHours   float64    `json:"goal_hours"`
	GoalReached bool       `json:"goal_reached"`
	IsActive    bool       `json:"is_active"`
	Notes       string     `json:"notes,omitempty"`
}

// NewFastingSession creates an active session starting at start.
func NewFastingSession(id, userID string, start time.Time, goalHours float64) *FastingSession {
	if goalHours <= 0 {
		goalHours = DefaultGoalHours
	}
	s := &FastingSession{
		Record:    Record{ID: id},
		UserID:    userID,
		StartTime: start,
		GoalHours: goalHours,
		IsActive:  true,
	}
	s.InitTimestamps()
	return s
}

// GoalSeconds returns the goal expressed in seconds.
func (s *FastingSession) GoalSeconds() float64 {
	return s.GoalHours * 3600
}

// Elapsed returns whole seconds between start and now, or the final duration once stopped.
func (s *FastingSession) Elapsed(now time.Time) int64 {
	if !s.IsActive {
		return s.Duration
	}
	elapsed := int64(now.Sub(s.StartTime) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Complete stops the session at end. It computes Duration and GoalReached.
// Calling Complete on an inactive session has no effect.
func (s *FastingSession) Complete(end time.Time, notes string) {
	if !s.IsActive {
		return
	}
	s.Duration = s.Elapsed(end)
	s.GoalReached = float64(s.Duration) >= s.GoalSeconds()
	s.EndTime = &end
	s.IsActive = false
	if notes != "" {
		s.Notes = notes
	}
	s.Touch()
}
