package analytics

import "github.com/fastlogapp/fastlog-server/internal/domain"

// Summary aggregates completed fasting sessions.
type Summary struct {
	TotalSessions    int     `json:"total_sessions"`
	AverageDuration  float64 `json:"average_duration"` // seconds
	SuccessRate      float64 `json:"success_rate"`     // percent
	LongestFast      int64   `json:"longest_fast"`     // seconds
	TotalHoursFasted float64 `json:"total_hours_fasted"`
}

// Summarize computes totals over completed sessions. Active sessions are skipped.
// All fields are zero when there is nothing to summarize.
func Summarize(sessions []*domain.FastingSession) Summary {
	var (
		s         Summary
		total     int64
		successes int
	)
	for _, fs := range sessions {
		if fs.IsActive {
			continue
		}
		s.TotalSessions++
		total += fs.Duration
		if fs.GoalReached {
			successes++
		}
		if fs.Duration > s.LongestFast {
			s.LongestFast = fs.Duration
		}
	}
	if s.TotalSessions == 0 {
		return Summary{}
	}

	s.AverageDuration = float64(total) / float64(s.TotalSessions)
	s.SuccessRate = float64(successes) / float64(s.TotalSessions) * 100
	s.TotalHoursFasted = float64(total) / 3600
	return s
}
