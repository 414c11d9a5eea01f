package analytics

import (
	"slices"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/domain"
)

// Streaks holds consecutive-day counts of goal-reached fasts.
type Streaks struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// CalculateStreaks walks goal-reached sessions from newest to oldest by start time.
// Sessions that missed their goal are skipped rather than treated as breaks. The current
// streak is the run that includes the most recent success; once a gap is seen it stops
// growing. Several successes on the same calendar day count once.
func CalculateStreaks(sessions []*domain.FastingSession, loc *time.Location) Streaks {
	if loc == nil {
		loc = time.Local
	}

	sorted := slices.Clone(sessions)
	slices.SortStableFunc(sorted, func(a, b *domain.FastingSession) int {
		return b.StartTime.Compare(a.StartTime)
	})

	var (
		st       Streaks
		temp     int
		lastDay  time.Time
		started  bool
		gapFound bool
	)
	for _, s := range sorted {
		if !s.GoalReached {
			continue
		}
		day := civilDay(s.StartTime, loc)

		if !started {
			started = true
			temp, st.Current = 1, 1
		} else {
			switch diff := daysBetween(day, lastDay); {
			case diff == 1:
				temp++
				if !gapFound {
					st.Current++
				}
			case diff > 1:
				gapFound = true
				temp = 1
			}
		}

		st.Longest = max(st.Longest, temp)
		lastDay = day
	}
	return st
}

// civilDay returns the calendar date of t in loc, expressed as midnight UTC so that
// day arithmetic is unaffected by DST transitions in loc.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole days from earlier to later, both civil days.
func daysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier) / (24 * time.Hour))
}
