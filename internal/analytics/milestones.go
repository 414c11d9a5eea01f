package analytics

// Milestone is an achievement unlocked by cumulative fasting history.
type Milestone struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	Achieved bool   `json:"achieved"`
}

type milestoneRule struct {
	id      string
	message string
	check   func(Summary, Streaks) bool
}

var milestoneRules = []milestoneRule{
	{"10_sessions", "10 fasting sessions completed!", func(s Summary, _ Streaks) bool { return s.TotalSessions >= 10 }},
	{"50_hours", "50 total hours fasted!", func(s Summary, _ Streaks) bool { return s.TotalHoursFasted >= 50 }},
	{"100_hours", "100 total hours fasted!", func(s Summary, _ Streaks) bool { return s.TotalHoursFasted >= 100 }},
	{"7_day_streak", "7-day streak achieved!", func(_ Summary, st Streaks) bool { return st.Longest >= 7 }},
	{"30_day_streak", "30-day streak! You're unstoppable!", func(_ Summary, st Streaks) bool { return st.Longest >= 30 }},
}

// Milestones reports every known milestone and whether it has been achieved.
func Milestones(s Summary, st Streaks) []Milestone {
	out := make([]Milestone, len(milestoneRules))
	for i, r := range milestoneRules {
		out[i] = Milestone{ID: r.id, Message: r.message, Achieved: r.check(s, st)}
	}
	return out
}

// NewlyAchieved returns milestones achieved in after but not in before.
func NewlyAchieved(before, after []Milestone) []Milestone {
	had := make(map[string]bool, len(before))
	for _, m := range before {
		had[m.ID] = m.Achieved
	}
	var out []Milestone
	for _, m := range after {
		if m.Achieved && !had[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// MilestoneMessage returns the display text for a milestone ID.
func MilestoneMessage(id string) string {
	for _, r := range milestoneRules {
		if r.id == id {
			return r.message
		}
	}
	return "Milestone achieved!"
}
