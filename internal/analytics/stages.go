package analytics

// Stage is a physiological phase keyed to elapsed fasting hours.
type Stage struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ThresholdHours float64 `json:"threshold_hours"`
	Description    string  `json:"description"`
	Color          string  `json:"color"`
}

// stages is ordered by ascending threshold.
var stages = []Stage{
	{
		ID:             "rising",
		Name:           "Blood Sugar Rising",
		ThresholdHours: 0,
		Description:    "Your body is processing your last meal. Insulin levels are rising.",
		Color:          "#7c9885",
	},
	{
		ID:             "falling",
		Name:           "Blood Sugar Falling",
		ThresholdHours: 4,
		Description:    "Insulin levels start to drop. Your body begins to look for other energy sources.",
		Color:          "#a8bfad",
	},
	{
		ID:             "ketosis",
		Name:           "Ketosis Starts",
		ThresholdHours: 12,
		Description:    "Your body starts burning fat for energy. Ketone levels begin to rise.",
		Color:          "#60a5fa",
	},
	{
		ID:             "fat-burning",
		Name:           "Accelerated Fat Burning",
		ThresholdHours: 18,
		Description:    "Fat burning is in full swing. Growth hormone levels are increasing.",
		Color:          "#3b82f6",
	},
	{
		ID:             "autophagy",
		Name:           "Autophagy",
		ThresholdHours: 24,
		Description:    "Cells start cleaning out damaged components. Peak anti-aging happens here.",
		Color:          "#1d4ed8",
	},
	{
		ID:             "growth-hormone",
		Name:           "Growth Hormone Peak",
		ThresholdHours: 48,
		Description:    "Metabolism is optimized, and growth hormone is at its highest level.",
		Color:          "#1e3a8a",
	},
}

// Stages returns a copy of the stage catalog in threshold order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// StageMark flags whether a stage has been reached, for timeline rendering.
type StageMark struct {
	Stage
	Reached bool `json:"reached"`
}

// StageProgress describes where an elapsed fast sits in the stage catalog.
type StageProgress struct {
	Current  Stage       `json:"current"`
	Next     *Stage      `json:"next,omitempty"`
	Progress float64     `json:"progress"` // percent toward Next, 100 on the last stage
	Timeline []StageMark `json:"timeline"`
}

// ClassifyStage picks the last stage whose threshold does not exceed the elapsed hours,
// defaulting to the first stage.
func ClassifyStage(elapsedSeconds int64) StageProgress {
	hours := float64(max(elapsedSeconds, 0)) / 3600

	idx := 0
	for i := len(stages) - 1; i >= 0; i-- {
		if hours >= stages[i].ThresholdHours {
			idx = i
			break
		}
	}

	sp := StageProgress{
		Current:  stages[idx],
		Progress: 100,
		Timeline: make([]StageMark, len(stages)),
	}
	if idx+1 < len(stages) {
		next := stages[idx+1]
		sp.Next = &next
		span := next.ThresholdHours - sp.Current.ThresholdHours
		sp.Progress = clampPercent((hours - sp.Current.ThresholdHours) / span * 100)
	}
	for i, st := range stages {
		sp.Timeline[i] = StageMark{Stage: st, Reached: hours >= st.ThresholdHours}
	}
	return sp
}

// GoalProgress returns the percentage of goalHours covered by elapsedSeconds, capped at 100.
func GoalProgress(elapsedSeconds int64, goalHours float64) float64 {
	if goalHours <= 0 {
		return 0
	}
	return clampPercent(float64(elapsedSeconds) / (goalHours * 3600) * 100)
}

func clampPercent(v float64) float64 {
	return min(max(v, 0), 100)
}
