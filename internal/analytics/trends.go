package analytics

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/domain"
)

// Window sizes, in calendar days including today.
const (
	WeeklyDays      = 7
	SuccessRateDays = 14
	HeatmapDays     = 90

	bestStartTimesLimit = 8
)

// DayTotal is one day of the weekly trend.
type DayTotal struct {
	Date     string  `json:"date"` // "Jan 02"
	Day      string  `json:"day"`  // "2006-01-02"
	Hours    float64 `json:"hours"`
	Sessions int     `json:"sessions"`
}

// DayRate is one day of the success-rate trend.
type DayRate struct {
	Date     string  `json:"date"`
	Day      string  `json:"day"`
	Rate     float64 `json:"rate"`
	Sessions int     `json:"sessions"`
}

// HourBucket aggregates sessions by local start hour.
type HourBucket struct {
	Hour     int     `json:"hour"`
	Label    string  `json:"time"`
	Sessions int     `json:"sessions"`
	AvgHours float64 `json:"avg_hours"`
}

// HeatmapDay is one cell of the calendar heatmap.
type HeatmapDay struct {
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	Level      int     `json:"level"`
	HasSuccess bool    `json:"has_success"`
}

// Trends bundles every chart series.
type Trends struct {
	Weekly         []DayTotal   `json:"weekly"`
	SuccessRate    []DayRate    `json:"success_rate"`
	BestStartTimes []HourBucket `json:"best_start_times"`
	Heatmap        []HeatmapDay `json:"heatmap"`
}

// BuildTrends computes all series for the same history and reference time.
func BuildTrends(sessions []*domain.FastingSession, now time.Time, loc *time.Location) Trends {
	return Trends{
		Weekly:         WeeklyTrend(sessions, now, loc),
		SuccessRate:    SuccessRateTrend(sessions, now, loc),
		BestStartTimes: BestStartTimes(sessions, loc),
		Heatmap:        Heatmap(sessions, now, loc),
	}
}

// DayBounds returns the first and last instant of t's calendar day in loc.
// It returns new values and never modifies t.
func DayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	end = time.Date(y, m, d+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	return start, end
}

// WindowStart returns the start of the day that is days-1 days before now, so a window of
// days calendar days ends with today.
func WindowStart(now time.Time, days int, loc *time.Location) time.Time {
	start, _ := DayBounds(now, loc)
	y, m, d := start.Date()
	return time.Date(y, m, d-(days-1), 0, 0, 0, 0, start.Location())
}

type dayAgg struct {
	seconds   int64
	sessions  int
	successes int
}

// bucketByDay groups completed sessions by the civil day of their start time.
func bucketByDay(sessions []*domain.FastingSession, loc *time.Location) map[time.Time]*dayAgg {
	days := make(map[time.Time]*dayAgg)
	for _, s := range sessions {
		if s.IsActive {
			continue
		}
		key := civilDay(s.StartTime, loc)
		agg := days[key]
		if agg == nil {
			agg = &dayAgg{}
			days[key] = agg
		}
		agg.seconds += s.Duration
		agg.sessions++
		if s.GoalReached {
			agg.successes++
		}
	}
	return days
}

// window yields the civil days of an n-day window ending today, oldest first.
func window(now time.Time, n int, loc *time.Location) []time.Time {
	today := civilDay(now, loc)
	out := make([]time.Time, n)
	for i := range n {
		out[i] = today.AddDate(0, 0, i-(n-1))
	}
	return out
}

func normalizeLoc(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// WeeklyTrend returns total hours and session count for each of the last 7 days.
func WeeklyTrend(sessions []*domain.FastingSession, now time.Time, loc *time.Location) []DayTotal {
	loc = normalizeLoc(loc)
	byDay := bucketByDay(sessions, loc)

	days := window(now, WeeklyDays, loc)
	out := make([]DayTotal, len(days))
	for i, day := range days {
		out[i] = DayTotal{Date: day.Format("Jan 02"), Day: day.Format(time.DateOnly)}
		if agg := byDay[day]; agg != nil {
			out[i].Hours = round1(float64(agg.seconds) / 3600)
			out[i].Sessions = agg.sessions
		}
	}
	return out
}

// SuccessRateTrend returns the percentage of goal-reached sessions for each of the last 14 days.
// Days without sessions report 0.
func SuccessRateTrend(sessions []*domain.FastingSession, now time.Time, loc *time.Location) []DayRate {
	loc = normalizeLoc(loc)
	byDay := bucketByDay(sessions, loc)

	days := window(now, SuccessRateDays, loc)
	out := make([]DayRate, len(days))
	for i, day := range days {
		out[i] = DayRate{Date: day.Format("Jan 02"), Day: day.Format(time.DateOnly)}
		if agg := byDay[day]; agg != nil && agg.sessions > 0 {
			out[i].Rate = round1(float64(agg.successes) / float64(agg.sessions) * 100)
			out[i].Sessions = agg.sessions
		}
	}
	return out
}

// BestStartTimes returns up to eight start hours with the most sessions, busiest first.
// Ties keep hour order.
func BestStartTimes(sessions []*domain.FastingSession, loc *time.Location) []HourBucket {
	loc = normalizeLoc(loc)

	var (
		counts  [24]int
		seconds [24]int64
	)
	for _, s := range sessions {
		if s.IsActive {
			continue
		}
		h := s.StartTime.In(loc).Hour()
		counts[h]++
		seconds[h] += s.Duration
	}

	buckets := make([]HourBucket, 0, 24)
	for h := range 24 {
		if counts[h] == 0 {
			continue
		}
		buckets = append(buckets, HourBucket{
			Hour:     h,
			Label:    fmt.Sprintf("%d:00", h),
			Sessions: counts[h],
			AvgHours: round1(float64(seconds[h]) / float64(counts[h]) / 3600),
		})
	}
	slices.SortStableFunc(buckets, func(a, b HourBucket) int {
		return b.Sessions - a.Sessions
	})
	if len(buckets) > bestStartTimesLimit {
		buckets = buckets[:bestStartTimesLimit]
	}
	return buckets
}

// Heatmap returns 90 days of total hours, intensity level and success flag.
func Heatmap(sessions []*domain.FastingSession, now time.Time, loc *time.Location) []HeatmapDay {
	loc = normalizeLoc(loc)
	byDay := bucketByDay(sessions, loc)

	days := window(now, HeatmapDays, loc)
	out := make([]HeatmapDay, len(days))
	for i, day := range days {
		out[i] = HeatmapDay{Date: day.Format(time.DateOnly)}
		if agg := byDay[day]; agg != nil {
			hours := float64(agg.seconds) / 3600
			out[i].Hours = round1(hours)
			out[i].Level = HeatmapLevel(hours)
			out[i].HasSuccess = agg.successes > 0
		}
	}
	return out
}

// HeatmapLevel buckets a day's fasted hours into 0..4.
func HeatmapLevel(hours float64) int {
	switch {
	case hours <= 0:
		return 0
	case hours < 12:
		return 1
	case hours < 16:
		return 2
	case hours < 20:
		return 3
	default:
		return 4
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
