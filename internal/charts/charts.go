// Package charts renders fasting trends as a standalone HTML page with go-echarts.
package charts

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
)

// Palette shared by every chart, lightest to darkest.
var levelColors = []string{"#ebedf0", "#c6e0cc", "#8fc29b", "#5a9e6c", "#2f6b3f"}

const (
	accentColor = "#5a9e6c"
	chartWidth  = "900px"
	chartHeight = "360px"
)

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Page holds what the HTML report shows.
type Page struct {
	Title   string
	Summary analytics.Summary
	Streaks analytics.Streaks
	Trends  analytics.Trends
}

// Render writes the page as self-contained HTML.
func Render(w io.Writer, p Page) error {
	page := components.NewPage()
	page.PageTitle = p.Title
	page.SetLayout(components.PageFlexLayout)

	page.AddCharts(
		WeeklyHours(p.Trends.Weekly, subtitle(p.Summary, p.Streaks)),
		SuccessRate(p.Trends.SuccessRate),
		StartTimes(p.Trends.BestStartTimes),
		Heatmap(p.Trends.Heatmap),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}
	return nil
}

func subtitle(s analytics.Summary, st analytics.Streaks) string {
	return fmt.Sprintf("%d fasts, %.0f%% success, %s average, streak %d (best %d)",
		s.TotalSessions,
		s.SuccessRate,
		analytics.FormatDuration(int64(s.AverageDuration)),
		st.Current,
		st.Longest,
	)
}

func baseOptions(title, sub string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: sub}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

// WeeklyHours is a bar chart of fasted hours over the last 7 days.
func WeeklyHours(days []analytics.DayTotal, sub string) *charts.Bar {
	labels := make([]string, len(days))
	items := make([]opts.BarData, len(days))
	for i, d := range days {
		labels[i] = d.Date
		items[i] = opts.BarData{Value: d.Hours}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(baseOptions("Weekly fasting hours", sub),
		charts.WithColorsOpts(opts.Colors{accentColor}),
		charts.WithYAxisOpts(opts.YAxis{Name: "hours"}),
	)...)
	bar.SetXAxis(labels).AddSeries("Hours", items)
	return bar
}

// SuccessRate is a line chart of the daily success rate over the last 14 days.
func SuccessRate(days []analytics.DayRate) *charts.Line {
	labels := make([]string, len(days))
	items := make([]opts.LineData, len(days))
	for i, d := range days {
		labels[i] = d.Date
		items[i] = opts.LineData{Value: d.Rate}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(baseOptions("Success rate", "last 14 days"),
		charts.WithColorsOpts(opts.Colors{accentColor}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%", Min: 0, Max: 100}),
	)...)
	line.SetXAxis(labels).AddSeries("Success rate", items,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)
	return line
}

// StartTimes is a bar chart of the busiest start hours.
func StartTimes(buckets []analytics.HourBucket) *charts.Bar {
	labels := make([]string, len(buckets))
	counts := make([]opts.BarData, len(buckets))
	avg := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
		counts[i] = opts.BarData{Value: b.Sessions}
		avg[i] = opts.BarData{Value: b.AvgHours}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(baseOptions("Best start times", "sessions and average hours by start hour"),
		charts.WithColorsOpts(opts.Colors{accentColor, levelColors[2]}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
	)...)
	bar.SetXAxis(labels).
		AddSeries("Sessions", counts).
		AddSeries("Average hours", avg)
	return bar
}

// Heatmap lays out the 90-day heatmap as weekday rows and week columns.
func Heatmap(days []analytics.HeatmapDay) *charts.HeatMap {
	offset := 0
	if len(days) > 0 {
		if first, err := time.Parse(time.DateOnly, days[0].Date); err == nil {
			offset = int(first.Weekday())
		}
	}

	weeks := (len(days) + offset + 6) / 7
	labels := make([]string, weeks)

	items := make([]opts.HeatMapData, 0, len(days))
	for i, d := range days {
		slot := i + offset
		col, row := slot/7, slot%7
		if row == 0 || i == 0 {
			labels[col] = d.Date[5:]
		}
		items = append(items, opts.HeatMapData{
			Name:  d.Date,
			Value: [3]interface{}{col, row, d.Level},
		})
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(append(baseOptions("Fasting heatmap", "last 90 days"),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: weekdays, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        4,
			InRange:    &opts.VisualMapInRange{Color: levelColors},
		}),
	)...)
	hm.SetXAxis(labels).AddSeries("Level", items)
	return hm
}
