package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/service"
)

func newStatsCmd(opts *options) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's fasting summary, streaks and milestones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				user, err := lookupUser(cmd.Context(), a.store, email)
				if err != nil {
					return err
				}
				report, err := service.NewAnalyticsService(a.store, a.cfg.Tracking.Location, a.log.Logger).
					Report(cmd.Context(), user.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), RenderStats(user, report))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "user", "", "Email of the user")
	return cmd
}

// RenderStats lays out a report as a bordered panel.
func RenderStats(user *domain.User, report *service.Report) string {
	s := report.Stats

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
	}

	rows := []string{
		titleStyle.Render(user.Name() + "'s fasting"),
		mutedStyle.Render("Timezone " + report.Timezone),
		"",
		row("Total fasts", fmt.Sprintf("%d", s.TotalSessions)),
		row("Success rate", fmt.Sprintf("%.0f%%", s.SuccessRate)),
		row("Average", analytics.FormatDuration(int64(s.AverageDuration))),
		row("Longest", analytics.FormatDuration(s.LongestFast)),
		row("Total fasted", fmt.Sprintf("%.1fh", s.TotalHoursFasted)),
		row("Current streak", fmt.Sprintf("%d days", s.Current)),
		row("Longest streak", fmt.Sprintf("%d days", s.Longest)),
		"",
		titleStyle.Render("Milestones"),
	}

	for _, m := range report.Milestones {
		if m.Achieved {
			rows = append(rows, goldStyle.Render("★ "+m.Message))
		} else {
			rows = append(rows, mutedStyle.Render("☆ "+m.Message))
		}
	}

	if weekly := weeklyLine(report.Trends.Weekly); weekly != "" {
		rows = append(rows, "", titleStyle.Render("Last 7 days"), weekly)
	}

	return panelStyle.Render(strings.Join(rows, "\n"))
}

// weeklyLine renders the weekly hours as a sparkline.
func weeklyLine(days []analytics.DayTotal) string {
	if len(days) == 0 {
		return ""
	}
	levels := []rune("▁▂▃▄▅▆▇█")

	peak := 0.0
	for _, d := range days {
		peak = max(peak, d.Hours)
	}

	var b strings.Builder
	total := 0.0
	for _, d := range days {
		total += d.Hours
		idx := 0
		if peak > 0 {
			idx = int(d.Hours / peak * float64(len(levels)-1))
		}
		b.WriteRune(levels[idx])
	}
	return b.String() + mutedStyle.Render(fmt.Sprintf("  %.1fh", total))
}
