package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors follow the chart palette.
var (
	colorAccent = lipgloss.Color("#5a9e6c")
	colorMuted  = lipgloss.Color("#8a8f98")
	colorGold   = lipgloss.Color("#d4a017")
	colorTrack  = lipgloss.Color("#3a3f44")

	titleStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(18)
	valueStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	goldStyle  = lipgloss.NewStyle().Foreground(colorGold).Bold(true)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

// progressBar renders percent (0..100) as a bar width cells wide.
func progressBar(percent float64, width int) string {
	filled := min(max(int(percent/100*float64(width)+0.5), 0), width)
	return lipgloss.NewStyle().Foreground(colorAccent).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(colorTrack).Render(strings.Repeat("░", width-filled))
}
