package commands

import (
	"github.com/charmbracelet/lipgloss"

	"attentionos/internal/analytics"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e5e7eb"))
	labelStyle = lipgloss.NewStyle().Width(20).Foreground(lipgloss.Color("#9ca3af"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	gradeBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Bold(true)

	bandColors = map[string]lipgloss.Color{
		analytics.BandSuccess: lipgloss.Color("#10b981"),
		analytics.BandWarning: lipgloss.Color("#f59e0b"),
		analytics.BandDanger:  lipgloss.Color("#ef4444"),
	}
)

// gradeStyle renders a grade in its display color
func gradeStyle(color string) lipgloss.Style {
	return gradeBox.
		Foreground(lipgloss.Color(color)).
		BorderForeground(lipgloss.Color(color))
}

// bandStyle colors a value by its focus band
func bandStyle(band string) lipgloss.Style {
	color, ok := bandColors[band]
	if !ok {
		color = bandColors[analytics.BandDanger]
	}
	return lipgloss.NewStyle().Foreground(color)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}
