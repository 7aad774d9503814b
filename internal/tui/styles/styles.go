// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Defines colors, borders, and text styles used across components

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gitlab-insight/insight/internal/notify"
)

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	Accent    = lipgloss.Color("#8B5CF6") // Lighter purple for highlights
	Info      = lipgloss.Color("#3B82F6") // Blue

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Menu rows
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Disabled = lipgloss.NewStyle().
			Foreground(Muted).
			Strikethrough(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	Spinner = lipgloss.NewStyle().Foreground(Primary)
)

// LevelColor maps a notification level to its color
func LevelColor(level notify.Level) lipgloss.Color {
	switch level {
	case notify.LevelError:
		return Danger
	case notify.LevelWarning:
		return Warning
	case notify.LevelSuccess:
		return Secondary
	default:
		return Info
	}
}

// Notice renders a notification for the footer
func Notice(n notify.Notification) string {
	return notify.Prefix(n.Level) + " " + lipgloss.NewStyle().Foreground(LevelColor(n.Level)).Render(n.Message)
}

// ProgressBar returns a styled progress bar string
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	color := Primary
	if percent >= 100 {
		color = Secondary
	}
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}
