// Package tui shows live checksum progress with Bubble Tea. It is opt-in
// (--tui) and renders the same reports as the plain output.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/satindergrewal/ripcheck/internal/render"
)

// Color palette.
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(28)

	ChecksumStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

// StatusStyle returns the style for a task outcome.
func StatusStyle(s render.Status) lipgloss.Style {
	switch s {
	case render.StatusOK:
		return SuccessStyle
	case render.StatusTruncated, render.StatusCancelled:
		return WarningStyle
	case render.StatusFailed:
		return ErrorStyle
	default:
		return LabelStyle
	}
}
