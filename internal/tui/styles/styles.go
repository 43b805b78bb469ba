package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors - a parchment-and-steel palette
var (
	// Primary colors
	Primary   = lipgloss.Color("#C08A2E") // Gold
	Secondary = lipgloss.Color("#10B981") // Green
	Accent    = lipgloss.Color("#DC2626") // Blood red

	// Status colors
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
	Info    = lipgloss.Color("#3B82F6") // Blue

	// Neutral colors
	Border    = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#4B5563"}
	Text      = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
	TextMuted = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	TextDim   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextMuted)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Playing = lipgloss.NewStyle().
		Foreground(Secondary)

	Paused = lipgloss.NewStyle().
		Foreground(Warning)

	Battle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Accent)

	Selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// Border styles
var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)

	BattleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent)
)

// ApplyTheme forces a light or dark palette; "auto" leaves detection to
// lipgloss.
func ApplyTheme(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	return bar(percent, width, "━", "─", Primary)
}

// VolumeBar renders a short volume meter.
func VolumeBar(percent int, width int) string {
	return bar(float64(percent), width, "█", "░", Secondary)
}

func bar(percent float64, width int, full, empty string, color lipgloss.TerminalColor) string {
	filled := min(max(int(percent/100*float64(width)), 0), width)

	filledStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat(full, filled)) +
		emptyStyle.Render(strings.Repeat(empty, width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// TagIcon returns an icon for a track tag
func TagIcon(tag string) string {
	switch strings.ToLower(tag) {
	case "main":
		return "👑"
	case "town":
		return "🏰"
	case "battle":
		return "⚔"
	default:
		return "♪"
	}
}
