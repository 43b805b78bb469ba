package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/bard/internal/core"
	"github.com/tessro/bard/internal/tui/styles"
)

// HistoryEntry represents something that played this session
type HistoryEntry struct {
	Label    core.Label
	Battle   bool
	PlayedAt time.Time
}

// History displays recently played tracks and cues
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(entries []HistoryEntry, width, height int, focused bool) string {
	title := styles.PanelTitle("History", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (h *History) renderHistory(entries []HistoryEntry, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		timeAgo := formatTimeAgo(entry.PlayedAt)

		icon := styles.Dim.Render("♪")
		if entry.Battle {
			icon = styles.Battle.Render("⚔")
		}

		// icon (2) + spacing (1)
		available := width - 3 - len(timeAgo)
		name := truncate(entry.Label.Title, available)
		padding := max(available-len([]rune(name)), 1)

		line := fmt.Sprintf("%s %s%s%s",
			icon,
			name,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(timeAgo))

		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(t time.Time) string {
	if time.Since(t) < time.Minute {
		return "now"
	}
	return humanize.Time(t)
}
