package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/bard/internal/core"
	"github.com/tessro/bard/internal/tui/styles"
)

// Tracks is the selectable ambient track list.
type Tracks struct {
	offset   int
	selected int
}

// NewTracks creates a new Tracks component
func NewTracks() *Tracks {
	return &Tracks{}
}

// SelectNext selects the next track
func (t *Tracks) SelectNext(n int) {
	if t.selected < n-1 {
		t.selected++
	}
}

// SelectPrev selects the previous track
func (t *Tracks) SelectPrev() {
	if t.selected > 0 {
		t.selected--
	}
}

// Select jumps to index i.
func (t *Tracks) Select(i int) {
	t.selected = max(i, 0)
}

// Selected returns the selected index
func (t *Tracks) Selected() int {
	return t.selected
}

// Render renders the tracks panel. currentID marks the track loaded in the
// ambient slot.
func (t *Tracks) Render(tracks []core.Track, currentID string, width, height int, focused bool) string {
	title := styles.PanelTitle("Tracks", focused)

	var content string
	if len(tracks) == 0 {
		content = styles.Muted.Render("Catalog has no tracks")
	} else {
		content = t.renderTracks(tracks, currentID, width-4, height-4, focused)
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

func (t *Tracks) renderTracks(tracks []core.Track, currentID string, width, maxLines int, focused bool) string {
	if t.selected >= len(tracks) {
		t.selected = len(tracks) - 1
	}

	// Keep the selection visible
	visibleCount := max(maxLines-1, 1) // room for "more" indicator
	if t.selected < t.offset {
		t.offset = t.selected
	}
	if t.selected >= t.offset+visibleCount {
		t.offset = t.selected - visibleCount + 1
	}

	start := t.offset
	end := min(start+visibleCount, len(tracks))

	lines := make([]string, 0, end-start+1)

	// Fixed overhead: "XX. " (4) + "▶ " (2) + icon (3) + duration (6)
	const overhead = 15

	for i := start; i < end; i++ {
		track := tracks[i]

		num := fmt.Sprintf("%2d.", i+1)
		name := truncate(track.Title, width-overhead)

		marker := "  "
		if track.ID == currentID {
			marker = styles.Playing.Render("▶ ")
		}

		if focused && i == t.selected {
			name = styles.Selected.Render(name)
		}

		line := fmt.Sprintf("%s %s%s %s %s",
			styles.Dim.Render(num),
			marker,
			styles.TagIcon(track.Tag),
			name,
			styles.Dim.Render(track.Duration))

		lines = append(lines, line)
	}

	if end < len(tracks) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 {
		return ""
	}
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
