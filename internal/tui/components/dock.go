package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/bard/internal/core"
	"github.com/tessro/bard/internal/tui/styles"
)

// DockSize is how many cues get number keys.
const DockSize = 4

// Dock is the combat dock: the numbered stingers plus the battle controls.
type Dock struct {
	selected int
}

// NewDock creates a new Dock component
func NewDock() *Dock {
	return &Dock{}
}

// SelectNext selects the next cue
func (d *Dock) SelectNext(n int) {
	if d.selected < n-1 {
		d.selected++
	}
}

// SelectPrev selects the previous cue
func (d *Dock) SelectPrev() {
	if d.selected > 0 {
		d.selected--
	}
}

// Selected returns the selected cue index
func (d *Dock) Selected() int {
	return d.selected
}

// Render renders the dock panel
func (d *Dock) Render(cues []core.SoundCue, battleActive bool, width, height int, focused bool) string {
	title := styles.PanelTitle("Combat", focused)

	var content string
	if len(cues) == 0 {
		content = styles.Muted.Render("No cues in catalog")
	} else {
		content = d.renderCues(cues, height-6, focused)
	}

	battle := styles.Dim.Render("b battle music  w win  l lose")
	if battleActive {
		battle = styles.Battle.Render("⚔ battle in progress")
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
		"",
		battle,
	))
}

func (d *Dock) renderCues(cues []core.SoundCue, maxLines int, focused bool) string {
	if d.selected >= len(cues) {
		d.selected = len(cues) - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}

	lines := make([]string, 0, len(cues))

	for i, cue := range cues {
		selector := "  "
		if focused && i == d.selected {
			selector = "▸ "
		}

		key := "   "
		if i < DockSize {
			key = fmt.Sprintf("[%d]", i+1)
		}

		name := cue.Label
		if focused && i == d.selected {
			name = styles.Highlight.Render(name)
		}

		line := fmt.Sprintf("%s%s %s", selector, styles.Dim.Render(key), name)
		if cue.Repeat > 1 {
			line += styles.Dim.Render(fmt.Sprintf(" ×%d", cue.Repeat))
		}
		lines = append(lines, line)

		if len(lines) >= maxLines {
			break
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
