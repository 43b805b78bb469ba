package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/bard/internal/playback"
	"github.com/tessro/bard/internal/tail"
	"github.com/tessro/bard/internal/tui/styles"
)

// Placeholder is shown when neither slot has anything loaded.
const Placeholder = "Now Playing"

// NowPlaying is the transport bar.
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap playback.Snapshot, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	panel := styles.Panel(focused)
	if snap.BattleActive {
		panel = styles.BattleBorder.Padding(0, 1)
	}
	panel = panel.Width(width).Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		n.renderTrack(snap, width-4),
	))
}

func (n *NowPlaying) renderTrack(snap playback.Snapshot, width int) string {
	label := Placeholder
	tag := ""
	if snap.HasLabel() {
		label = snap.Label.Title
		tag = snap.Label.Tag
	}

	icon := styles.StatusIcon(snap.IsPlaying)
	titleStyle := styles.Title.Width(max(width-4, 1))
	if snap.BattleActive {
		titleStyle = styles.Battle.Width(max(width-4, 1))
	}
	line := icon + " " + titleStyle.Render(label)

	sub := ""
	if tag != "" {
		sub = styles.Subtitle.Render(styles.TagIcon(tag) + " " + tag)
	}

	// Progress bar
	progressWidth := max(width-14, 10) // times on either side
	progress := fmt.Sprintf("%s %s %s",
		tail.FormatDuration(snap.CurrentTime),
		styles.ProgressBar(snap.Percent(), progressWidth),
		tail.FormatDuration(snap.Duration))

	vol := tail.VolumePercent(snap.Volume)
	volume := styles.Muted.Render(fmt.Sprintf("🔊 %s %d%%", styles.VolumeBar(vol, 10), vol))

	status := styles.Dim.Render(fmt.Sprintf("ambient: %s  battle: %s", snap.Ambient, snap.Battle))

	return lipgloss.JoinVertical(lipgloss.Left,
		line,
		"  "+sub,
		"",
		progress,
		"",
		volume,
		status,
	)
}
