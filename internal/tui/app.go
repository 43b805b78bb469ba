package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/bard/internal/catalog"
	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
	"github.com/tessro/bard/internal/playback"
	"github.com/tessro/bard/internal/sequencer"
	"github.com/tessro/bard/internal/tail"
	"github.com/tessro/bard/internal/tui/components"
	"github.com/tessro/bard/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelTracks Panel = iota
	PanelDock
	PanelHistory
	panelCount
)

const (
	seekStep    = 10 * time.Second
	volumeStep  = 5
	maxHistory  = 50
	errorTTL    = 5 * time.Second
	actionLimit = 10 * time.Second
)

// Cue ids bound to the win and lose keys.
const (
	CueWin  = "win"
	CueLose = "lose"
)

// Reload is a catalog hot-reload result.
type Reload struct {
	Catalog *catalog.Catalog
	Err     error
	At      time.Time
}

// Options wires the dashboard to a player.
type Options struct {
	Player      *playback.Orchestrator
	Catalog     *catalog.Catalog
	Changes     <-chan struct{} // player state changed; may be nil
	Reloads     <-chan Reload   // catalog reloads; may be nil
	RefreshRate time.Duration
	Theme       string
	Logger      *slog.Logger
}

// Model is the main TUI model
type Model struct {
	opts         Options
	player       *playback.Orchestrator
	catalog      *catalog.Catalog
	width        int
	height       int
	focusedPanel Panel

	// State
	snap    playback.Snapshot
	history []components.HistoryEntry

	// Components
	nowPlaying  *components.NowPlaying
	tracksView  *components.Tracks
	dockView    *components.Dock
	historyView *components.History
	help        help.Model

	// Overlays
	showHelp bool

	// Track finder
	showFilter   bool
	filterInput  textinput.Model
	matches      []core.Track
	filterCursor int

	// Error handling
	lastError   error
	errorExpiry time.Time

	reloadedAt time.Time
	reloadErr  error

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	if opts.RefreshRate <= 0 {
		opts.RefreshRate = 250 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "Track title or number..."
	ti.CharLimit = 60
	ti.Width = 40

	return Model{
		opts:        opts,
		player:      opts.Player,
		catalog:     opts.Catalog,
		nowPlaying:  components.NewNowPlaying(),
		tracksView:  components.NewTracks(),
		dockView:    components.NewDock(),
		historyView: components.NewHistory(),
		help:        help.New(),
		history:     make([]components.HistoryEntry, 0),
		filterInput: ti,
		snap:        opts.Player.Snapshot(),
	}
}

// Messages
type tickMsg time.Time
type changedMsg struct{}
type reloadMsg Reload
type actionMsg struct{ err error }

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.RefreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForChange() tea.Cmd {
	if m.opts.Changes == nil {
		return nil
	}
	ch := m.opts.Changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m Model) waitForReload() tea.Cmd {
	if m.opts.Reloads == nil {
		return nil
	}
	ch := m.opts.Reloads
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg(r)
	}
}

// do runs a player action off the UI goroutine.
func (m Model) do(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionLimit)
		defer cancel()
		return actionMsg{err: fn(ctx)}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForChange(), m.waitForReload())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, m.tick()

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case reloadMsg:
		m.applyReload(Reload(msg))
		return m, m.waitForReload()

	case actionMsg:
		if msg.err != nil && !errors.Is(msg.err, berrors.ErrSequenceAlreadyRunning) {
			m.lastError = msg.err
			m.errorExpiry = time.Now().Add(errorTTL)
		}
		m.refresh()
		return m, nil
	}

	// Forward other messages to textinput when the finder is open
	if m.showFilter {
		var inputCmd tea.Cmd
		m.filterInput, inputCmd = m.filterInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

// refresh pulls a new snapshot and records history on label changes.
func (m *Model) refresh() {
	if time.Now().After(m.errorExpiry) {
		m.lastError = nil
	}
	prev := m.snap
	m.snap = m.player.Snapshot()
	if m.snap.HasLabel() && (m.snap.Label != prev.Label || m.snap.Slot != prev.Slot) {
		m.addToHistory(m.snap)
	}
}

func (m *Model) applyReload(r Reload) {
	if r.Err != nil {
		m.reloadErr = r.Err
		m.opts.Logger.Warn("catalog reload rejected", "error", r.Err)
		return
	}
	m.reloadErr = nil
	m.reloadedAt = r.At
	m.catalog = r.Catalog
	m.player.UseSequencer(sequencer.New(r.Catalog))
	m.opts.Logger.Info("catalog reloaded", "tracks", len(r.Catalog.Tracks), "cues", len(r.Catalog.Cues))
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	// Finder overlay
	if m.showFilter {
		return m.handleFilterKeyPress(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, keys.Filter):
		m.showFilter = true
		m.filterInput.SetValue("")
		m.filterInput.Focus()
		m.matches = m.filterTracks("")
		m.filterCursor = 0
		return m, textinput.Blink

	case key.Matches(msg, keys.NextPanel):
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case key.Matches(msg, keys.PrevPanel):
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	// Playback controls
	switch {
	case key.Matches(msg, keys.PlayPause):
		return m, m.do(func(context.Context) error { return m.player.TogglePlay() })
	case key.Matches(msg, keys.SeekBack):
		return m, m.seek(-seekStep)
	case key.Matches(msg, keys.SeekFwd):
		return m, m.seek(seekStep)
	case key.Matches(msg, keys.VolumeUp):
		return m, m.volume(volumeStep)
	case key.Matches(msg, keys.VolumeDown):
		return m, m.volume(-volumeStep)
	case key.Matches(msg, keys.Dock):
		idx := int(msg.String()[0] - '1')
		return m, m.triggerDock(idx)
	case key.Matches(msg, keys.Win):
		return m, m.stinger(CueWin)
	case key.Matches(msg, keys.Lose):
		return m, m.stinger(CueLose)
	case key.Matches(msg, keys.Battle):
		return m, m.do(m.player.TriggerBattleMusic)
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelTracks:
		switch {
		case key.Matches(msg, keys.Down):
			m.tracksView.SelectNext(len(m.catalog.Tracks))
		case key.Matches(msg, keys.Up):
			m.tracksView.SelectPrev()
		case key.Matches(msg, keys.Select):
			if i := m.tracksView.Selected(); i >= 0 && i < len(m.catalog.Tracks) {
				return m, m.selectTrack(m.catalog.Tracks[i])
			}
		}
	case PanelDock:
		cues := m.dockCues()
		switch {
		case key.Matches(msg, keys.Down):
			m.dockView.SelectNext(len(cues))
		case key.Matches(msg, keys.Up):
			m.dockView.SelectPrev()
		case key.Matches(msg, keys.Select):
			if i := m.dockView.Selected(); i >= 0 && i < len(cues) {
				return m, m.stinger(cues[i].ID)
			}
		}
	}

	return m, nil
}

func (m Model) handleFilterKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showFilter = false
		m.filterInput.Blur()
		return m, nil

	case "enter":
		if m.filterCursor < len(m.matches) {
			track := m.matches[m.filterCursor]
			m.showFilter = false
			m.filterInput.Blur()
			return m, m.selectTrack(track)
		}
		return m, nil

	case "up", "ctrl+p":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.filterCursor < len(m.matches)-1 {
			m.filterCursor++
		}
		return m, nil
	}

	var inputCmd tea.Cmd
	m.filterInput, inputCmd = m.filterInput.Update(msg)
	m.matches = m.filterTracks(m.filterInput.Value())
	m.filterCursor = min(m.filterCursor, max(len(m.matches)-1, 0))
	return m, inputCmd
}

// filterTracks matches by id or case-insensitive title substring.
func (m Model) filterTracks(query string) []core.Track {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]core.Track(nil), m.catalog.Tracks...)
	}
	var out []core.Track
	for _, t := range m.catalog.Tracks {
		if t.ID == q || strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, t)
		}
	}
	return out
}

// dockCues returns the combat dock cues: every cue except win and lose.
func (m Model) dockCues() []core.SoundCue {
	var out []core.SoundCue
	for _, c := range m.catalog.Cues {
		if c.ID == CueWin || c.ID == CueLose {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (m Model) selectTrack(t core.Track) tea.Cmd {
	return m.do(func(ctx context.Context) error {
		return m.player.SelectAmbient(ctx, t)
	})
}

func (m Model) stinger(id string) tea.Cmd {
	return m.do(func(ctx context.Context) error {
		return m.player.TriggerStinger(ctx, id)
	})
}

func (m Model) triggerDock(idx int) tea.Cmd {
	cues := m.dockCues()
	if idx < 0 || idx >= len(cues) || idx >= components.DockSize {
		return nil
	}
	return m.stinger(cues[idx].ID)
}

func (m Model) seek(delta time.Duration) tea.Cmd {
	return m.do(func(ctx context.Context) error {
		err := m.player.SeekBy(ctx, delta)
		if errors.Is(err, berrors.ErrSlotEmpty) {
			return nil
		}
		return err
	})
}

func (m Model) volume(delta int) tea.Cmd {
	percent := min(max(tail.VolumePercent(m.snap.Volume)+delta, 0), 100)
	return m.do(func(context.Context) error {
		return m.player.SetVolumePercent(percent)
	})
}

func (m *Model) addToHistory(snap playback.Snapshot) {
	entry := components.HistoryEntry{
		Label:    snap.Label,
		Battle:   snap.BattleActive,
		PlayedAt: time.Now(),
	}

	// Add to front, keep max entries
	m.history = append([]components.HistoryEntry{entry}, m.history...)
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showFilter {
		return m.renderFilter()
	}

	// Main layout: two columns
	// Left: Now Playing (top), Tracks (bottom)
	// Right: Combat dock (top), History (bottom)

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 2

	nowPlaying := m.nowPlaying.Render(m.snap, leftWidth-2, topHeight-2, false)
	tracksView := m.tracksView.Render(m.catalog.Tracks, m.snap.TrackID, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelTracks)
	dockView := m.dockView.Render(m.dockCues(), m.snap.BattleActive, rightWidth-2, topHeight-2, m.focusedPanel == PanelDock)
	historyView := m.historyView.Render(m.history, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelHistory)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, tracksView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, dockView, historyView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := m.help.ShortHelpView(keys.ShortHelp())

	switch {
	case m.lastError != nil:
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
	case m.reloadErr != nil:
		status = styles.Paused.Render("Catalog not reloaded: " + m.reloadErr.Error())
	case !m.reloadedAt.IsZero():
		status += styles.Dim.Render("  •  catalog reloaded " + humanize.Time(m.reloadedAt))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := styles.Highlight.Render("Bard - Keyboard Shortcuts")
	body := m.help.FullHelpView(keys.FullHelp())
	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		body,
		"",
		styles.Dim.Render("Press ? or Esc to close"),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Padding(1, 2).Render(content))
}

func (m Model) renderFilter() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Find track"))
	b.WriteString("\n\n")
	b.WriteString(m.filterInput.View())
	b.WriteString("\n\n")

	if len(m.matches) == 0 {
		b.WriteString(styles.Muted.Render("No matching tracks"))
	} else {
		const maxResults = 10
		for i, t := range m.matches {
			if i >= maxResults {
				b.WriteString(styles.Dim.Render(fmt.Sprintf("  ...and %d more", len(m.matches)-maxResults)))
				break
			}
			line := fmt.Sprintf("%s %s %s", styles.TagIcon(t.Tag), t.Title, styles.Dim.Render(t.Duration))
			if i == m.filterCursor {
				b.WriteString(styles.Selected.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("↑/↓:nav  Enter:play  Esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI application
func Run(opts Options) error {
	styles.ApplyTheme(opts.Theme)

	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
