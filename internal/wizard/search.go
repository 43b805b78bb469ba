package wizard

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/bard/internal/core"
)

// allTags is the first tab; it matches every track.
const allTags = "All"

// SearchModel is the bubbletea model for the track finder.
type SearchModel struct {
	input    textinput.Model
	tracks   []core.Track
	tags     []string
	tag      int
	results  []core.Track
	cursor   int
	selected *core.Track
	width    int
	height   int
}

// Styles
var (
	searchTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	searchTabStyle = lipgloss.NewStyle().
			Padding(0, 2)

	searchActiveTabStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(lipgloss.Color("205")).
				Foreground(lipgloss.Color("0"))

	searchResultStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	searchSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	searchSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewSearchModel creates a track finder over tracks. tags become the
// filter tabs after "All", in the order given.
func NewSearchModel(tracks []core.Track, tags []string) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by title or tag..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	m := SearchModel{
		input:  ti,
		tracks: tracks,
		tags:   append([]string{allTags}, tags...),
		width:  80,
		height: 20,
	}
	m.results = m.filter()
	return m
}

// Init initializes the model.
func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if len(m.results) > 0 && m.cursor < len(m.results) {
				t := m.results[m.cursor]
				m.selected = &t
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case "tab":
			m.tag = (m.tag + 1) % len(m.tags)
			m.refilter()
			return m, nil

		case "shift+tab":
			m.tag = (m.tag + len(m.tags) - 1) % len(m.tags)
			m.refilter()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
	}

	var cmd tea.Cmd
	prev := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.refilter()
	}
	return m, cmd
}

func (m *SearchModel) refilter() {
	m.results = m.filter()
	m.cursor = 0
}

func (m SearchModel) filter() []core.Track {
	query := strings.ToLower(strings.TrimSpace(m.input.Value()))
	tag := m.tags[m.tag]

	var out []core.Track
	for _, t := range m.tracks {
		if tag != allTags && !strings.EqualFold(t.Tag, tag) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Tag), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// View renders the model.
func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(searchTitleStyle.Render("🎵 Pick a Track"))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, tab := range m.tags {
		if i == m.tag {
			b.WriteString(searchActiveTabStyle.Render(tab))
		} else {
			b.WriteString(searchTabStyle.Render(tab))
		}
	}
	b.WriteString("\n\n")

	if len(m.results) == 0 {
		b.WriteString("No matching tracks")
		b.WriteString("\n")
	} else {
		maxResults := max(m.height-10, 5)
		for i, t := range m.results {
			if i >= maxResults {
				b.WriteString(searchSubtitleStyle.Render("  ...and more"))
				b.WriteString("\n")
				break
			}

			line := t.Title + " " + searchSubtitleStyle.Render(t.Tag+" · "+t.Duration)
			if i == m.cursor {
				b.WriteString(searchSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(searchResultStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(searchSubtitleStyle.Render("↑/↓ navigate • tab switch tag • enter select • esc quit"))

	return b.String()
}

// Selected returns the selected track, or nil if none.
func (m SearchModel) Selected() *core.Track {
	return m.selected
}

// RunSearch runs the track finder and returns the selected track.
func RunSearch(tracks []core.Track, tags []string) (*core.Track, error) {
	model := NewSearchModel(tracks, tags)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(SearchModel).Selected(), nil
}
