package wizard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/bard/internal/core"
)

var testTracks = []core.Track{
	{ID: "1", Title: "Main Theme", Tag: "Main", Duration: "3:12"},
	{ID: "2", Title: "Castle Theme", Tag: "Town", Duration: "2:41"},
	{ID: "3", Title: "Dark Forest", Tag: "Dungeon", Duration: "4:05"},
}

func typeText(m SearchModel, s string) SearchModel {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(SearchModel)
	}
	return m
}

func key(m SearchModel, k tea.KeyType) (SearchModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(SearchModel), cmd
}

func TestSearchModel_Filter(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"theme", 2},
		{"CASTLE", 1},
		{"dungeon", 1},
		{"nothing", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			m := typeText(NewSearchModel(testTracks, []string{"Main", "Town", "Dungeon"}), tt.query)
			if len(m.results) != tt.want {
				t.Errorf("query %q: got %d results, want %d", tt.query, len(m.results), tt.want)
			}
		})
	}
}

func TestSearchModel_TagTabs(t *testing.T) {
	m := NewSearchModel(testTracks, []string{"Main", "Town", "Dungeon"})

	m, _ = key(m, tea.KeyTab)
	if len(m.results) != 1 || m.results[0].ID != "1" {
		t.Fatalf("Main tab: got %v", m.results)
	}

	m, _ = key(m, tea.KeyShiftTab)
	m, _ = key(m, tea.KeyShiftTab)
	if len(m.results) != 1 || m.results[0].ID != "3" {
		t.Fatalf("shift+tab should wrap to Dungeon, got %v", m.results)
	}
}

func TestSearchModel_Select(t *testing.T) {
	m := typeText(NewSearchModel(testTracks, nil), "theme")

	m, _ = key(m, tea.KeyDown)
	m, _ = key(m, tea.KeyDown) // clamped at the last result
	m, cmd := key(m, tea.KeyEnter)

	if cmd == nil {
		t.Fatal("enter should quit")
	}
	if m.Selected() == nil || m.Selected().ID != "2" {
		t.Errorf("Selected() = %v, want Castle Theme", m.Selected())
	}
}

func TestSearchModel_EnterWithoutResults(t *testing.T) {
	m := typeText(NewSearchModel(testTracks, nil), "zzz")

	m, cmd := key(m, tea.KeyEnter)
	if cmd != nil {
		t.Error("enter with no results should not quit")
	}
	if m.Selected() != nil {
		t.Error("nothing should be selected")
	}
}

func TestCueOptions(t *testing.T) {
	opts := CueOptions([]core.SoundCue{
		{ID: "attack", Label: "Attack", Repeat: 1},
		{ID: "drums", Label: "War Drums", Repeat: 3},
		{ID: "bare", Repeat: 1},
	})

	want := []string{"Attack", "War Drums (x3)", "bare"}
	if len(opts) != len(want) {
		t.Fatalf("got %d options, want %d", len(opts), len(want))
	}
	for i, o := range opts {
		if o.Key != want[i] {
			t.Errorf("option %d key = %q, want %q", i, o.Key, want[i])
		}
	}
	if opts[1].Value != "drums" {
		t.Errorf("option value = %q, want drums", opts[1].Value)
	}
}
