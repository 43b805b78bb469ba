package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	Filter     key.Binding
	NextPanel  key.Binding
	PrevPanel  key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	PlayPause  key.Binding
	SeekBack   key.Binding
	SeekFwd    key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Dock       key.Binding
	Win        key.Binding
	Lose       key.Binding
	Battle     key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find track")),
	NextPanel:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
	PrevPanel:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous panel")),
	Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
	PlayPause:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	SeekBack:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back 10s")),
	SeekFwd:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "forward 10s")),
	VolumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
	VolumeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
	Dock:       key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "combat cue")),
	Win:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "victory")),
	Lose:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "defeat")),
	Battle:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "battle music")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help, k.PlayPause, k.Dock, k.Battle, k.Win, k.Lose, k.VolumeUp, k.VolumeDown}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Help, k.Filter, k.NextPanel, k.PrevPanel},
		{k.PlayPause, k.SeekBack, k.SeekFwd, k.VolumeUp, k.VolumeDown},
		{k.Dock, k.Battle, k.Win, k.Lose},
		{k.Up, k.Down, k.Select},
	}
}
