package wizard

import (
	"os"

	"golang.org/x/term"

	"github.com/tessro/bard/internal/catalog"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
	catalog *catalog.Catalog
}

// NewInteractive creates a new interactive handler for c.
func NewInteractive(c *catalog.Catalog) *Interactive {
	return &Interactive{
		enabled: true,
		catalog: c,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && i.catalog != nil && IsTerminal()
}

// PromptTrack launches the track finder if interactive mode is available.
// Returns the selected track id, or "" if cancelled or not interactive.
func (i *Interactive) PromptTrack() (string, error) {
	if !i.CanInteract() || len(i.catalog.Tracks) == 0 {
		return "", nil
	}
	t, err := RunSearch(i.catalog.Tracks, i.catalog.Tags())
	if err != nil || t == nil {
		return "", err
	}
	return t.ID, nil
}

// PromptCue launches the cue picker if interactive mode is available.
// Returns the selected cue id, or "" if not interactive.
func (i *Interactive) PromptCue() (string, error) {
	if !i.CanInteract() || len(i.catalog.Cues) == 0 {
		return "", nil
	}
	return RunCuePicker(i.catalog.Cues)
}

// NeedsArg returns true if a positional argument is required but missing.
func NeedsArg(args []string) bool {
	return len(args) == 0
}
