package wizard

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/tessro/bard/internal/core"
)

// CueOptions builds picker options for cues, labelled with their repeat
// count when a cue plays more than once.
func CueOptions(cues []core.SoundCue) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(cues))
	for _, c := range cues {
		label := c.Label
		if label == "" {
			label = c.ID
		}
		if c.Repeat > 1 {
			label = fmt.Sprintf("%s (x%d)", label, c.Repeat)
		}
		options = append(options, huh.NewOption(label, c.ID))
	}
	return options
}

// RunCuePicker shows a select form and returns the chosen cue id.
func RunCuePicker(cues []core.SoundCue) (string, error) {
	var selectedID string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a cue").
				Description("Battle cues pause the ambient track").
				Options(CueOptions(cues)...).
				Value(&selectedID),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return selectedID, nil
}
