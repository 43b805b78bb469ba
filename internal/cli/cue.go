package cli

import (
	"github.com/spf13/cobra"

	berrors "github.com/tessro/bard/internal/errors"
	"github.com/tessro/bard/internal/wizard"
)

var cueVolume int

var cueCmd = &cobra.Command{
	Use:   "cue [id]",
	Short: "Play a sound cue",
	Long: `Play a sound cue such as a combat effect or a win/lose stinger, and
wait until it and any repeats have finished.
Without arguments, a picker is shown when running in a terminal.

Examples:
  bard cue attack
  bard cue win --volume 80`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCue,
}

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Play battle music",
	Long: `Play the victory fanfare followed by one randomly chosen combat track,
and wait until both have finished.`,
	Args: cobra.NoArgs,
	RunE: runBattle,
}

func init() {
	cueCmd.Flags().IntVar(&cueVolume, "volume", -1, "Volume 0-100 (default from config)")
	battleCmd.Flags().IntVar(&cueVolume, "volume", -1, "Volume 0-100 (default from config)")
	addTailFlags(cueCmd)
	addTailFlags(battleCmd)
	rootCmd.AddCommand(cueCmd)
	rootCmd.AddCommand(battleCmd)
}

func runCue(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var id string
	if wizard.NeedsArg(args) {
		id, err = wizard.NewInteractive(s.catalog).PromptCue()
		if err != nil {
			return err
		}
		if id == "" {
			return berrors.WithSuggestion(berrors.ErrCueNotFound, "Pass a cue id, or run 'bard cues'")
		}
	} else {
		id = args[0]
	}

	if cueVolume >= 0 {
		if err := s.player.SetVolumePercent(cueVolume); err != nil {
			return err
		}
	}
	if err := s.player.TriggerStinger(ctx, id); err != nil {
		return err
	}
	return follow(ctx, s)
}

func runBattle(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if cueVolume >= 0 {
		if err := s.player.SetVolumePercent(cueVolume); err != nil {
			return err
		}
	}
	if err := s.player.TriggerBattleMusic(ctx); err != nil {
		return err
	}
	return follow(ctx, s)
}
