package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
	"github.com/tessro/bard/internal/wizard"
)

var (
	playVolume int
	playStart  time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play [track]",
	Short: "Play an ambient track",
	Long: `Play an ambient track from the catalog and print playback events
until it finishes. The track is matched by id, then by title.
Without arguments, a picker is shown when running in a terminal.

Examples:
  bard play                  # Pick a track interactively
  bard play 3                # Play track with id 3
  bard play "castle theme"   # Play by title
  bard play forest --start 1m --volume 40`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playVolume, "volume", -1, "Volume 0-100 (default from config)")
	playCmd.Flags().DurationVar(&playStart, "start", 0, "Start offset, e.g. 1m30s")
	addTailFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	query := strings.Join(args, " ")
	if wizard.NeedsArg(args) {
		query, err = wizard.NewInteractive(s.catalog).PromptTrack()
		if err != nil {
			return err
		}
		if query == "" {
			return berrors.WithSuggestion(berrors.ErrTrackNotFound, "Pass a track id or title, or run 'bard tracks'")
		}
	}

	track, err := s.catalog.FindTrack(query)
	if err != nil {
		return err
	}

	if playVolume >= 0 {
		if err := s.player.SetVolumePercent(playVolume); err != nil {
			return err
		}
	}
	if err := s.player.SelectAmbient(ctx, track); err != nil {
		return err
	}
	if playStart > 0 {
		if err := s.player.Seek(ctx, core.SlotAmbient, playStart); err != nil {
			return err
		}
	}

	return follow(ctx, s)
}
