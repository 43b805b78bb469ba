package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/bard/internal/catalog"
	"github.com/tessro/bard/internal/logging"
	"github.com/tessro/bard/internal/tui"
)

var (
	tuiRefresh int
	tuiTheme   string
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track or cue, progress, volume
  • Tracks - the ambient soundtrack list
  • Combat Dock - one-shot battle cues
  • History - what played this session

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Find track
  Enter        Play selected track
  Space        Play/Pause
  ←/→          Seek 10s
  1-4          Combat cue
  w / l        Victory / defeat
  b            Battle music
  +/-          Volume up/down
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	addTUIFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func addTUIFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (default from config)")
	cmd.Flags().StringVar(&tuiTheme, "theme", "", "Color theme: auto, dark or light")
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	refreshRate := cfg.TUI.Refresh()
	if tuiRefresh > 0 {
		refreshRate = time.Duration(tuiRefresh) * time.Millisecond
	}
	theme := cfg.TUI.Theme
	if tuiTheme != "" {
		theme = tuiTheme
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	reloads := make(chan tui.Reload, 1)
	s.watchCatalog(ctx, func(c *catalog.Catalog, err error) {
		r := tui.Reload{Catalog: c, Err: err, At: time.Now()}
		select {
		case reloads <- r:
		default:
			// Replace a reload the dashboard has not picked up yet.
			select {
			case <-reloads:
			default:
			}
			reloads <- r
		}
	})

	return tui.Run(tui.Options{
		Player:      s.player,
		Catalog:     s.catalog,
		Changes:     s.changes,
		Reloads:     reloads,
		RefreshRate: refreshRate,
		Theme:       theme,
		Logger:      logging.Logger,
	})
}
