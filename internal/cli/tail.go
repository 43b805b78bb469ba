package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/bard/internal/playback"
	"github.com/tessro/bard/internal/tail"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
	tailInterval  time.Duration
)

// addTailFlags registers the event output flags shared by headless
// playback commands.
func addTailFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	cmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	cmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom event template")
	cmd.Flags().DurationVarP(&tailInterval, "interval", "i", 0, "poll interval (default from config)")
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// follow prints playback events from the session until nothing is
// loaded or pending any more, or ctx is cancelled.
func follow(ctx context.Context, s *session) error {
	return followTo(ctx, os.Stdout, s, tailOptions())
}

type followOptions struct {
	formatter *tail.Formatter
	interval  time.Duration
	json      bool
}

func tailOptions() followOptions {
	interval := tailInterval
	if interval == 0 {
		interval = time.Duration(cfg.Tail.Interval) * time.Millisecond
	}
	return followOptions{
		formatter: tail.NewFormatter(
			tail.WithEmoji(!tailNoEmoji),
			tail.WithTimestamp(tailTimestamp),
			tail.WithTemplate(tailFormat),
		),
		interval: interval,
		json:     JSONOutput(),
	}
}

func idle(snap playback.Snapshot) bool {
	return !snap.HasLabel() && !snap.BattleActive
}

func followTo(ctx context.Context, w io.Writer, s *session, opts followOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := tail.NewWatcher(s.player, opts.interval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	// Once the player is idle, keep printing for a short while so events
	// from the final poll are not lost. A clip can also end before the
	// first poll, in which case no idle event ever arrives.
	var settle <-chan time.Time

	enc := json.NewEncoder(w)
	for {
		select {
		case <-s.changes:
			if settle == nil && idle(s.player.Snapshot()) {
				settle = time.After(5 * opts.interval)
			}

		case <-settle:
			return nil

		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if opts.json {
				if err := enc.Encode(event); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(w, opts.formatter.Format(event))
			}
			if event.Idle() {
				settle = time.After(opts.interval)
			}

		case err := <-errCh:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}
