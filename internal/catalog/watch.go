package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads the catalog at path whenever the file changes and hands
// the result to onChange. Editors often replace files by rename, so the
// parent directory is watched and events are filtered by name. Watch
// blocks until ctx is cancelled.
func Watch(ctx context.Context, path, mediaDir string, onChange func(*Catalog, error)) error {
	if path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(reloadDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher error", "error", err)

		case <-pending:
			pending = nil
			c, err := Load(path, mediaDir)
			if err != nil {
				slog.Warn("catalog reload failed", "path", path, "error", err)
			} else {
				slog.Info("catalog reloaded", "path", path, "tracks", len(c.Tracks), "cues", len(c.Cues))
			}
			onChange(c, err)
		}
	}
}
