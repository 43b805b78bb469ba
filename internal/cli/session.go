package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tessro/bard/internal/audio"
	"github.com/tessro/bard/internal/catalog"
	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
	"github.com/tessro/bard/internal/logging"
	"github.com/tessro/bard/internal/playback"
	"github.com/tessro/bard/internal/sequencer"
)

// session is one process-wide player: the catalog, the orchestrator and
// a channel that fires whenever the orchestrator state changes.
type session struct {
	catalog *catalog.Catalog
	player  *playback.Orchestrator
	changes chan struct{}
}

// loadCatalog reads the configured catalog, or the built-in one.
func loadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(cfg.Catalog.Path, cfg.Catalog.MediaDir)
}

// newLoader opens the configured audio backend. Without an output device
// it falls back to silent playback.
func newLoader() core.Loader {
	opts := []audio.Option{
		audio.WithSampleRate(cfg.Audio.SampleRate),
		audio.WithBufferSize(cfg.Audio.BufferSize()),
		audio.WithTickInterval(cfg.Audio.TickEvery()),
		audio.WithLogger(logging.Logger),
	}

	if cfg.Audio.Backend == "null" {
		return audio.NewNullLoader(opts...)
	}

	engine, err := audio.NewEngine(opts...)
	if err != nil {
		logging.Logger.Warn("audio device unavailable, playing silently", "error", err)
		if Verbose() || errors.Is(err, berrors.ErrNoAudioDevice) {
			fmt.Fprintf(os.Stderr, "Warning: %v; playing silently\n", err)
		}
		return audio.NewNullLoader(opts...)
	}
	return engine
}

// newSession wires a catalog to a fresh orchestrator.
func newSession() (*session, error) {
	c, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	s := &session{
		catalog: c,
		changes: make(chan struct{}, 1),
	}
	s.player = playback.New(newLoader(), sequencer.New(c),
		playback.WithLogger(logging.Logger),
		playback.WithVolume(float64(cfg.Defaults.Volume)/100),
		playback.WithNotify(s.notify),
	)
	return s, nil
}

// notify coalesces change signals; a pending one is enough.
func (s *session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// watchCatalog forwards catalog reloads to fn until ctx is done. It is a
// no-op for the built-in catalog or when watching is disabled.
func (s *session) watchCatalog(ctx context.Context, fn func(*catalog.Catalog, error)) {
	if s.catalog.Path == "" || !cfg.Catalog.Watch {
		return
	}
	go func() {
		if err := catalog.Watch(ctx, s.catalog.Path, cfg.Catalog.MediaDir, fn); err != nil && !errors.Is(err, context.Canceled) {
			logging.Logger.Warn("catalog watch stopped", "path", s.catalog.Path, "error", err)
		}
	}()
}

func (s *session) Close() {
	s.player.Close()
}
