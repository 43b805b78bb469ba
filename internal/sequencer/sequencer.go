// Package sequencer turns catalog cues into ordered step lists for the
// battle slot.
package sequencer

import (
	"fmt"
	"math/rand/v2"

	"github.com/tessro/bard/internal/catalog"
	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
)

// Sequencer resolves stingers and the composite battle-music cue.
type Sequencer struct {
	cues    map[string]core.SoundCue
	fanfare core.Step
	combat  []core.Step
	pick    func(n int) int
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithRand draws combat tracks from r.
func WithRand(r *rand.Rand) Option {
	return func(s *Sequencer) {
		s.pick = r.IntN
	}
}

// WithPicker draws combat tracks with fn, which must return a value in
// [0, n).
func WithPicker(fn func(n int) int) Option {
	return func(s *Sequencer) {
		s.pick = fn
	}
}

// New creates a sequencer over the catalog's cues and battle pool.
func New(c *catalog.Catalog, opts ...Option) *Sequencer {
	s := &Sequencer{
		cues:    make(map[string]core.SoundCue, len(c.Cues)),
		fanfare: c.Battle.Fanfare,
		combat:  append([]core.Step(nil), c.Battle.Combat...),
		pick:    rand.IntN,
	}
	for _, cue := range c.Cues {
		s.cues[cue.ID] = cue
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveCue expands a cue into one step per repeat. Every repeat after the
// first waits for the cue's inter-repeat delay; the last step is terminal.
func (s *Sequencer) ResolveCue(id string) ([]core.Step, error) {
	cue, ok := s.cues[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", berrors.ErrCueNotFound, id)
	}

	repeat := max(cue.Repeat, 1)
	steps := make([]core.Step, repeat)
	for i := range steps {
		steps[i] = core.Step{
			Source: cue.Source,
			Title:  cue.Label,
			Tag:    "Battle",
			Volume: cue.Volume,
		}
		if i > 0 {
			steps[i].Delay = cue.Delay
		}
	}
	steps[repeat-1].Terminal = true
	return steps, nil
}

// ResolveBattleMusic returns the fanfare followed by one combat track drawn
// uniformly from the pool. Battle music always plays at the master volume.
func (s *Sequencer) ResolveBattleMusic() []core.Step {
	fanfare := s.fanfare
	fanfare.Volume = 1
	fanfare.Terminal = false
	if len(s.combat) == 0 {
		fanfare.Terminal = true
		return []core.Step{fanfare}
	}

	idx := s.pick(len(s.combat))
	if idx < 0 || idx >= len(s.combat) {
		idx = 0
	}
	combat := s.combat[idx]
	combat.Volume = 1
	combat.Terminal = true
	return []core.Step{fanfare, combat}
}

// CombatPool returns the configured combat steps.
func (s *Sequencer) CombatPool() []core.Step {
	return append([]core.Step(nil), s.combat...)
}
