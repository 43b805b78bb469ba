package sequencer

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/bard/internal/catalog"
	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Cues: []core.SoundCue{
			{ID: "attack", Label: "Attack", Source: "attack.wav", Volume: 0.7, Repeat: 1},
			{ID: "drums", Label: "Drums", Source: "drum.wav", Volume: 0.5, Repeat: 3, Delay: 200 * time.Millisecond},
		},
		Battle: catalog.Battle{
			Fanfare: core.Step{Source: "win.mp3", Title: "Victory", Tag: "Battle"},
			Combat: []core.Step{
				{Source: "combat0.mp3", Title: "Combat 0"},
				{Source: "combat1.mp3", Title: "Combat 1"},
				{Source: "combat2.mp3", Title: "Combat 2"},
				{Source: "combat3.mp3", Title: "Combat 3"},
			},
		},
	}
}

func TestResolveCue_SingleShot(t *testing.T) {
	s := New(testCatalog())

	steps, err := s.ResolveCue("attack")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "attack.wav", steps[0].Source)
	assert.Equal(t, "Attack", steps[0].Title)
	assert.Equal(t, 0.7, steps[0].Volume)
	assert.True(t, steps[0].Terminal)
	assert.Zero(t, steps[0].Delay)
}

func TestResolveCue_RepeatExpansion(t *testing.T) {
	s := New(testCatalog())

	steps, err := s.ResolveCue("drums")
	require.NoError(t, err)
	require.Len(t, steps, 3)

	for i, step := range steps {
		assert.Equal(t, "drum.wav", step.Source, "step %d", i)
		assert.Equal(t, i == len(steps)-1, step.Terminal, "step %d", i)
	}
	assert.Zero(t, steps[0].Delay, "first repeat starts immediately")
	assert.Equal(t, 200*time.Millisecond, steps[1].Delay)
	assert.Equal(t, 200*time.Millisecond, steps[2].Delay)
}

func TestResolveCue_Unknown(t *testing.T) {
	s := New(testCatalog())

	_, err := s.ResolveCue("dance")
	assert.True(t, errors.Is(err, berrors.ErrCueNotFound))
}

func TestResolveBattleMusic_FixedPicker(t *testing.T) {
	s := New(testCatalog(), WithPicker(func(n int) int {
		assert.Equal(t, 4, n)
		return 2
	}))

	steps := s.ResolveBattleMusic()
	require.Len(t, steps, 2)
	assert.Equal(t, "win.mp3", steps[0].Source)
	assert.False(t, steps[0].Terminal)
	assert.Equal(t, "combat2.mp3", steps[1].Source)
	assert.True(t, steps[1].Terminal)
}

func TestResolveBattleMusic_FullGain(t *testing.T) {
	s := New(testCatalog(), WithPicker(func(int) int { return 0 }))

	for i, step := range s.ResolveBattleMusic() {
		assert.Equal(t, 1.0, step.Volume, "step %d", i)
	}
}

func TestResolveCue_MutedCueKeepsZeroVolume(t *testing.T) {
	c := testCatalog()
	c.Cues = append(c.Cues, core.SoundCue{ID: "hush", Label: "Hush", Source: "hush.wav", Volume: 0, Repeat: 1})
	s := New(c)

	steps, err := s.ResolveCue("hush")
	require.NoError(t, err)
	assert.Zero(t, steps[0].Volume)
}

func TestResolveBattleMusic_OutOfRangePickerFallsBack(t *testing.T) {
	s := New(testCatalog(), WithPicker(func(int) int { return 9 }))

	steps := s.ResolveBattleMusic()
	assert.Equal(t, "combat0.mp3", steps[1].Source)
}

func TestResolveBattleMusic_Uniform(t *testing.T) {
	s := New(testCatalog(), WithRand(rand.New(rand.NewPCG(1, 2))))

	counts := make(map[string]int)
	const runs = 4000
	for i := 0; i < runs; i++ {
		steps := s.ResolveBattleMusic()
		require.Equal(t, "win.mp3", steps[0].Source)
		counts[steps[1].Source]++
	}

	require.Len(t, counts, 4)
	for src, n := range counts {
		// Each entry expects 1000; allow a generous band.
		assert.InDelta(t, runs/4, n, 150, "source %s", src)
	}
}

func TestResolveBattleMusic_DoesNotMutatePool(t *testing.T) {
	s := New(testCatalog(), WithPicker(func(int) int { return 1 }))
	_ = s.ResolveBattleMusic()

	for _, step := range s.CombatPool() {
		assert.False(t, step.Terminal)
	}
}
