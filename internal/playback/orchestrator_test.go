package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/bard/internal/audio/audiotest"
	"github.com/tessro/bard/internal/catalog"
	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
	"github.com/tessro/bard/internal/sequencer"
)

var (
	mainTheme = core.Track{ID: "1", Title: "Main Theme", Tag: "Main", Source: "main.mp3"}
	castle    = core.Track{ID: "2", Title: "Castle Theme", Tag: "Town", Source: "castle.mp3"}
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Tracks: []core.Track{mainTheme, castle},
		Cues: []core.SoundCue{
			{ID: "attack", Label: "Attack", Source: "attack.wav", Volume: 0.5, Repeat: 1},
			{ID: "drums", Label: "Drums", Source: "drum.wav", Volume: 1, Repeat: 3, Delay: 200 * time.Millisecond},
			{ID: "hush", Label: "Hush", Source: "hush.wav", Volume: 0, Repeat: 1},
		},
		Battle: catalog.Battle{
			Fanfare: core.Step{Source: "win.mp3", Title: "Victory", Tag: "Battle"},
			Combat: []core.Step{
				{Source: "combat0.mp3", Title: "Combat 0", Tag: "Battle"},
				{Source: "combat1.mp3", Title: "Combat 1", Tag: "Battle"},
				{Source: "combat2.mp3", Title: "Combat 2", Tag: "Battle"},
				{Source: "combat3.mp3", Title: "Combat 3", Tag: "Battle"},
			},
		},
	}
}

// manualTimer is a scheduled callback fired explicitly by the test.
type manualTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) schedule(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// fire runs the i-th timer regardless of whether it was stopped, the way a
// timer that already fired before Stop would.
func (s *manualScheduler) fire(i int) {
	s.mu.Lock()
	t := s.timers[i]
	s.mu.Unlock()
	t.fn()
}

func (s *manualScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

type fixture struct {
	loader *audiotest.Loader
	sched  *manualScheduler
	o      *Orchestrator
}

func newFixture(t *testing.T, pick int) *fixture {
	t.Helper()
	f := &fixture{
		loader: audiotest.NewLoader(),
		sched:  &manualScheduler{},
	}
	seq := sequencer.New(testCatalog(), sequencer.WithPicker(func(int) int { return pick }))
	f.o = New(f.loader, seq, WithScheduler(f.sched.schedule))
	t.Cleanup(f.o.Close)
	return f
}

func (f *fixture) handle(t *testing.T, source string) *audiotest.Handle {
	t.Helper()
	hs := f.loader.HandlesFor(source)
	require.NotEmpty(t, hs, "no handle for %s", source)
	return hs[len(hs)-1]
}

func assertExclusive(t *testing.T, l *audiotest.Loader) {
	t.Helper()
	assert.LessOrEqual(t, len(l.Playing()), 1, "more than one handle playing")
}

func TestSelectAmbient_Plays(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))

	h := f.handle(t, "main.mp3")
	assert.True(t, h.IsPlaying())

	snap := f.o.Snapshot()
	assert.Equal(t, core.Label{Title: "Main Theme", Tag: "Main"}, snap.Label)
	assert.Equal(t, core.SlotAmbient, snap.Slot)
	assert.True(t, snap.IsPlaying)
	assert.False(t, snap.BattleActive)
	assert.Equal(t, "1", snap.TrackID)
	assert.Equal(t, audiotest.DefaultDuration, snap.Duration)
}

func TestSelectAmbient_ReplacesPrevious(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	first := f.handle(t, "main.mp3")
	require.NoError(t, f.o.SelectAmbient(ctx, castle))

	assert.True(t, first.Disposed())
	assert.True(t, f.handle(t, "castle.mp3").IsPlaying())
	assertExclusive(t, f.loader)
}

func TestSelectAmbient_CancelsBattle(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.TriggerBattleMusic(ctx))
	fanfare := f.handle(t, "win.mp3")

	require.NoError(t, f.o.SelectAmbient(ctx, castle))

	assert.True(t, fanfare.Disposed())
	snap := f.o.Snapshot()
	assert.False(t, snap.BattleActive)
	assert.Equal(t, core.SlotEmpty, snap.Battle)
	assert.Equal(t, "Castle Theme", snap.Label.Title)
	assert.Nil(t, f.o.Sequence())
}

func TestSelectAmbient_LoadFailure(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.loader.FailOn("castle.mp3", errors.New("decode error"))

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	err := f.o.SelectAmbient(ctx, castle)

	require.Error(t, err)
	assert.ErrorIs(t, err, berrors.ErrMediaLoad)
	assert.True(t, f.handle(t, "main.mp3").Disposed())

	snap := f.o.Snapshot()
	assert.Equal(t, core.SlotEmpty, snap.Ambient)
	assert.False(t, snap.HasLabel())
	assert.Empty(t, f.loader.Playing())
}

func TestStinger_PausesAmbientAndDoesNotResume(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	ambient := f.handle(t, "main.mp3")

	require.NoError(t, f.o.TriggerStinger(ctx, "attack"))
	stinger := f.handle(t, "attack.wav")

	assert.False(t, ambient.IsPlaying())
	assert.True(t, stinger.IsPlaying())
	assertExclusive(t, f.loader)

	snap := f.o.Snapshot()
	assert.Equal(t, core.Label{Title: "Attack", Tag: "Battle"}, snap.Label)
	assert.True(t, snap.BattleActive)
	assert.Equal(t, core.SlotPaused, snap.Ambient)

	stinger.End()

	assert.False(t, ambient.IsPlaying(), "ambient must not auto-resume")
	assert.True(t, stinger.Disposed())
	snap = f.o.Snapshot()
	assert.False(t, snap.BattleActive)
	assert.Equal(t, "Main Theme", snap.Label.Title)
	assert.False(t, snap.IsPlaying)
}

func TestStinger_UnknownCue(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))

	err := f.o.TriggerStinger(ctx, "nope")

	assert.ErrorIs(t, err, berrors.ErrCueNotFound)
	assert.True(t, f.handle(t, "main.mp3").IsPlaying(), "unknown cue changes nothing")
}

func TestStinger_ReplacesRunningStinger(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.TriggerStinger(ctx, "attack"))
	first := f.handle(t, "attack.wav")
	require.NoError(t, f.o.TriggerStinger(ctx, "attack"))

	hs := f.loader.HandlesFor("attack.wav")
	require.Len(t, hs, 2)
	assert.True(t, first.Disposed())
	assert.True(t, hs[1].IsPlaying())
	assertExclusive(t, f.loader)
}

func TestStinger_RepeatWithDelay(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.TriggerStinger(ctx, "drums"))
	require.Len(t, f.loader.HandlesFor("drum.wav"), 1)

	f.loader.HandlesFor("drum.wav")[0].End()

	// Between repeats: no handle, but the battle label is still shown.
	assert.Len(t, f.loader.HandlesFor("drum.wav"), 1)
	require.Equal(t, 1, f.sched.count())
	assert.Equal(t, 200*time.Millisecond, f.sched.timers[0].d)
	snap := f.o.Snapshot()
	assert.True(t, snap.BattleActive)
	assert.Equal(t, "Drums", snap.Label.Title)
	assert.False(t, snap.IsPlaying)

	f.sched.fire(0)
	hs := f.loader.HandlesFor("drum.wav")
	require.Len(t, hs, 2)
	assert.True(t, hs[1].IsPlaying())

	hs[1].End()
	f.sched.fire(1)
	hs = f.loader.HandlesFor("drum.wav")
	require.Len(t, hs, 3)

	hs[2].End()
	assert.Equal(t, 2, f.sched.count(), "terminal step schedules nothing")
	assert.False(t, f.o.Snapshot().BattleActive)
	assert.Empty(t, f.loader.Playing())
}

func TestStinger_StaleTimerIgnored(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.TriggerStinger(ctx, "drums"))
	f.loader.HandlesFor("drum.wav")[0].End()
	require.Equal(t, 1, f.sched.count())

	require.NoError(t, f.o.SelectAmbient(ctx, castle))
	assert.True(t, f.sched.timers[0].stopped)

	f.sched.fire(0)

	assert.Len(t, f.loader.HandlesFor("drum.wav"), 1, "cancelled run must not load")
	assert.True(t, f.handle(t, "castle.mp3").IsPlaying())
	assertExclusive(t, f.loader)
}

func TestBattleMusic_Composition(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.TriggerBattleMusic(ctx))

	fanfare := f.handle(t, "win.mp3")
	assert.True(t, fanfare.IsPlaying())
	assert.False(t, f.handle(t, "main.mp3").IsPlaying())

	seq := f.o.Sequence()
	require.NotNil(t, seq)
	require.Len(t, seq.Steps, 2)
	assert.Equal(t, "win.mp3", seq.Steps[0].Source)
	assert.Equal(t, "combat2.mp3", seq.Steps[1].Source)

	fanfare.End()

	combat := f.handle(t, "combat2.mp3")
	assert.True(t, combat.IsPlaying())
	assert.True(t, fanfare.Disposed())
	assertExclusive(t, f.loader)
	assert.Equal(t, "Combat 2", f.o.Snapshot().Label.Title)

	combat.End()

	snap := f.o.Snapshot()
	assert.False(t, snap.BattleActive)
	assert.Equal(t, "Main Theme", snap.Label.Title)
	assert.False(t, snap.IsPlaying)
	assert.Nil(t, f.o.Sequence())
}

func TestBattleMusic_ReentrancyGuard(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	require.NoError(t, f.o.TriggerBattleMusic(ctx))
	before := len(f.loader.Handles())

	err := f.o.TriggerBattleMusic(ctx)
	assert.ErrorIs(t, err, berrors.ErrSequenceAlreadyRunning)
	assert.Len(t, f.loader.Handles(), before, "no new handle while busy")

	f.handle(t, "win.mp3").End()
	err = f.o.TriggerBattleMusic(ctx)
	assert.ErrorIs(t, err, berrors.ErrSequenceAlreadyRunning, "combat step still running")

	f.handle(t, "combat1.mp3").End()
	assert.NoError(t, f.o.TriggerBattleMusic(ctx))
}

func TestBattleMusic_BlockedByStinger(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.TriggerStinger(ctx, "attack"))
	assert.ErrorIs(t, f.o.TriggerBattleMusic(ctx), berrors.ErrSequenceAlreadyRunning)
}

func TestBattleMusic_StepLoadFailureEndsRun(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	f.loader.FailOn("combat3.mp3", errors.New("missing"))

	require.NoError(t, f.o.TriggerBattleMusic(ctx))
	f.handle(t, "win.mp3").End()

	snap := f.o.Snapshot()
	assert.False(t, snap.BattleActive)
	assert.Equal(t, core.SlotEmpty, snap.Battle)
	assert.Empty(t, f.loader.Playing())
	assert.NoError(t, f.o.TriggerBattleMusic(ctx), "slot is free again")
}

func TestToggleAmbientPlay(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	assert.ErrorIs(t, f.o.ToggleAmbientPlay(), berrors.ErrSlotEmpty)

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	h := f.handle(t, "main.mp3")

	require.NoError(t, f.o.ToggleAmbientPlay())
	assert.False(t, h.IsPlaying())
	assert.Equal(t, core.SlotPaused, f.o.Snapshot().Ambient)

	require.NoError(t, f.o.ToggleAmbientPlay())
	assert.True(t, h.IsPlaying())
}

func TestToggleAmbientPlay_RefusedDuringBattle(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.TriggerBattleMusic(ctx))

	assert.ErrorIs(t, f.o.ToggleAmbientPlay(), berrors.ErrBattleActive)
	assert.False(t, f.handle(t, "main.mp3").IsPlaying())
	assertExclusive(t, f.loader)
}

func TestToggleBattlePlay(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	assert.ErrorIs(t, f.o.ToggleBattlePlay(), berrors.ErrSlotEmpty)

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.TriggerBattleMusic(ctx))
	fanfare := f.handle(t, "win.mp3")

	require.NoError(t, f.o.ToggleBattlePlay())
	assert.False(t, fanfare.IsPlaying())
	assert.False(t, f.handle(t, "main.mp3").IsPlaying(), "ambient stays paused")
	assert.True(t, f.o.Snapshot().BattleActive)

	require.NoError(t, f.o.TogglePlay())
	assert.True(t, fanfare.IsPlaying())
	assertExclusive(t, f.loader)
}

func TestSetVolume_MirrorsToAllHandles(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.TriggerBattleMusic(ctx))

	require.NoError(t, f.o.SetVolumePercent(30))

	assert.Equal(t, 0.30, f.o.Volume())
	assert.Equal(t, 0.30, f.handle(t, "main.mp3").Volume())
	assert.Equal(t, 0.30, f.handle(t, "win.mp3").Volume())
	assert.Equal(t, 0.30, f.o.Snapshot().Volume)
}

func TestSetVolume_AppliedToNewHandles(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SetVolume(0.4))
	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	assert.Equal(t, 0.4, f.handle(t, "main.mp3").Volume())

	// Cue gain scales the player volume.
	require.NoError(t, f.o.TriggerStinger(ctx, "attack"))
	assert.InDelta(t, 0.2, f.handle(t, "attack.wav").Volume(), 1e-9)
}

func TestSetVolume_MutedCueStaysSilent(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SetVolume(0.8))
	require.NoError(t, f.o.TriggerStinger(ctx, "hush"))

	h := f.handle(t, "hush.wav")
	assert.True(t, h.IsPlaying())
	assert.Zero(t, h.Volume())

	require.NoError(t, f.o.SetVolume(1))
	assert.Zero(t, h.Volume(), "master changes keep the cue muted")

	require.NoError(t, f.o.SeekActive(ctx, time.Second))
	assert.Zero(t, f.handle(t, "hush.wav").Volume(), "replacement handle keeps the cue gain")
}

func TestSetVolume_BattleMusicAtMasterVolume(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SetVolume(0.6))
	require.NoError(t, f.o.TriggerBattleMusic(ctx))
	assert.Equal(t, 0.6, f.handle(t, "win.mp3").Volume())

	f.handle(t, "win.mp3").End()
	assert.Equal(t, 0.6, f.handle(t, "combat0.mp3").Volume())
}

func TestSetVolume_Rejected(t *testing.T) {
	f := newFixture(t, 0)

	require.NoError(t, f.o.SetVolume(0.5))
	assert.ErrorIs(t, f.o.SetVolume(1.5), berrors.ErrInvalidVolume)
	assert.ErrorIs(t, f.o.SetVolume(-0.1), berrors.ErrInvalidVolume)
	assert.ErrorIs(t, f.o.SetVolumePercent(101), berrors.ErrInvalidVolume)
	assert.Equal(t, 0.5, f.o.Volume())
}

func TestSeek_WhilePlaying(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	old := f.handle(t, "main.mp3")

	require.NoError(t, f.o.Seek(ctx, core.SlotAmbient, 90*time.Second))

	hs := f.loader.HandlesFor("main.mp3")
	require.Len(t, hs, 2)
	assert.True(t, old.Disposed())
	assert.True(t, hs[1].IsPlaying())
	assert.Equal(t, []time.Duration{90 * time.Second}, hs[1].Seeks())
	assert.Equal(t, 90*time.Second, f.o.Snapshot().CurrentTime)
	assertExclusive(t, f.loader)
}

func TestSeek_WhilePausedStaysPaused(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.ToggleAmbientPlay())

	require.NoError(t, f.o.Seek(ctx, core.SlotAmbient, 30*time.Second))

	hs := f.loader.HandlesFor("main.mp3")
	require.Len(t, hs, 2)
	assert.False(t, hs[1].IsPlaying())
	assert.Zero(t, hs[1].Plays())
	snap := f.o.Snapshot()
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, 30*time.Second, snap.CurrentTime)
	assert.Equal(t, "Main Theme", snap.Label.Title)
}

func TestSeek_Clamped(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.loader.SetDuration("main.mp3", time.Minute)

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.Seek(ctx, core.SlotAmbient, 5*time.Minute))

	assert.Equal(t, time.Minute, f.o.Snapshot().CurrentTime)

	require.NoError(t, f.o.SeekBy(ctx, -2*time.Minute))
	assert.Zero(t, f.o.Snapshot().CurrentTime)
}

func TestSeek_EmptySlot(t *testing.T) {
	f := newFixture(t, 0)
	err := f.o.Seek(context.Background(), core.SlotBattle, time.Second)
	assert.ErrorIs(t, err, berrors.ErrSlotEmpty)
}

func TestSeek_LoadFailureEmptiesSlot(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	f.loader.FailOn("main.mp3", errors.New("gone"))

	err := f.o.Seek(ctx, core.SlotAmbient, 10*time.Second)
	assert.ErrorIs(t, err, berrors.ErrMediaLoad)
	assert.Equal(t, core.SlotEmpty, f.o.Snapshot().Ambient)
	assert.Empty(t, f.loader.Playing())
}

func TestTogglePlay_AmbientAfterBattleEnded(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.TriggerStinger(ctx, "attack"))
	f.handle(t, "attack.wav").End()
	require.False(t, f.o.Snapshot().BattleActive)

	ambient := f.handle(t, "main.mp3")
	require.False(t, ambient.IsPlaying())
	require.NoError(t, f.o.TogglePlay())
	assert.True(t, ambient.IsPlaying())
	assertExclusive(t, f.loader)
}

func TestTogglePlay_BetweenRepeats(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.TriggerStinger(ctx, "drums"))
	f.handle(t, "drum.wav").End()

	assert.ErrorIs(t, f.o.TogglePlay(), berrors.ErrSlotEmpty)
	assert.False(t, f.handle(t, "main.mp3").IsPlaying(), "ambient stays paused")
	assert.Equal(t, core.SlotLoading, f.o.Snapshot().Battle)
}

func TestSeekActive_BetweenRepeats(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.TriggerStinger(ctx, "drums"))
	f.handle(t, "drum.wav").End()
	require.True(t, f.o.Snapshot().BattleActive)

	assert.ErrorIs(t, f.o.SeekActive(ctx, 30*time.Second), berrors.ErrSlotEmpty)
	assert.ErrorIs(t, f.o.SeekBy(ctx, 10*time.Second), berrors.ErrSlotEmpty)

	hs := f.loader.HandlesFor("main.mp3")
	require.Len(t, hs, 1, "ambient must not be reloaded")
	assert.Empty(t, hs[0].Seeks())
	assert.False(t, hs[0].IsPlaying())

	// The run is untouched and resumes on schedule.
	f.sched.fire(0)
	assert.True(t, f.handle(t, "drum.wav").IsPlaying())
	assert.Equal(t, "Drums", f.o.Snapshot().Label.Title)
}

func TestSeekActive_PrefersBattle(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.TriggerBattleMusic(ctx))

	require.NoError(t, f.o.SeekActive(ctx, 15*time.Second))

	assert.Len(t, f.loader.HandlesFor("main.mp3"), 1)
	hs := f.loader.HandlesFor("win.mp3")
	require.Len(t, hs, 2)
	assert.True(t, hs[1].IsPlaying())
	assert.True(t, f.o.Snapshot().BattleActive)

	// The run continues on the replacement handle.
	hs[1].End()
	assert.True(t, f.handle(t, "combat0.mp3").IsPlaying())
}

func TestStaleEndAfterSeekIgnored(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	old := f.handle(t, "main.mp3")
	require.NoError(t, f.o.Seek(ctx, core.SlotAmbient, 10*time.Second))

	old.LateEnd()
	old.LateTick(2 * time.Minute)

	snap := f.o.Snapshot()
	assert.Equal(t, core.SlotPlaying, snap.Ambient, "stale end must not empty the slot")
	assert.Equal(t, 10*time.Second, snap.CurrentTime, "stale tick must not move the bar")
}

func TestStaleEndFromReplacedStingerIgnored(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.TriggerBattleMusic(ctx))
	fanfare := f.handle(t, "win.mp3")
	require.NoError(t, f.o.SelectAmbient(ctx, castle))
	require.NoError(t, f.o.TriggerStinger(ctx, "attack"))

	fanfare.LateEnd()

	assert.True(t, f.handle(t, "attack.wav").IsPlaying())
	assert.Empty(t, f.loader.HandlesFor("combat0.mp3"), "stale end must not advance")
}

func TestTimeUpdates(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	f.handle(t, "main.mp3").Tick(42 * time.Second)

	snap := f.o.Snapshot()
	assert.Equal(t, 42*time.Second, snap.CurrentTime)
	assert.InDelta(t, 42.0/180.0*100, snap.Percent(), 0.01)
}

func TestAmbientEndEmptiesSlot(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	f.handle(t, "main.mp3").End()

	snap := f.o.Snapshot()
	assert.Equal(t, core.SlotEmpty, snap.Ambient)
	assert.False(t, snap.HasLabel())
	_, ok := f.o.CurrentTrack()
	assert.False(t, ok)
}

func TestNotify(t *testing.T) {
	loader := audiotest.NewLoader()
	var mu sync.Mutex
	calls := 0
	o := New(loader, sequencer.New(testCatalog()), WithNotify(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	}))
	defer o.Close()

	require.NoError(t, o.SelectAmbient(context.Background(), mainTheme))
	loader.Last().Tick(time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestClose(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.o.SelectAmbient(ctx, mainTheme))
	require.NoError(t, f.o.TriggerStinger(ctx, "drums"))

	f.o.Close()

	for _, h := range f.loader.Handles() {
		assert.True(t, h.Disposed(), h.Source)
	}
	snap := f.o.Snapshot()
	assert.False(t, snap.HasLabel())
	assert.False(t, snap.BattleActive)
}

func TestExclusivity_RandomWalk(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	actions := []func(){
		func() { _ = f.o.SelectAmbient(ctx, mainTheme) },
		func() { _ = f.o.SelectAmbient(ctx, castle) },
		func() { _ = f.o.TriggerStinger(ctx, "attack") },
		func() { _ = f.o.TriggerStinger(ctx, "drums") },
		func() { _ = f.o.TriggerBattleMusic(ctx) },
		func() { _ = f.o.ToggleAmbientPlay() },
		func() { _ = f.o.ToggleBattlePlay() },
		func() { _ = f.o.SeekActive(ctx, 5*time.Second) },
		func() {
			if h := f.loader.Last(); h != nil {
				h.End()
			}
		},
		func() {
			if n := f.sched.count(); n > 0 {
				f.sched.fire(n - 1)
			}
		},
	}

	for i := range 500 {
		actions[(i*7+i/3)%len(actions)]()
		assertExclusive(t, f.loader)
	}
}
