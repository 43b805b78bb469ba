// Package playback owns the ambient and battle playback slots and enforces
// the hand-off rules between them.
package playback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
	"github.com/tessro/bard/internal/progress"
	"github.com/tessro/bard/internal/sequencer"
)

// Timer is the part of *time.Timer the orchestrator needs.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler func(d time.Duration, fn func()) Timer

// Snapshot is the presentation-ready view of the player.
type Snapshot struct {
	Label        core.Label     `json:"label"`
	Slot         core.SlotKind  `json:"slot,omitempty"`
	CurrentTime  time.Duration  `json:"current_time"`
	Duration     time.Duration  `json:"duration"`
	IsPlaying    bool           `json:"is_playing"`
	BattleActive bool           `json:"battle_active"`
	Volume       float64        `json:"volume"`
	Ambient      core.SlotState `json:"ambient_state"`
	Battle       core.SlotState `json:"battle_state"`
	TrackID      string         `json:"track_id,omitempty"`
}

// HasLabel returns true if something is loaded or pending in either slot.
func (s Snapshot) HasLabel() bool {
	return !s.Label.IsZero()
}

// Percent returns playback progress as 0-100.
func (s Snapshot) Percent() float64 {
	return progress.Snapshot{CurrentTime: s.CurrentTime, Duration: s.Duration}.Percent()
}

// Orchestrator is the two-slot playback state machine. Every transition
// runs under one mutex; handle notifications re-enter through the same
// lock and are dropped unless they come from the handle that currently
// owns the slot.
//
// Loader.Load is called with the mutex held, so Snapshot polls and handle
// callbacks wait while a file is opened and its decoder set up. Samples are
// decoded later by the output device, outside the lock.
type Orchestrator struct {
	mu sync.Mutex

	loader    core.Loader
	sequencer *sequencer.Sequencer
	logger    *slog.Logger
	schedule  Scheduler
	onChange  func()

	ctx    context.Context
	cancel context.CancelFunc

	volume  float64
	ambient slot
	battle  slot
	track   *core.Track
	run     *run
	gen     uint64
}

// run is one execution of a battle-slot step list.
type run struct {
	gen     uint64
	seq     *core.Sequence
	timer   Timer
	delayed bool // the current step's delay has already elapsed
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for transitions and media failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithScheduler replaces time.AfterFunc for inter-repeat delays.
func WithScheduler(s Scheduler) Option {
	return func(o *Orchestrator) {
		o.schedule = s
	}
}

// WithNotify registers fn to be called after every state change. It is
// called without the orchestrator lock held.
func WithNotify(fn func()) Option {
	return func(o *Orchestrator) {
		o.onChange = fn
	}
}

// WithVolume sets the initial volume (0..1).
func WithVolume(v float64) Option {
	return func(o *Orchestrator) {
		if validVolume(v) {
			o.volume = v
		}
	}
}

// New creates an orchestrator with both slots empty.
func New(loader core.Loader, seq *sequencer.Sequencer, opts ...Option) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		loader:    loader,
		sequencer: seq,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		schedule: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
		ctx:     ctx,
		cancel:  cancel,
		volume:  1,
		ambient: slot{kind: core.SlotAmbient},
		battle:  slot{kind: core.SlotBattle},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// unlock releases the lock and then notifies the listener.
func (o *Orchestrator) unlock() {
	fn := o.onChange
	o.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SelectAmbient stops any battle playback, replaces the ambient handle and
// starts playing track. On a load failure the ambient slot stays empty.
func (o *Orchestrator) SelectAmbient(ctx context.Context, track core.Track) error {
	o.mu.Lock()
	defer o.unlock()

	o.cancelRun()
	o.battle.release()
	o.ambient.release()
	o.track = nil

	o.ambient.state = core.SlotLoading
	h, err := o.loader.Load(ctx, track.Source)
	if err != nil {
		o.ambient.release()
		o.logger.Warn("ambient load failed", "track_id", track.ID, "source", track.Source, "error", err)
		return err
	}

	o.install(&o.ambient, h, track.Label(), track.Source, 1)
	o.ambient.play()
	o.track = &track
	o.logger.Info("ambient selected", "track_id", track.ID, "title", track.Title, "handle", h.ID())
	return nil
}

// ToggleAmbientPlay flips the ambient slot between playing and paused. It
// is refused while the battle slot is in use.
func (o *Orchestrator) ToggleAmbientPlay() error {
	o.mu.Lock()
	defer o.unlock()

	return o.toggleAmbient()
}

func (o *Orchestrator) toggleAmbient() error {
	if o.ambient.handle == nil {
		return fmt.Errorf("ambient: %w", berrors.ErrSlotEmpty)
	}
	if o.battleActive() {
		return berrors.ErrBattleActive
	}
	o.ambient.toggle()
	o.logger.Debug("ambient toggled", "state", o.ambient.state.String())
	return nil
}

// ToggleBattlePlay flips the battle slot between playing and paused. The
// ambient slot stays paused either way.
func (o *Orchestrator) ToggleBattlePlay() error {
	o.mu.Lock()
	defer o.unlock()

	return o.toggleBattle()
}

func (o *Orchestrator) toggleBattle() error {
	if o.battle.handle == nil {
		return fmt.Errorf("battle: %w", berrors.ErrSlotEmpty)
	}
	o.battle.toggle()
	o.logger.Debug("battle toggled", "state", o.battle.state.String())
	return nil
}

// TogglePlay toggles whichever slot the transport bar is showing. While a
// battle run waits between repeats there is nothing to toggle and it
// returns ErrSlotEmpty.
func (o *Orchestrator) TogglePlay() error {
	o.mu.Lock()
	defer o.unlock()

	if o.battleActive() {
		return o.toggleBattle()
	}
	return o.toggleAmbient()
}

// TriggerStinger pauses ambient playback, cancels whatever runs in the
// battle slot and plays the cue. Ambient playback is not resumed when the
// stinger ends.
func (o *Orchestrator) TriggerStinger(ctx context.Context, cueID string) error {
	o.mu.Lock()
	defer o.unlock()

	steps, err := o.sequencer.ResolveCue(cueID)
	if err != nil {
		return err
	}

	o.ambient.pause()
	o.cancelRun()
	o.battle.release()

	o.logger.Info("stinger triggered", "cue", cueID, "steps", len(steps))
	return o.startRun(ctx, steps)
}

// TriggerBattleMusic plays the fanfare followed by a random combat track.
// While the battle slot is busy it returns ErrSequenceAlreadyRunning and
// changes nothing; callers are expected to ignore that error.
func (o *Orchestrator) TriggerBattleMusic(ctx context.Context) error {
	o.mu.Lock()
	defer o.unlock()

	if o.battleActive() {
		return berrors.ErrSequenceAlreadyRunning
	}

	steps := o.sequencer.ResolveBattleMusic()
	o.ambient.pause()

	o.logger.Info("battle music triggered", "combat", steps[len(steps)-1].Source)
	return o.startRun(ctx, steps)
}

// SetVolume stores v and pushes it to every live handle. Values outside
// 0..1 are rejected and the previous volume is kept.
func (o *Orchestrator) SetVolume(v float64) error {
	if !validVolume(v) {
		return fmt.Errorf("%w: %v", berrors.ErrInvalidVolume, v)
	}

	o.mu.Lock()
	defer o.unlock()

	o.volume = v
	o.ambient.applyVolume(v)
	o.battle.applyVolume(v)
	return nil
}

// SetVolumePercent is SetVolume for a 0-100 UI scale.
func (o *Orchestrator) SetVolumePercent(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: %d%%", berrors.ErrInvalidVolume, percent)
	}
	return o.SetVolume(float64(percent) / 100)
}

// Volume returns the current volume (0..1).
func (o *Orchestrator) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// Seek repositions the given slot by replacing its handle with a fresh one
// at offset. The slot keeps its playing or paused state. If the
// replacement cannot be loaded the slot is emptied.
func (o *Orchestrator) Seek(ctx context.Context, kind core.SlotKind, offset time.Duration) error {
	o.mu.Lock()
	defer o.unlock()

	return o.seek(ctx, o.slot(kind), offset)
}

// SeekActive seeks the slot the transport bar is showing. During the delay
// between two repeats of a cue that is the battle slot, which has no handle
// yet, so it returns ErrSlotEmpty and the paused ambient track stays put.
func (o *Orchestrator) SeekActive(ctx context.Context, offset time.Duration) error {
	o.mu.Lock()
	defer o.unlock()

	return o.seek(ctx, o.activeSlot(), offset)
}

// SeekBy moves the active slot relative to its current position.
func (o *Orchestrator) SeekBy(ctx context.Context, delta time.Duration) error {
	o.mu.Lock()
	defer o.unlock()

	s := o.activeSlot()
	if s.handle == nil {
		return fmt.Errorf("%s: %w", s.kind, berrors.ErrSlotEmpty)
	}
	return o.seek(ctx, s, s.tracker.Snapshot().CurrentTime+delta)
}

func (o *Orchestrator) seek(ctx context.Context, s *slot, offset time.Duration) error {
	if s.handle == nil {
		return fmt.Errorf("%s: %w", s.kind, berrors.ErrSlotEmpty)
	}

	wasPlaying := s.state == core.SlotPlaying
	h, err := progress.Reposition(ctx, o.loader, s.source, offset, o.volume*s.gain)
	if err != nil {
		o.logger.Warn("seek reload failed", "slot", s.kind, "source", s.source, "error", err)
		o.releaseSlot(s)
		return err
	}

	// The old handle goes silent before the replacement makes a sound.
	s.detach()
	o.install(s, h, s.label, s.source, s.gain)
	if wasPlaying {
		s.play()
	}
	o.logger.Debug("seek", "slot", s.kind, "offset", offset, "handle", h.ID())
	return nil
}

// Snapshot returns the transport view. The battle slot takes priority
// whenever it holds a handle or a pending step.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		Volume:       o.volume,
		BattleActive: o.battleActive(),
		Ambient:      o.ambient.state,
		Battle:       o.battle.state,
	}
	if o.track != nil {
		snap.TrackID = o.track.ID
	}

	var active *slot
	switch {
	case snap.BattleActive:
		active = &o.battle
	case o.ambient.handle != nil:
		active = &o.ambient
	default:
		return snap
	}

	pos := active.tracker.Snapshot()
	snap.Slot = active.kind
	snap.Label = active.label
	snap.CurrentTime = pos.CurrentTime
	snap.Duration = pos.Duration
	snap.IsPlaying = active.state == core.SlotPlaying
	return snap
}

// CurrentTrack returns the track loaded in the ambient slot.
func (o *Orchestrator) CurrentTrack() (core.Track, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.track == nil {
		return core.Track{}, false
	}
	return *o.track, true
}

// Sequence returns a copy of the running battle-slot sequence, or nil.
func (o *Orchestrator) Sequence() *core.Sequence {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.run == nil {
		return nil
	}
	return &core.Sequence{
		Steps:        append([]core.Step(nil), o.run.seq.Steps...),
		CurrentIndex: o.run.seq.CurrentIndex,
	}
}

// UseSequencer swaps the cue resolver, for example after the catalog was
// reloaded. A run already in progress keeps its steps.
func (o *Orchestrator) UseSequencer(seq *sequencer.Sequencer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sequencer = seq
}

// Close releases both slots and cancels pending work.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.unlock()

	o.cancelRun()
	o.battle.release()
	o.ambient.release()
	o.track = nil
	o.cancel()
}

// battleActive reports whether the battle slot holds a handle or a run is
// waiting between steps.
func (o *Orchestrator) battleActive() bool {
	return o.battle.handle != nil || o.run != nil
}

// activeSlot returns the slot Snapshot reports on.
func (o *Orchestrator) activeSlot() *slot {
	if o.battleActive() {
		return &o.battle
	}
	return &o.ambient
}

func (o *Orchestrator) slot(kind core.SlotKind) *slot {
	if kind == core.SlotBattle {
		return &o.battle
	}
	return &o.ambient
}

func (o *Orchestrator) releaseSlot(s *slot) {
	if s.kind == core.SlotBattle {
		o.cancelRun()
	} else {
		o.track = nil
	}
	s.release()
}

// install attaches h to s, replacing any previous handle. The previous
// handle is disposed only after h owns the slot.
func (o *Orchestrator) install(s *slot, h core.Handle, label core.Label, source string, gain float64) {
	kind := s.kind
	h.OnEnded(func(id core.HandleID) {
		o.handleEnded(kind, id)
	})
	h.OnTimeUpdate(func(id core.HandleID, t time.Duration) {
		o.handleTimeUpdate(kind, id, t)
	})
	h.SetVolume(o.volume * gain)

	prev := s.handle
	s.handle = h
	s.label = label
	s.source = source
	s.gain = gain
	s.state = core.SlotPaused
	s.tracker.Observe(h)

	if prev != nil && prev != h {
		disposeHandle(prev)
	}
}

func (o *Orchestrator) handleTimeUpdate(kind core.SlotKind, id core.HandleID, t time.Duration) {
	o.mu.Lock()
	s := o.slot(kind)
	if s.handle == nil || s.handle.ID() != id {
		o.mu.Unlock()
		return
	}
	if s.tracker.Update(id, t) && s.tracker.Snapshot().Duration == 0 {
		s.tracker.SetDuration(id, s.handle.Duration())
	}
	o.unlock()
}

func (o *Orchestrator) handleEnded(kind core.SlotKind, id core.HandleID) {
	o.mu.Lock()
	defer o.unlock()

	s := o.slot(kind)
	if s.handle == nil || s.handle.ID() != id {
		o.logger.Debug("dropped stale end-of-media", "slot", kind, "handle", id)
		return
	}

	if kind == core.SlotAmbient {
		o.logger.Info("ambient ended", "handle", id)
		o.ambient.release()
		o.track = nil
		return
	}

	r := o.run
	if r == nil {
		o.battle.release()
		return
	}
	if r.seq.Advance() == nil {
		o.logger.Info("battle sequence finished", "steps", r.seq.Len())
		o.cancelRun()
		o.battle.release()
		return
	}
	r.delayed = false
	if err := o.startStep(o.ctx, r); err != nil {
		o.logger.Warn("battle step failed", "error", err)
	}
}

// startRun installs steps as the active battle run and starts step one.
func (o *Orchestrator) startRun(ctx context.Context, steps []core.Step) error {
	o.gen++
	r := &run{gen: o.gen, seq: core.NewSequence(steps)}
	o.run = r
	return o.startStep(ctx, r)
}

// startStep plays the run's current step, or schedules it if the step has
// a delay that has not elapsed yet. An ended handle still in the slot is
// replaced, not emptied first, so the slot never reports playing without a
// handle.
func (o *Orchestrator) startStep(ctx context.Context, r *run) error {
	step := r.seq.Current()
	if step == nil {
		o.cancelRun()
		o.battle.release()
		return nil
	}

	if step.Delay > 0 && !r.delayed {
		r.delayed = true
		o.battle.release()
		o.battle.label = step.Label()
		o.battle.state = core.SlotLoading
		gen := r.gen
		r.timer = o.schedule(step.Delay, func() {
			o.resumeRun(gen)
		})
		return nil
	}

	h, err := o.loader.Load(ctx, step.Source)
	if err != nil {
		o.logger.Warn("battle load failed", "source", step.Source, "error", err)
		o.cancelRun()
		o.battle.release()
		return err
	}

	o.install(&o.battle, h, step.Label(), step.Source, step.Volume)
	o.battle.play()
	o.logger.Debug("battle step started", "index", r.seq.CurrentIndex, "source", step.Source, "handle", h.ID())
	return nil
}

// resumeRun continues a run after an inter-repeat delay. Timers from
// cancelled runs carry an old generation and do nothing.
func (o *Orchestrator) resumeRun(gen uint64) {
	o.mu.Lock()
	defer o.unlock()

	if o.run == nil || o.run.gen != gen {
		return
	}
	o.run.timer = nil
	if err := o.startStep(o.ctx, o.run); err != nil {
		o.logger.Warn("delayed battle step failed", "error", err)
	}
}

// cancelRun forgets the active run and stops its pending timer. The
// battle handle itself is released by the caller.
func (o *Orchestrator) cancelRun() {
	if o.run == nil {
		return
	}
	if o.run.timer != nil {
		o.run.timer.Stop()
	}
	o.run = nil
}

func validVolume(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
