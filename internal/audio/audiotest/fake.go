// Package audiotest provides a scriptable in-memory audio backend for tests.
package audiotest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
)

// DefaultDuration is reported for sources without an explicit duration.
const DefaultDuration = 3 * time.Minute

// Loader creates fake handles and remembers every one it made.
type Loader struct {
	mu        sync.Mutex
	durations map[string]time.Duration
	failures  map[string]error
	handles   []*Handle
	seq       int
}

// NewLoader creates an empty fake loader.
func NewLoader() *Loader {
	return &Loader{
		durations: make(map[string]time.Duration),
		failures:  make(map[string]error),
	}
}

// SetDuration sets the duration reported by handles for source.
func (l *Loader) SetDuration(source string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.durations[source] = d
}

// FailOn makes every Load of source fail. A nil err clears the failure.
func (l *Loader) FailOn(source string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.failures, source)
		return
	}
	l.failures[source] = err
}

// Load implements core.Loader.
func (l *Loader) Load(ctx context.Context, source string) (core.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err, ok := l.failures[source]; ok {
		return nil, berrors.MediaLoad(source, err)
	}

	d, ok := l.durations[source]
	if !ok {
		d = DefaultDuration
	}
	l.seq++
	h := &Handle{
		id:       core.HandleID(fmt.Sprintf("fake-%d", l.seq)),
		Source:   source,
		duration: d,
		volume:   1,
	}
	l.handles = append(l.handles, h)
	return h, nil
}

// Handles returns every handle created so far, oldest first.
func (l *Loader) Handles() []*Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Handle(nil), l.handles...)
}

// HandlesFor returns the handles created for source.
func (l *Loader) HandlesFor(source string) []*Handle {
	var out []*Handle
	for _, h := range l.Handles() {
		if h.Source == source {
			out = append(out, h)
		}
	}
	return out
}

// Last returns the most recently created handle, or nil.
func (l *Loader) Last() *Handle {
	hs := l.Handles()
	if len(hs) == 0 {
		return nil
	}
	return hs[len(hs)-1]
}

// Playing returns the handles currently in the playing state.
func (l *Loader) Playing() []*Handle {
	var out []*Handle
	for _, h := range l.Handles() {
		if h.IsPlaying() {
			out = append(out, h)
		}
	}
	return out
}

// Handle is a fake media resource driven by the test.
type Handle struct {
	Source string

	mu       sync.Mutex
	id       core.HandleID
	playing  bool
	disposed bool
	volume   float64
	position time.Duration
	duration time.Duration
	plays    int
	seeks    []time.Duration

	onEnded func(core.HandleID)
	onTime  func(core.HandleID, time.Duration)

	// Last callbacks ever registered, kept after Dispose so tests can
	// simulate a backend delivering a late event.
	lastEnded func(core.HandleID)
	lastTime  func(core.HandleID, time.Duration)
}

var _ core.Handle = (*Handle)(nil)

func (h *Handle) ID() core.HandleID { return h.id }

func (h *Handle) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.playing = true
	h.plays++
}

func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
}

func (h *Handle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *Handle) Seek(offset time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.position = offset
	h.seeks = append(h.seeks, offset)
}

func (h *Handle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
}

func (h *Handle) CurrentTime() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

func (h *Handle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

func (h *Handle) OnEnded(fn func(core.HandleID)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEnded = fn
	if fn != nil {
		h.lastEnded = fn
	}
}

func (h *Handle) OnTimeUpdate(fn func(core.HandleID, time.Duration)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTime = fn
	if fn != nil {
		h.lastTime = fn
	}
}

func (h *Handle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disposed = true
	h.playing = false
	h.onEnded = nil
	h.onTime = nil
}

// Volume returns the last volume set.
func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

// Disposed reports whether Dispose was called.
func (h *Handle) Disposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposed
}

// Plays returns how many times Play was called.
func (h *Handle) Plays() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plays
}

// Seeks returns every offset passed to Seek.
func (h *Handle) Seeks() []time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]time.Duration(nil), h.seeks...)
}

// End simulates natural end of media. Dropped after Dispose.
func (h *Handle) End() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.playing = false
	h.position = h.duration
	fn := h.onEnded
	h.mu.Unlock()

	if fn != nil {
		fn(h.id)
	}
}

// Tick simulates a time update at t. Dropped after Dispose.
func (h *Handle) Tick(t time.Duration) {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.position = t
	fn := h.onTime
	h.mu.Unlock()

	if fn != nil {
		fn(h.id, t)
	}
}

// LateEnd delivers an end-of-media event through the last registered
// callback even if the handle was disposed, modelling a backend race.
func (h *Handle) LateEnd() {
	h.mu.Lock()
	fn := h.lastEnded
	h.mu.Unlock()
	if fn != nil {
		fn(h.id)
	}
}

// LateTick is the time-update counterpart of LateEnd.
func (h *Handle) LateTick(t time.Duration) {
	h.mu.Lock()
	fn := h.lastTime
	h.mu.Unlock()
	if fn != nil {
		fn(h.id, t)
	}
}
