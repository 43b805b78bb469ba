// Package progress tracks current time and duration for the handle that
// occupies a playback slot.
package progress

import (
	"context"
	"time"

	"github.com/tessro/bard/internal/core"
)

// Snapshot is the presentation-ready position of a slot.
type Snapshot struct {
	CurrentTime time.Duration `json:"current_time"`
	Duration    time.Duration `json:"duration"`
}

// Percent returns progress as 0-100.
func (s Snapshot) Percent() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.CurrentTime) / float64(s.Duration) * 100
	return min(max(p, 0), 100)
}

// Tracker observes exactly one handle at a time. Updates tagged with any
// other handle id are rejected, so trailing events from a replaced or
// disposed handle never reach the UI.
//
// Tracker is not safe for concurrent use; its owner serialises access.
type Tracker struct {
	id       core.HandleID
	current  time.Duration
	duration time.Duration
}

// Observe switches observation to h, discarding the previous handle's
// position. A nil h detaches.
func (t *Tracker) Observe(h core.Handle) {
	if h == nil {
		t.Detach()
		return
	}
	t.id = h.ID()
	t.current = h.CurrentTime()
	t.duration = h.Duration()
}

// Detach stops observing and zeroes the snapshot.
func (t *Tracker) Detach() {
	*t = Tracker{}
}

// Observing returns the id of the observed handle, or "".
func (t *Tracker) Observing() core.HandleID {
	return t.id
}

// Update records a time update and reports whether it was accepted.
func (t *Tracker) Update(id core.HandleID, current time.Duration) bool {
	if id == "" || id != t.id {
		return false
	}
	t.current = max(current, 0)
	return true
}

// SetDuration records the duration once the backend knows it.
func (t *Tracker) SetDuration(id core.HandleID, d time.Duration) bool {
	if id == "" || id != t.id {
		return false
	}
	t.duration = d
	return true
}

// Snapshot returns the last accepted position.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{CurrentTime: t.current, Duration: t.duration}
}

// Reposition builds a handle for source positioned at offset, clamped to
// [0, duration]. The handle is never played here; the caller installs it,
// releases the old handle and then resumes playback if the slot was
// playing. This is the seek-by-reconstruction contract: the backend is not
// asked to seek a handle that has already produced audio.
func Reposition(ctx context.Context, loader core.Loader, source string, offset time.Duration, volume float64) (core.Handle, error) {
	h, err := loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	if d := h.Duration(); d > 0 && offset > d {
		offset = d
	}
	h.Seek(max(offset, 0))
	h.SetVolume(volume)
	return h, nil
}
