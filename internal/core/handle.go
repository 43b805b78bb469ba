package core

import (
	"context"
	"time"
)

// HandleID identifies a single loaded media resource. A fresh ID is
// issued for every Load, including reloads for seeking.
type HandleID string

// Handle wraps one playable media resource.
//
// Implementations never invoke callbacks synchronously from their own
// methods, and drop every notification once Dispose has been called.
type Handle interface {
	ID() HandleID

	// Transport
	Play()
	Pause()
	IsPlaying() bool
	Seek(offset time.Duration)

	SetVolume(v float64)

	// Position queries
	CurrentTime() time.Duration
	Duration() time.Duration

	// Notifications; a nil func detaches.
	OnEnded(fn func(HandleID))
	OnTimeUpdate(fn func(HandleID, time.Duration))

	// Dispose stops playback and detaches callbacks. Safe to call twice.
	Dispose()
}

// Loader opens media sources as handles. The returned handle is paused
// at position zero.
type Loader interface {
	Load(ctx context.Context, source string) (Handle, error)
}
