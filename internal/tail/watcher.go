package tail

import (
	"context"
	"time"

	"github.com/tessro/bard/internal/playback"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventVolumeChange
	EventBattleStart
	EventBattleEnd
)

// Event represents a playback state change.
type Event struct {
	Type      EventType          `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Previous  *playback.Snapshot `json:"previous,omitempty"`
	Current   *playback.Snapshot `json:"current,omitempty"`
}

// Idle returns true if the event leaves nothing loaded or pending.
func (e Event) Idle() bool {
	return e.Current != nil && !e.Current.HasLabel() && !e.Current.BattleActive
}

// Source is anything that can report the transport state.
type Source interface {
	Snapshot() playback.Snapshot
}

// Watcher polls a source for state changes and emits events.
type Watcher struct {
	source   Source
	interval time.Duration
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a new state watcher.
func NewWatcher(source Source, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = 250 * time.Millisecond
	}
	return &Watcher{
		source:   source,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins polling for state changes. It closes the events channel
// when it returns.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	var prev *playback.Snapshot

	for {
		curr := w.source.Snapshot()
		for _, e := range diffStates(prev, &curr) {
			select {
			case w.events <- e:
			default:
				// Drop event if channel is full
			}
		}
		prev = &curr

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// diffStates compares two states and returns detected events.
func diffStates(prev, curr *playback.Snapshot) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event

	// First poll - no previous state
	if prev == nil {
		if curr.BattleActive {
			events = append(events, Event{Type: EventBattleStart, Timestamp: now, Current: curr})
		}
		if curr.HasLabel() {
			events = append(events, Event{Type: EventTrackChange, Timestamp: now, Current: curr})
		}
		return events
	}

	if !prev.BattleActive && curr.BattleActive {
		events = append(events, Event{Type: EventBattleStart, Timestamp: now, Previous: prev, Current: curr})
	}

	if trackChanged(prev, curr) {
		eventType := EventTrackChange
		if prev.HasLabel() && !curr.HasLabel() {
			if wasCompleted(prev) {
				eventType = EventTrackComplete
			} else {
				eventType = EventTrackSkip
			}
		}
		events = append(events, Event{Type: eventType, Timestamp: now, Previous: prev, Current: curr})
	}

	if prev.BattleActive && !curr.BattleActive {
		events = append(events, Event{Type: EventBattleEnd, Timestamp: now, Previous: prev, Current: curr})
	}

	// Pause/Resume only matter while the same thing is loaded.
	if !trackChanged(prev, curr) {
		if prev.IsPlaying && !curr.IsPlaying {
			events = append(events, Event{Type: EventPause, Timestamp: now, Previous: prev, Current: curr})
		} else if !prev.IsPlaying && curr.IsPlaying {
			events = append(events, Event{Type: EventResume, Timestamp: now, Previous: prev, Current: curr})
		}
	}

	if prev.Volume != curr.Volume {
		events = append(events, Event{Type: EventVolumeChange, Timestamp: now, Previous: prev, Current: curr})
	}

	return events
}

// trackChanged returns true if the displayed media changed.
func trackChanged(prev, curr *playback.Snapshot) bool {
	return prev.Label != curr.Label || prev.Slot != curr.Slot || prev.TrackID != curr.TrackID
}

// wasCompleted returns true if the media likely ended naturally.
func wasCompleted(s *playback.Snapshot) bool {
	if s.Duration == 0 {
		return false
	}
	// Consider completed if progress is >= 95% of duration
	threshold := float64(s.Duration) * 0.95
	return float64(s.CurrentTime) >= threshold
}
