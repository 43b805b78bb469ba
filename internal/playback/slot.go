package playback

import (
	"github.com/tessro/bard/internal/core"
	"github.com/tessro/bard/internal/progress"
)

// slot is one playback lane. All fields are guarded by the orchestrator
// mutex.
type slot struct {
	kind    core.SlotKind
	handle  core.Handle
	label   core.Label
	source  string
	gain    float64
	state   core.SlotState
	tracker progress.Tracker
}

func (s *slot) play() {
	if s.handle == nil {
		return
	}
	s.handle.Play()
	s.state = core.SlotPlaying
}

func (s *slot) pause() {
	if s.handle == nil {
		return
	}
	s.handle.Pause()
	s.state = core.SlotPaused
}

func (s *slot) toggle() {
	if s.state == core.SlotPlaying {
		s.pause()
		return
	}
	s.play()
}

func (s *slot) applyVolume(v float64) {
	if s.handle == nil {
		return
	}
	s.handle.SetVolume(v * s.gain)
}

// detach disposes the current handle but keeps the label and source so a
// replacement can be installed for the same media.
func (s *slot) detach() {
	if s.handle == nil {
		return
	}
	h := s.handle
	s.handle = nil
	s.tracker.Detach()
	disposeHandle(h)
}

// release empties the slot.
func (s *slot) release() {
	s.detach()
	s.label = core.Label{}
	s.source = ""
	s.gain = 0
	s.state = core.SlotEmpty
}

// disposeHandle silences h and unhooks its callbacks before releasing it.
func disposeHandle(h core.Handle) {
	h.OnEnded(nil)
	h.OnTimeUpdate(nil)
	h.Pause()
	h.Dispose()
}
