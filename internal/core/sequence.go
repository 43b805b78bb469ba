package core

import "time"

// Step is one entry of a battle-slot sequence.
type Step struct {
	Source   string        `json:"source"`
	Title    string        `json:"title"`
	Tag      string        `json:"tag"`
	Volume   float64       `json:"volume"` // gain on the player volume, 0 is silent
	Delay    time.Duration `json:"delay"`  // wait before this step starts
	Terminal bool          `json:"terminal"`
}

// Label returns the display label for the step.
func (s Step) Label() Label {
	return Label{Title: s.Title, Tag: s.Tag}
}

// Sequence is an ordered list of steps with a cursor on the executing one.
type Sequence struct {
	Steps        []Step `json:"steps"`
	CurrentIndex int    `json:"current_index"`
}

// NewSequence returns a sequence positioned on its first step.
func NewSequence(steps []Step) *Sequence {
	return &Sequence{Steps: steps}
}

// Current returns the executing step, or nil if the sequence is exhausted.
func (s *Sequence) Current() *Step {
	if s == nil || len(s.Steps) == 0 || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Steps) {
		return nil
	}
	return &s.Steps[s.CurrentIndex]
}

// Upcoming returns the steps after the current one.
func (s *Sequence) Upcoming() []Step {
	if s == nil || len(s.Steps) == 0 || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Steps)-1 {
		return nil
	}
	return s.Steps[s.CurrentIndex+1:]
}

// Advance moves the cursor to the next step and returns it, or nil when
// the current step was the last one.
func (s *Sequence) Advance() *Step {
	if s == nil {
		return nil
	}
	if cur := s.Current(); cur == nil || cur.Terminal {
		s.CurrentIndex = len(s.Steps)
		return nil
	}
	s.CurrentIndex++
	return s.Current()
}

// Len returns the total number of steps.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Steps)
}

// IsEmpty returns true if the sequence has no steps.
func (s *Sequence) IsEmpty() bool {
	return s.Len() == 0
}
