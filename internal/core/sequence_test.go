package core

import "testing"

func TestSequenceAdvance(t *testing.T) {
	seq := NewSequence([]Step{
		{Source: "fanfare.mp3", Title: "Victory"},
		{Source: "combat2.mp3", Title: "Combat 2", Terminal: true},
	})

	if cur := seq.Current(); cur == nil || cur.Source != "fanfare.mp3" {
		t.Fatalf("Current() = %v, want fanfare", cur)
	}
	if got := len(seq.Upcoming()); got != 1 {
		t.Errorf("len(Upcoming()) = %d, want 1", got)
	}

	next := seq.Advance()
	if next == nil || next.Source != "combat2.mp3" {
		t.Fatalf("Advance() = %v, want combat2", next)
	}
	if seq.Upcoming() != nil {
		t.Error("Upcoming() should be nil on the last step")
	}

	if seq.Advance() != nil {
		t.Error("Advance() past the terminal step should return nil")
	}
	if seq.Current() != nil {
		t.Error("Current() should be nil once exhausted")
	}
}

func TestSequenceTerminalStopsEarly(t *testing.T) {
	seq := NewSequence([]Step{
		{Source: "a", Terminal: true},
		{Source: "b"},
	})
	if seq.Advance() != nil {
		t.Error("Advance() after a terminal step should return nil")
	}
}

func TestNilSequence(t *testing.T) {
	var seq *Sequence
	if seq.Current() != nil || seq.Advance() != nil || seq.Len() != 0 || !seq.IsEmpty() {
		t.Error("nil sequence should behave as empty")
	}
}

func TestSlotStateString(t *testing.T) {
	tests := []struct {
		state SlotState
		want  string
	}{
		{SlotEmpty, "empty"},
		{SlotLoading, "loading"},
		{SlotPlaying, "playing"},
		{SlotPaused, "paused"},
		{SlotState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("SlotState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
