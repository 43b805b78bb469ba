package core

// SlotKind names one of the two playback channels.
type SlotKind string

const (
	SlotAmbient SlotKind = "ambient"
	SlotBattle  SlotKind = "battle"
)

// SlotState is the transport state of a playback slot.
type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotLoading
	SlotPlaying
	SlotPaused
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotLoading:
		return "loading"
	case SlotPlaying:
		return "playing"
	case SlotPaused:
		return "paused"
	default:
		return "unknown"
	}
}
