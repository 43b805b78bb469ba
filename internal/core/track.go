package core

import "time"

// Track is an ambient soundtrack entry from the catalog.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Tag      string `json:"tag"`
	Duration string `json:"duration"` // display only, e.g. "2:41"
	Artwork  string `json:"artwork,omitempty"`
	Source   string `json:"source"`
}

// Label returns the now-playing label for the track.
func (t Track) Label() Label {
	return Label{Title: t.Title, Tag: t.Tag}
}

// SoundCue is a pre-configured sound trigger such as a combat effect or
// a win/lose stinger.
type SoundCue struct {
	ID     string        `json:"id"`
	Label  string        `json:"label"`
	Source string        `json:"source"`
	Volume float64       `json:"volume"`
	Repeat int           `json:"repeat"`
	Delay  time.Duration `json:"delay"` // between repeats
}

// Label is what the transport bar shows for the active slot.
type Label struct {
	Title string `json:"title"`
	Tag   string `json:"tag"`
}

// IsZero returns true if the label carries nothing to display.
func (l Label) IsZero() bool {
	return l.Title == "" && l.Tag == ""
}
