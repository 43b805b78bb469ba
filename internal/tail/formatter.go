package tail

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/bard/internal/playback"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if e.Current != nil {
		data.Title = e.Current.Label.Title
		data.Tag = e.Current.Label.Tag
		data.Slot = string(e.Current.Slot)
		data.Position = FormatDuration(e.Current.CurrentTime)
		data.Duration = FormatDuration(e.Current.Duration)
		data.Volume = VolumePercent(e.Current.Volume)
		data.Battle = e.Current.BattleActive
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Title     string
	Tag       string
	Slot      string
	Position  string
	Duration  string
	Volume    int
	Battle    bool
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if e.Current != nil && e.Current.HasLabel() {
			return "Now playing: " + describe(e.Current)
		}
		return "Track changed"

	case EventTrackComplete:
		if e.Previous != nil && e.Previous.HasLabel() {
			return "Finished: " + describe(e.Previous)
		}
		return "Track completed"

	case EventTrackSkip:
		if e.Previous != nil && e.Previous.HasLabel() {
			return "Stopped: " + describe(e.Previous)
		}
		return "Track stopped"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", VolumePercent(e.Current.Volume))
		}
		return "Volume changed"

	case EventBattleStart:
		return "Battle started"

	case EventBattleEnd:
		return "Battle ended"

	default:
		return "Unknown event"
	}
}

func describe(s *playback.Snapshot) string {
	if s.Label.Tag == "" {
		return s.Label.Title
	}
	return fmt.Sprintf("%s [%s]", s.Label.Title, s.Label.Tag)
}

// VolumePercent converts a 0..1 volume to a rounded percentage.
func VolumePercent(v float64) int {
	return int(math.Round(v * 100))
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackComplete:
		return "✅"
	case EventTrackSkip:
		return "⏭️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventVolumeChange:
		return "🔊"
	case EventBattleStart:
		return "⚔️"
	case EventBattleEnd:
		return "🏳️"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackComplete:
		return "track_complete"
	case EventTrackSkip:
		return "track_skip"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventVolumeChange:
		return "volume_change"
	case EventBattleStart:
		return "battle_start"
	case EventBattleEnd:
		return "battle_end"
	default:
		return "unknown"
	}
}

// String implements fmt.Stringer.
func (t EventType) String() string {
	return eventTypeName(t)
}

// MarshalText encodes the event type by name.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(eventTypeName(t)), nil
}
