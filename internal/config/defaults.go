package config

import "time"

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Watch: true,
		},
		Audio: AudioConfig{
			Backend:      "oto",
			SampleRate:   44100,
			BufferMs:     100,
			TickInterval: 250,
		},
		Defaults: DefaultsConfig{
			Volume: 70,
		},
		Tail: TailConfig{
			Interval: 250,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 250,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Audio
	if c.Audio.Backend == "" {
		c.Audio.Backend = d.Audio.Backend
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.BufferMs == 0 {
		c.Audio.BufferMs = d.Audio.BufferMs
	}
	if c.Audio.TickInterval == 0 {
		c.Audio.TickInterval = d.Audio.TickInterval
	}

	// Defaults
	if c.Defaults.Volume == 0 {
		c.Defaults.Volume = d.Defaults.Volume
	}

	// Tail
	if c.Tail.Interval == 0 {
		c.Tail.Interval = d.Tail.Interval
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// TickEvery returns the handle time-update period.
func (c *AudioConfig) TickEvery() time.Duration {
	return time.Duration(c.TickInterval) * time.Millisecond
}

// BufferSize returns the output buffer length.
func (c *AudioConfig) BufferSize() time.Duration {
	return time.Duration(c.BufferMs) * time.Millisecond
}

// Refresh returns the TUI refresh period.
func (c *TUIConfig) Refresh() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Millisecond
}

// Every returns the tail polling period.
func (c *TailConfig) Every() time.Duration {
	return time.Duration(c.Interval) * time.Millisecond
}
