package config

// Config is the root configuration structure.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Audio    AudioConfig    `toml:"audio"`
	Defaults DefaultsConfig `toml:"defaults"`
	Tail     TailConfig     `toml:"tail"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// CatalogConfig locates the track and cue catalog.
type CatalogConfig struct {
	Path     string `toml:"path"`      // empty uses the built-in catalog
	MediaDir string `toml:"media_dir"` // base for relative sources
	Watch    bool   `toml:"watch"`
}

// AudioConfig holds output backend settings.
type AudioConfig struct {
	Backend      string `toml:"backend"`
	SampleRate   int    `toml:"sample_rate"`
	BufferMs     int    `toml:"buffer_ms"`
	TickInterval int    `toml:"tick_interval_ms"`
}

// DefaultsConfig holds default playback settings.
type DefaultsConfig struct {
	Volume int `toml:"volume"`
}

// TailConfig holds settings for event follow mode.
type TailConfig struct {
	Interval int `toml:"interval"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
