package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.bardrc, $XDG_CONFIG_HOME/bard/config.toml, ~/.config/bard/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	path := FindConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FindConfigFile returns the first existing config file path, or "".
func FindConfigFile() string {
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where 'bard config init' writes a new file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bardrc"
	}
	return filepath.Join(home, ".bardrc")
}

func searchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".bardrc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "bard", "config.toml"))
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Catalog
	if v := os.Getenv("BARD_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("BARD_MEDIA_DIR"); v != "" {
		cfg.Catalog.MediaDir = v
	}

	// Audio
	if v := os.Getenv("BARD_AUDIO_BACKEND"); v != "" {
		cfg.Audio.Backend = v
	}

	// Defaults
	if v := os.Getenv("BARD_DEFAULT_VOLUME"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Defaults.Volume = i
		}
	}

	// TUI
	if v := os.Getenv("BARD_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("BARD_TUI_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshInterval = i
		}
	}

	// Log
	if v := os.Getenv("BARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BARD_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
