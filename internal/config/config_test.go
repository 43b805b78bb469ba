package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[catalog]
path = "/srv/bard/catalog.yaml"
media_dir = "/srv/bard/media"

[audio]
backend = "null"

[defaults]
volume = 30
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Catalog.Path != "/srv/bard/catalog.yaml" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if cfg.Audio.Backend != "null" {
		t.Errorf("Audio.Backend = %q, want null", cfg.Audio.Backend)
	}
	if cfg.Defaults.Volume != 30 {
		t.Errorf("Defaults.Volume = %d, want 30", cfg.Defaults.Volume)
	}
	// Untouched sections get defaults.
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("Audio.SampleRate = %d, want 44100", cfg.Audio.SampleRate)
	}
	if cfg.TUI.Refresh() != 250*time.Millisecond {
		t.Errorf("TUI.Refresh() = %v, want 250ms", cfg.TUI.Refresh())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("BARD_LOG_LEVEL", "debug")
	t.Setenv("BARD_DEFAULT_VOLUME", "45")
	t.Setenv("BARD_AUDIO_BACKEND", "null")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Defaults.Volume != 45 {
		t.Errorf("Defaults.Volume = %d, want 45", cfg.Defaults.Volume)
	}
	if cfg.Audio.Backend != "null" {
		t.Errorf("Audio.Backend = %q, want null", cfg.Audio.Backend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"bad backend", func(c *Config) { c.Audio.Backend = "alsa" }, "invalid backend"},
		{"slow ticks", func(c *Config) { c.Audio.TickInterval = 1000 }, "tick_interval_ms"},
		{"volume too high", func(c *Config) { c.Defaults.Volume = 101 }, "volume must be between"},
		{"bad theme", func(c *Config) { c.TUI.Theme = "neon" }, "invalid theme"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
