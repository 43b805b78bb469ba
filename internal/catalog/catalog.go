// Package catalog loads the read-only list of tracks, sound cues and the
// battle-music pool.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
)

// CombatPoolSize is the number of combat tracks battle music picks from.
const CombatPoolSize = 4

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is the parsed, validated catalog.
type Catalog struct {
	Tracks []core.Track
	Cues   []core.SoundCue
	Battle Battle

	// Path is the file it was loaded from, empty for the built-in catalog.
	Path string
}

// Battle describes the composite battle-music cue.
type Battle struct {
	Fanfare core.Step   `json:"fanfare"`
	Combat  []core.Step `json:"combat"`
}

type file struct {
	Tracks []trackRecord `yaml:"tracks"`
	Cues   []cueRecord   `yaml:"cues"`
	Battle struct {
		Fanfare stepRecord   `yaml:"fanfare"`
		Combat  []stepRecord `yaml:"combat"`
	} `yaml:"battle"`
}

type trackRecord struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Tag      string `yaml:"tag"`
	Duration string `yaml:"duration"`
	Artwork  string `yaml:"artwork"`
	Source   string `yaml:"source"`
}

type cueRecord struct {
	ID      string   `yaml:"id"`
	Label   string   `yaml:"label"`
	Source  string   `yaml:"source"`
	Volume  *float64 `yaml:"volume"`
	Repeat  int      `yaml:"repeat"`
	DelayMs int      `yaml:"delay_ms"`
}

type stepRecord struct {
	Title  string `yaml:"title"`
	Tag    string `yaml:"tag"`
	Source string `yaml:"source"`
}

// Load reads the catalog at path, or the built-in one when path is empty.
// Relative sources resolve against mediaDir; an empty mediaDir defaults to
// the catalog file's directory (or DefaultMediaDir for the built-in one).
func Load(path, mediaDir string) (*Catalog, error) {
	if path == "" {
		if mediaDir == "" {
			mediaDir = DefaultMediaDir()
		}
		return Parse(defaultCatalog, mediaDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if mediaDir == "" {
		mediaDir = filepath.Dir(path)
	}
	c, err := Parse(data, mediaDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte, mediaDir string) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", berrors.ErrInvalidCatalog, err)
	}

	c := &Catalog{}
	for _, t := range f.Tracks {
		c.Tracks = append(c.Tracks, core.Track{
			ID:       t.ID,
			Title:    t.Title,
			Tag:      t.Tag,
			Duration: t.Duration,
			Artwork:  resolve(mediaDir, t.Artwork),
			Source:   resolve(mediaDir, t.Source),
		})
	}
	for _, r := range f.Cues {
		c.Cues = append(c.Cues, convertCue(r, mediaDir))
	}
	c.Battle.Fanfare = convertStep(f.Battle.Fanfare, mediaDir)
	for _, s := range f.Battle.Combat {
		c.Battle.Combat = append(c.Battle.Combat, convertStep(s, mediaDir))
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func convertCue(r cueRecord, mediaDir string) core.SoundCue {
	cue := core.SoundCue{
		ID:     r.ID,
		Label:  r.Label,
		Source: resolve(mediaDir, r.Source),
		Volume: 1,
		Repeat: r.Repeat,
		Delay:  time.Duration(r.DelayMs) * time.Millisecond,
	}
	if r.Volume != nil {
		cue.Volume = *r.Volume
	}
	if cue.Repeat == 0 {
		cue.Repeat = 1
	}
	if cue.Label == "" {
		cue.Label = r.ID
	}
	return cue
}

func convertStep(r stepRecord, mediaDir string) core.Step {
	return core.Step{
		Title:  r.Title,
		Tag:    r.Tag,
		Source: resolve(mediaDir, r.Source),
	}
}

func resolve(mediaDir, ref string) string {
	if ref == "" || filepath.IsAbs(ref) || mediaDir == "" {
		return ref
	}
	return filepath.Join(mediaDir, filepath.FromSlash(ref))
}

// DefaultMediaDir returns $XDG_DATA_HOME/bard/media.
func DefaultMediaDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "media"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "bard", "media")
}

// Track returns the track with the given id.
func (c *Catalog) Track(id string) (core.Track, error) {
	for _, t := range c.Tracks {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Track{}, fmt.Errorf("%w: %s", berrors.ErrTrackNotFound, id)
}

// FindTrack resolves an id, then an exact title, then a title substring
// (case-insensitive).
func (c *Catalog) FindTrack(query string) (core.Track, error) {
	if t, err := c.Track(query); err == nil {
		return t, nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	for _, t := range c.Tracks {
		if strings.ToLower(t.Title) == q {
			return t, nil
		}
	}
	for _, t := range c.Tracks {
		if q != "" && strings.Contains(strings.ToLower(t.Title), q) {
			return t, nil
		}
	}
	return core.Track{}, fmt.Errorf("%w: %s", berrors.ErrTrackNotFound, query)
}

// Cue returns the sound cue with the given id.
func (c *Catalog) Cue(id string) (core.SoundCue, error) {
	for _, cue := range c.Cues {
		if cue.ID == id {
			return cue, nil
		}
	}
	return core.SoundCue{}, fmt.Errorf("%w: %s", berrors.ErrCueNotFound, id)
}

// Tags returns the distinct track tags in catalog order.
func (c *Catalog) Tags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, t := range c.Tracks {
		if t.Tag != "" && !seen[t.Tag] {
			seen[t.Tag] = true
			tags = append(tags, t.Tag)
		}
	}
	return tags
}
