package catalog

import (
	"errors"
	"fmt"
	"os"

	berrors "github.com/tessro/bard/internal/errors"
)

// Validate checks ids, sources and cue parameters.
func (c *Catalog) Validate() error {
	var errs []error

	trackIDs := make(map[string]bool)
	for i, t := range c.Tracks {
		switch {
		case t.ID == "":
			errs = append(errs, fmt.Errorf("tracks[%d]: missing id", i))
		case trackIDs[t.ID]:
			errs = append(errs, fmt.Errorf("tracks[%d]: duplicate id %q", i, t.ID))
		}
		trackIDs[t.ID] = true
		if t.Source == "" {
			errs = append(errs, fmt.Errorf("track %q: missing source", t.ID))
		}
	}

	cueIDs := make(map[string]bool)
	for i, cue := range c.Cues {
		switch {
		case cue.ID == "":
			errs = append(errs, fmt.Errorf("cues[%d]: missing id", i))
		case cueIDs[cue.ID]:
			errs = append(errs, fmt.Errorf("cues[%d]: duplicate id %q", i, cue.ID))
		}
		cueIDs[cue.ID] = true
		if cue.Source == "" {
			errs = append(errs, fmt.Errorf("cue %q: missing source", cue.ID))
		}
		if cue.Volume < 0 || cue.Volume > 1 {
			errs = append(errs, fmt.Errorf("cue %q: volume must be between 0 and 1", cue.ID))
		}
		if cue.Repeat < 1 {
			errs = append(errs, fmt.Errorf("cue %q: repeat must be at least 1", cue.ID))
		}
		if cue.Delay < 0 {
			errs = append(errs, fmt.Errorf("cue %q: delay_ms must be non-negative", cue.ID))
		}
	}

	if c.Battle.Fanfare.Source == "" {
		errs = append(errs, errors.New("battle: missing fanfare source"))
	}
	if len(c.Battle.Combat) != CombatPoolSize {
		errs = append(errs, fmt.Errorf("battle: combat pool must have %d entries, got %d", CombatPoolSize, len(c.Battle.Combat)))
	}
	for i, s := range c.Battle.Combat {
		if s.Source == "" {
			errs = append(errs, fmt.Errorf("battle.combat[%d]: missing source", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", berrors.ErrInvalidCatalog, errors.Join(errs...))
	}
	return nil
}

// MediaStatus reports whether a referenced media file exists.
type MediaStatus struct {
	Source string
	Size   int64
	Err    error
}

// Present returns true if the file could be stat'ed.
func (m MediaStatus) Present() bool {
	return m.Err == nil
}

// CheckMedia stats every distinct source in the catalog. Missing files are
// collected as partial errors rather than aborting the scan.
func (c *Catalog) CheckMedia() berrors.PartialResult[map[string]MediaStatus] {
	result := berrors.PartialResult[map[string]MediaStatus]{
		Data: make(map[string]MediaStatus),
	}

	check := func(source string) {
		if _, ok := result.Data[source]; ok || source == "" {
			return
		}
		st := MediaStatus{Source: source}
		info, err := os.Stat(source)
		if err != nil {
			st.Err = err
			result.AddError(berrors.MediaLoad(source, err))
		} else {
			st.Size = info.Size()
		}
		result.Data[source] = st
	}

	for _, t := range c.Tracks {
		check(t.Source)
	}
	for _, cue := range c.Cues {
		check(cue.Source)
	}
	check(c.Battle.Fanfare.Source)
	for _, s := range c.Battle.Combat {
		check(s.Source)
	}

	return result
}
