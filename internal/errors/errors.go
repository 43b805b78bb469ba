package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrMediaLoad              = errors.New("media load failed")
	ErrInvalidVolume          = errors.New("volume out of range")
	ErrSequenceAlreadyRunning = errors.New("battle sequence already running")
	ErrSlotEmpty              = errors.New("slot is empty")
	ErrBattleActive           = errors.New("battle slot is active")
	ErrTrackNotFound          = errors.New("track not found")
	ErrCueNotFound            = errors.New("cue not found")
	ErrNoAudioDevice          = errors.New("no audio device")
	ErrConfigNotFound         = errors.New("config file not found")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrInvalidCatalog         = errors.New("invalid catalog")
)

// BardError wraps an error with a user-friendly suggestion.
type BardError struct {
	Err        error
	Suggestion string
}

func (e *BardError) Error() string {
	return e.Err.Error()
}

func (e *BardError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &BardError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// MediaLoad wraps a backend failure for source as ErrMediaLoad.
func MediaLoad(source string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrMediaLoad, source)
	}
	return fmt.Errorf("%w: %s: %w", ErrMediaLoad, source, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var bardErr *BardError
	if errors.As(err, &bardErr) && bardErr.Suggestion != "" {
		return bardErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrMediaLoad) || strings.Contains(errStr, "no such file") {
		return "Check catalog.media_dir and run 'bard tracks' to see which media files are missing"
	}

	if errors.Is(err, ErrNoAudioDevice) {
		return "No audio output is available. Set audio.backend = \"null\" to run without sound"
	}

	if errors.Is(err, ErrTrackNotFound) {
		return "Run 'bard tracks' to see available tracks"
	}

	if errors.Is(err, ErrCueNotFound) {
		return "Run 'bard cues' to see available cues"
	}

	if errors.Is(err, ErrInvalidVolume) {
		return "Volume must be between 0 and 100"
	}

	if errors.Is(err, ErrInvalidCatalog) {
		return "Fix the catalog file or unset catalog.path to use the built-in catalog"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'bard config init' to create a fresh configuration"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
