// Package audio implements core.Loader on top of beep decoders and an oto
// output context, plus a silent backend for machines without a sound card.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Supported file extensions.
const (
	extMP3  = ".mp3"
	extWAV  = ".wav"
	extOGG  = ".ogg"
	extFLAC = ".flac"
)

// Supported reports whether path has an extension the decoders handle.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extWAV, extOGG, extFLAC:
		return true
	}
	return false
}

// Formats lists the supported extensions without the dot.
func Formats() []string {
	return []string{extMP3[1:], extWAV[1:], extOGG[1:], extFLAC[1:]}
}

// decode opens path and picks a decoder by extension. The returned
// streamer owns the file and closes it on Close.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return nil, beep.Format{}, fmt.Errorf("unsupported format %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case extMP3:
		s, format, err = mp3.Decode(f)
	case extWAV:
		s, format, err = wav.Decode(f)
		s = withCloser(s, f)
	case extOGG:
		s, format, err = vorbis.Decode(f)
	case extFLAC:
		s, format, err = flac.Decode(f)
		s = withCloser(s, f)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, err
	}
	return s, format, nil
}

// mediaDuration returns the duration of the media at path.
func mediaDuration(path string) (time.Duration, error) {
	s, format, err := decode(path)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return format.SampleRate.D(s.Len()), nil
}

// fileCloser makes sure the file behind a plain io.Reader decoder is
// closed even when the decoder does not close it.
type fileCloser struct {
	beep.StreamSeekCloser
	f *os.File
}

func withCloser(s beep.StreamSeekCloser, f *os.File) beep.StreamSeekCloser {
	if s == nil {
		return nil
	}
	return &fileCloser{StreamSeekCloser: s, f: f}
}

func (c *fileCloser) Close() error {
	err := c.StreamSeekCloser.Close()
	if ferr := c.f.Close(); err == nil && !errors.Is(ferr, os.ErrClosed) {
		err = ferr
	}
	return err
}
