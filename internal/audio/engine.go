package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"

	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
)

// Defaults used when an option is not given.
const (
	DefaultSampleRate   = 44100
	DefaultBufferSize   = 100 * time.Millisecond
	DefaultTickInterval = 250 * time.Millisecond
)

// The oto context can only be created once per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

func initContext(sampleRate int, buffer time.Duration) (*oto.Context, int, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   buffer,
		}
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(op)
		if otoErr == nil {
			<-ready
			otoRate = sampleRate
		}
	})
	if otoErr != nil {
		return nil, 0, fmt.Errorf("%w: %w", berrors.ErrNoAudioDevice, otoErr)
	}
	return otoCtx, otoRate, nil
}

// Options shared by both backends.
type options struct {
	sampleRate int
	bufferSize time.Duration
	tick       time.Duration
	logger     *slog.Logger
}

// Option configures a loader.
type Option func(*options)

// WithSampleRate sets the output sample rate. Only the first engine in a
// process decides it.
func WithSampleRate(rate int) Option {
	return func(o *options) {
		if rate > 0 {
			o.sampleRate = rate
		}
	}
}

// WithBufferSize sets the output buffer length.
func WithBufferSize(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.bufferSize = d
		}
	}
}

// WithTickInterval sets how often handles report their position. Values
// above DefaultTickInterval are capped.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tick = min(d, DefaultTickInterval)
		}
	}
}

// WithLogger sets the logger for decoder and device errors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{
		sampleRate: DefaultSampleRate,
		bufferSize: DefaultBufferSize,
		tick:       DefaultTickInterval,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Engine loads media files into handles that play through the system
// audio device.
type Engine struct {
	ctx  *oto.Context
	rate beep.SampleRate
	opts options
}

var _ core.Loader = (*Engine)(nil)

// NewEngine opens the audio device. It fails with ErrNoAudioDevice when no
// output is available.
func NewEngine(opts ...Option) (*Engine, error) {
	o := buildOptions(opts)
	ctx, rate, err := initContext(o.sampleRate, o.bufferSize)
	if err != nil {
		return nil, err
	}
	return &Engine{ctx: ctx, rate: beep.SampleRate(rate), opts: o}, nil
}

// Load decodes source and returns a paused handle at position zero.
func (e *Engine) Load(ctx context.Context, source string) (core.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, format, err := decode(source)
	if err != nil {
		e.opts.logger.Debug("decode failed", "source", source, "error", err)
		return nil, berrors.MediaLoad(source, err)
	}

	id := core.HandleID(uuid.NewString())
	pcm := newPCMStream(s, format.SampleRate, e.rate)
	h := newDeviceHandle(id, e.ctx, pcm, e.opts.tick)
	e.opts.logger.Debug("media loaded", "source", source, "handle", id, "duration", pcm.duration())
	return h, nil
}
