package audio

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tessro/bard/internal/core"
	berrors "github.com/tessro/bard/internal/errors"
)

// NullLoader produces silent handles that advance on the wall clock. Media
// is still decoded once to learn its duration, so missing or corrupt files
// fail the same way they do with a real device.
type NullLoader struct {
	opts options
	now  func() time.Time
}

var _ core.Loader = (*NullLoader)(nil)

// NewNullLoader creates a silent loader.
func NewNullLoader(opts ...Option) *NullLoader {
	return &NullLoader{opts: buildOptions(opts), now: time.Now}
}

// Load implements core.Loader.
func (l *NullLoader) Load(ctx context.Context, source string) (core.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := mediaDuration(source)
	if err != nil {
		return nil, berrors.MediaLoad(source, err)
	}

	id := core.HandleID(uuid.NewString())
	l.opts.logger.Debug("media loaded", "source", source, "handle", id, "duration", d, "backend", "null")
	return newHandle(id, &nullOutput{now: l.now, length: d}, l.opts.tick), nil
}

// nullOutput tracks a virtual play head.
type nullOutput struct {
	now     func() time.Time
	length  time.Duration
	base    time.Duration
	started time.Time
	running bool
}

func (n *nullOutput) play() {
	if !n.running {
		n.started = n.now()
		n.running = true
	}
}

func (n *nullOutput) pause() {
	if n.running {
		n.base = n.position()
		n.running = false
	}
}

func (n *nullOutput) seek(d time.Duration) error {
	n.base = min(max(d, 0), n.length)
	if n.running {
		n.started = n.now()
	}
	return nil
}

func (n *nullOutput) setVolume(float64) {}

func (n *nullOutput) position() time.Duration {
	p := n.base
	if n.running {
		p += n.now().Sub(n.started)
	}
	return min(p, n.length)
}

func (n *nullOutput) duration() time.Duration {
	return n.length
}

func (n *nullOutput) finished() bool {
	return n.position() >= n.length
}

func (n *nullOutput) close() {
	n.running = false
}
