package audio

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/tessro/bard/internal/core"
)

// output is where a handle's audio goes.
type output interface {
	play()
	pause()
	seek(d time.Duration) error
	setVolume(v float64)
	position() time.Duration
	duration() time.Duration
	finished() bool
	close()
}

// Handle implements core.Handle. A monitor goroutine reports the position
// every tick while playing and fires the end callback once the output has
// drained. Callbacks always run on that goroutine with no lock held.
type Handle struct {
	id   core.HandleID
	tick time.Duration
	done chan struct{}

	mu       sync.Mutex
	out      output
	playing  bool
	disposed bool
	onEnded  func(core.HandleID)
	onTime   func(core.HandleID, time.Duration)
}

var _ core.Handle = (*Handle)(nil)

func newHandle(id core.HandleID, out output, tick time.Duration) *Handle {
	h := &Handle{
		id:   id,
		tick: tick,
		done: make(chan struct{}),
		out:  out,
	}
	go h.monitor()
	return h
}

func (h *Handle) ID() core.HandleID { return h.id }

func (h *Handle) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed || h.playing {
		return
	}
	h.out.play()
	h.playing = true
}

func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed || !h.playing {
		return
	}
	h.out.pause()
	h.playing = false
}

func (h *Handle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

// Seek moves the handle. Errors from the decoder leave the position where
// it was.
func (h *Handle) Seek(offset time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	if err := h.out.seek(offset); err != nil {
		return
	}
	if h.playing {
		h.out.play()
	}
}

func (h *Handle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.out.setVolume(v)
}

func (h *Handle) CurrentTime() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return 0
	}
	return h.out.position()
}

func (h *Handle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.out.duration()
}

func (h *Handle) OnEnded(fn func(core.HandleID)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.onEnded = fn
}

func (h *Handle) OnTimeUpdate(fn func(core.HandleID, time.Duration)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.onTime = fn
}

func (h *Handle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.disposed = true
	h.playing = false
	h.onEnded = nil
	h.onTime = nil
	close(h.done)
	h.out.close()
}

func (h *Handle) monitor() {
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.poll()
		}
	}
}

// poll emits one time update and, once the output has drained, the end
// notification.
func (h *Handle) poll() {
	h.mu.Lock()
	if h.disposed || !h.playing {
		h.mu.Unlock()
		return
	}

	pos := h.out.position()
	onTime := h.onTime
	var onEnded func(core.HandleID)
	if h.out.finished() {
		h.out.pause()
		h.playing = false
		onEnded = h.onEnded
	}
	h.mu.Unlock()

	if onTime != nil {
		onTime(h.id, pos)
	}
	if onEnded != nil {
		onEnded(h.id)
	}
}

// deviceOutput plays through an oto player. The player is created on the
// first Play so a fresh handle can be seeked without touching the device.
type deviceOutput struct {
	ctx    *oto.Context
	pcm    *pcmStream
	player *oto.Player
	volume float64
}

func newDeviceHandle(id core.HandleID, ctx *oto.Context, pcm *pcmStream, tick time.Duration) *Handle {
	return newHandle(id, &deviceOutput{ctx: ctx, pcm: pcm, volume: 1}, tick)
}

func (d *deviceOutput) play() {
	if d.player == nil {
		d.player = d.ctx.NewPlayer(d.pcm)
		d.player.SetVolume(d.volume)
	}
	d.player.Play()
}

func (d *deviceOutput) pause() {
	if d.player != nil {
		d.player.Pause()
	}
}

// seek drops any player that has already buffered audio; the next play
// builds a new one from the repositioned stream.
func (d *deviceOutput) seek(offset time.Duration) error {
	if d.player != nil {
		d.player.Close()
		d.player = nil
	}
	return d.pcm.seek(offset)
}

func (d *deviceOutput) setVolume(v float64) {
	d.volume = v
	if d.player != nil {
		d.player.SetVolume(v)
	}
}

func (d *deviceOutput) position() time.Duration {
	buffered := 0
	if d.player != nil {
		buffered = d.player.BufferedSize()
	}
	return d.pcm.position(buffered)
}

func (d *deviceOutput) duration() time.Duration {
	return d.pcm.duration()
}

func (d *deviceOutput) finished() bool {
	return d.pcm.drained() && (d.player == nil || !d.player.IsPlaying())
}

func (d *deviceOutput) close() {
	if d.player != nil {
		d.player.Close()
		d.player = nil
	}
	_ = d.pcm.Close()
}
