package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

// bytesPerFrame is one stereo float32 little-endian frame.
const bytesPerFrame = 8

// resampleQuality is passed to beep.Resample.
const resampleQuality = 4

// pcmStream turns a beep streamer into the float32LE stereo byte stream an
// oto player reads, and counts how many frames it has handed out so the
// position can be derived without asking the player.
type pcmStream struct {
	mu sync.Mutex

	src     beep.StreamSeekCloser
	stream  beep.Streamer
	srcRate beep.SampleRate
	outRate beep.SampleRate

	buf    [][2]float64
	base   time.Duration // position of the first delivered frame
	frames int64         // frames delivered since base
	eof    bool
}

func newPCMStream(src beep.StreamSeekCloser, srcRate, outRate beep.SampleRate) *pcmStream {
	p := &pcmStream{src: src, srcRate: srcRate, outRate: outRate}
	p.reset()
	return p
}

// reset rebuilds the resampler after the source moved.
func (p *pcmStream) reset() {
	p.stream = p.src
	if p.srcRate != p.outRate {
		p.stream = beep.Resample(resampleQuality, p.srcRate, p.outRate, p.src)
	}
}

// Read implements io.Reader.
func (p *pcmStream) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.eof {
		return 0, io.EOF
	}

	n := len(b) / bytesPerFrame
	if n == 0 {
		return 0, nil
	}
	if cap(p.buf) < n {
		p.buf = make([][2]float64, n)
	}
	buf := p.buf[:n]

	got, ok := p.stream.Stream(buf)
	for i := range got {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(float32(buf[i][0])))
		binary.LittleEndian.PutUint32(b[off+4:], math.Float32bits(float32(buf[i][1])))
	}
	p.frames += int64(got)

	if !ok {
		p.eof = true
		if err := p.stream.Err(); err != nil {
			return got * bytesPerFrame, err
		}
		if got == 0 {
			return 0, io.EOF
		}
	}
	return got * bytesPerFrame, nil
}

// seek moves the source to d, clamped to the media length.
func (p *pcmStream) seek(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	length := p.src.Len()
	pos := min(max(p.srcRate.N(d), 0), length)
	if err := p.src.Seek(pos); err != nil {
		return err
	}
	p.reset()
	p.base = p.srcRate.D(pos)
	p.frames = 0
	p.eof = false
	return nil
}

// position returns the playback position given how many bytes are still
// sitting in the output buffer.
func (p *pcmStream) position(buffered int) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	played := max(p.frames-int64(buffered/bytesPerFrame), 0)
	return min(p.base+p.outRate.D(int(played)), p.durationLocked())
}

func (p *pcmStream) duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.durationLocked()
}

func (p *pcmStream) durationLocked() time.Duration {
	return p.srcRate.D(p.src.Len())
}

// drained reports whether the decoder has no more frames.
func (p *pcmStream) drained() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eof
}

func (p *pcmStream) Close() error {
	return p.src.Close()
}
