//go:build !tinygo && cgo

package hal

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// hostSpeaker plays the codec's output stream through Ebiten's audio package.
type hostSpeaker struct {
	mu   sync.Mutex
	cond *sync.Cond

	ctx        *audio.Context
	player     *audio.Player
	sampleRate int

	buf []int16
	r   int
	w   int
	n   int

	closed bool
}

func newHostSpeaker() AudioSink {
	return &hostSpeaker{}
}

func (a *hostSpeaker) Start(sampleRate int) error {
	if sampleRate <= 0 {
		return errors.New("host audio: invalid sample rate")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cond == nil {
		a.cond = sync.NewCond(&a.mu)
	}

	if a.ctx == nil {
		a.ctx = audio.NewContext(sampleRate)
	} else if a.ctx.SampleRate() != sampleRate {
		return errors.New("host audio: ebiten audio context sample rate is fixed")
	}
	a.sampleRate = sampleRate

	if a.player != nil {
		_ = a.player.Close()
		a.player = nil
	}

	ring := sampleRate / 10 // ~100ms buffer.
	if ring < 2048 {
		ring = 2048
	}
	if ring > 16384 {
		ring = 16384
	}
	a.buf = make([]int16, ring)
	a.r, a.w, a.n = 0, 0, 0
	a.closed = false

	p, err := a.ctx.NewPlayer(&hostAudioReader{a: a})
	if err != nil {
		return err
	}
	p.SetBufferSize(100 * time.Millisecond)
	p.Play()
	a.player = p
	return nil
}

func (a *hostSpeaker) Stop() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.n, a.r, a.w = 0, 0, 0
	if a.cond != nil {
		a.cond.Broadcast()
	}
	p := a.player
	a.player = nil
	a.mu.Unlock()

	if p != nil {
		return p.Close()
	}
	return nil
}

// WriteSamples blocks while the ring is full.
func (a *hostSpeaker) WriteSamples(samples []int16) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cond == nil || len(a.buf) == 0 {
		return 0, errors.New("host audio: not started")
	}
	for i, s := range samples {
		for !a.closed && a.n == len(a.buf) {
			a.cond.Wait()
		}
		if a.closed {
			return i, io.ErrClosedPipe
		}
		a.buf[a.w] = s
		a.w++
		if a.w >= len(a.buf) {
			a.w = 0
		}
		a.n++
		a.cond.Signal()
	}
	return len(samples), nil
}

type hostAudioReader struct {
	a *hostSpeaker
}

func (r *hostAudioReader) Read(p []byte) (int, error) {
	a := r.a
	// Ebiten audio expects 16-bit little-endian stereo.
	for i := 0; i+3 < len(p); i += 4 {
		var s int16

		a.mu.Lock()
		for !a.closed && a.n == 0 {
			a.cond.Wait()
		}
		if a.closed {
			a.mu.Unlock()
			return i, io.EOF
		}
		s = a.buf[a.r]
		a.r++
		if a.r >= len(a.buf) {
			a.r = 0
		}
		a.n--
		a.cond.Signal()
		a.mu.Unlock()

		p[i+0] = byte(s)
		p[i+1] = byte(s >> 8)
		p[i+2] = byte(s)
		p[i+3] = byte(s >> 8)
	}
	return len(p), nil
}
