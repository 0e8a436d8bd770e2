package hal

import (
	"errors"
	"fmt"
	"sync"
)

var errStreamDisabled = errors.New("stream disabled")

// AudioSink plays mono 16-bit PCM.
type AudioSink interface {
	Start(sampleRate int) error
	WriteSamples(samples []int16) (int, error)
	Stop() error
}

// AudioCodec is the board's audio capability.
type AudioCodec interface {
	InputSampleRate() int
	OutputSampleRate() int
	EnableInput(enable bool) error
	EnableOutput(enable bool) error
	Read(dst []int16) (int, error)
	Write(src []int16) (int, error)
}

// SpeakerPins wires an I2S amplifier.
type SpeakerPins struct {
	BCLK Pin `mapstructure:"bclk"`
	LRCK Pin `mapstructure:"lrck"`
	DOUT Pin `mapstructure:"dout"`
}

// MicPins wires an I2S microphone.
type MicPins struct {
	SCK Pin `mapstructure:"sck"`
	WS  Pin `mapstructure:"ws"`
	DIN Pin `mapstructure:"din"`
}

// NoAudioCodecSimplex drives a speaker amplifier and a microphone on two
// separate I2S links without a codec chip in between.
type NoAudioCodecSimplex struct {
	mu      sync.Mutex
	inRate  int
	outRate int
	speaker SpeakerPins
	mic     MicPins
	sink    AudioSink

	inputOn  bool
	outputOn bool
	dropped  int
}

// NewNoAudioCodecSimplex validates the wiring. sink may be nil, in which
// case written samples are counted and discarded.
func NewNoAudioCodecSimplex(inRate, outRate int, speaker SpeakerPins, mic MicPins, sink AudioSink) (*NoAudioCodecSimplex, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("codec: %w: sample rates %d/%d", ErrInvalidConfig, inRate, outRate)
	}
	for _, p := range []Pin{speaker.BCLK, speaker.LRCK, speaker.DOUT, mic.SCK, mic.WS, mic.DIN} {
		if !p.Connected() {
			return nil, fmt.Errorf("codec: %w: i2s pin not connected", ErrInvalidConfig)
		}
	}
	return &NoAudioCodecSimplex{
		inRate:  inRate,
		outRate: outRate,
		speaker: speaker,
		mic:     mic,
		sink:    sink,
	}, nil
}

func (c *NoAudioCodecSimplex) InputSampleRate() int  { return c.inRate }
func (c *NoAudioCodecSimplex) OutputSampleRate() int { return c.outRate }
func (c *NoAudioCodecSimplex) SpeakerPins() SpeakerPins {
	return c.speaker
}
func (c *NoAudioCodecSimplex) MicPins() MicPins { return c.mic }

func (c *NoAudioCodecSimplex) EnableInput(enable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputOn = enable
	return nil
}

func (c *NoAudioCodecSimplex) EnableOutput(enable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enable == c.outputOn {
		return nil
	}
	if c.sink != nil {
		var err error
		if enable {
			err = c.sink.Start(c.outRate)
		} else {
			err = c.sink.Stop()
		}
		if err != nil {
			return fmt.Errorf("codec: output: %w", err)
		}
	}
	c.outputOn = enable
	return nil
}

// Read fills dst with silence. No microphone capture path exists yet.
func (c *NoAudioCodecSimplex) Read(dst []int16) (int, error) {
	c.mu.Lock()
	on := c.inputOn
	c.mu.Unlock()
	if !on {
		return 0, fmt.Errorf("codec: input: %w", errStreamDisabled)
	}
	clear(dst)
	return len(dst), nil
}

func (c *NoAudioCodecSimplex) Write(src []int16) (int, error) {
	c.mu.Lock()
	on, sink := c.outputOn, c.sink
	if on && sink == nil {
		c.dropped += len(src)
	}
	c.mu.Unlock()

	if !on {
		return 0, fmt.Errorf("codec: output: %w", errStreamDisabled)
	}
	if sink == nil {
		return len(src), nil
	}
	return sink.WriteSamples(src)
}

// Dropped reports samples discarded for lack of a sink.
func (c *NoAudioCodecSimplex) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
