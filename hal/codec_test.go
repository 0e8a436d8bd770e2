package hal

import (
	"errors"
	"testing"
)

type recordingSink struct {
	rate    int
	started int
	stopped int
	written []int16
}

func (s *recordingSink) Start(rate int) error {
	s.rate = rate
	s.started++
	return nil
}

func (s *recordingSink) WriteSamples(samples []int16) (int, error) {
	s.written = append(s.written, samples...)
	return len(samples), nil
}

func (s *recordingSink) Stop() error {
	s.stopped++
	return nil
}

var (
	testSpeaker = SpeakerPins{BCLK: 2, LRCK: 3, DOUT: 4}
	testMic     = MicPins{SCK: 5, WS: 6, DIN: 7}
)

func TestNoAudioCodecSimplexOutput(t *testing.T) {
	sink := &recordingSink{}
	c, err := NewNoAudioCodecSimplex(16000, 24000, testSpeaker, testMic, sink)
	if err != nil {
		t.Fatalf("NewNoAudioCodecSimplex: %v", err)
	}
	if c.InputSampleRate() != 16000 || c.OutputSampleRate() != 24000 {
		t.Fatalf("rates = %d/%d", c.InputSampleRate(), c.OutputSampleRate())
	}

	if _, err := c.Write([]int16{1}); !errors.Is(err, errStreamDisabled) {
		t.Fatalf("Write while disabled: %v", err)
	}
	if err := c.EnableOutput(true); err != nil {
		t.Fatalf("EnableOutput: %v", err)
	}
	if err := c.EnableOutput(true); err != nil {
		t.Fatalf("EnableOutput again: %v", err)
	}
	if sink.started != 1 || sink.rate != 24000 {
		t.Fatalf("sink started %d times at %d Hz", sink.started, sink.rate)
	}
	if n, err := c.Write([]int16{1, 2, 3}); err != nil || n != 3 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if err := c.EnableOutput(false); err != nil {
		t.Fatalf("EnableOutput(false): %v", err)
	}
	if sink.stopped != 1 || len(sink.written) != 3 {
		t.Fatalf("sink stopped=%d written=%v", sink.stopped, sink.written)
	}
}

func TestNoAudioCodecSimplexWithoutSink(t *testing.T) {
	c, err := NewNoAudioCodecSimplex(16000, 24000, testSpeaker, testMic, nil)
	if err != nil {
		t.Fatalf("NewNoAudioCodecSimplex: %v", err)
	}
	if err := c.EnableOutput(true); err != nil {
		t.Fatalf("EnableOutput: %v", err)
	}
	if n, err := c.Write(make([]int16, 10)); err != nil || n != 10 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if c.Dropped() != 10 {
		t.Fatalf("Dropped = %d, want 10", c.Dropped())
	}
}

func TestNoAudioCodecSimplexInput(t *testing.T) {
	c, err := NewNoAudioCodecSimplex(16000, 24000, testSpeaker, testMic, nil)
	if err != nil {
		t.Fatalf("NewNoAudioCodecSimplex: %v", err)
	}
	buf := []int16{7, 7, 7}
	if _, err := c.Read(buf); !errors.Is(err, errStreamDisabled) {
		t.Fatalf("Read while disabled: %v", err)
	}
	if err := c.EnableInput(true); err != nil {
		t.Fatalf("EnableInput: %v", err)
	}
	n, err := c.Read(buf)
	if err != nil || n != 3 {
		t.Fatalf("Read = %d, %v", n, err)
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %d, want silence", i, v)
		}
	}
}

func TestNoAudioCodecSimplexValidates(t *testing.T) {
	if _, err := NewNoAudioCodecSimplex(0, 24000, testSpeaker, testMic, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("zero rate: %v", err)
	}
	mic := testMic
	mic.DIN = NC
	if _, err := NewNoAudioCodecSimplex(16000, 24000, testSpeaker, mic, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("unwired mic: %v", err)
	}
}

func TestSingleLed(t *testing.T) {
	pin := newVirtualPin("GPIO8", GPIOCapOutput)
	led, err := NewSingleLed(pin)
	if err != nil {
		t.Fatalf("NewSingleLed: %v", err)
	}
	if led.IsOn() {
		t.Fatal("led starts on")
	}
	led.High()
	if level, _ := pin.Read(); !level || !led.IsOn() {
		t.Fatal("High did not drive the pin")
	}
	led.Low()
	if level, _ := pin.Read(); level || led.IsOn() {
		t.Fatal("Low did not release the pin")
	}

	if _, err := NewSingleLed(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("nil pin: %v", err)
	}
}
