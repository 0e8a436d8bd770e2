package board

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"

	"supermini/hal"
)

// Config is the board wiring, one section per peripheral.
type Config struct {
	Bus      hal.BusConfig  `mapstructure:"bus"`
	Display  DisplayConfig  `mapstructure:"display"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Led      LedConfig      `mapstructure:"led"`
	Button   ButtonConfig   `mapstructure:"button"`
	Identity IdentityConfig `mapstructure:"identity"`
	Report   ReportConfig   `mapstructure:"report"`
}

// DisplayConfig describes the panel, its IO channel and the logical screen.
type DisplayConfig struct {
	CS         hal.Pin     `mapstructure:"cs"`
	DC         hal.Pin     `mapstructure:"dc"`
	Reset      hal.Pin     `mapstructure:"reset"`
	SPIMode    hal.SPIMode `mapstructure:"spi_mode"`
	ClockHz    int64       `mapstructure:"clock_hz"`
	CmdBits    int         `mapstructure:"cmd_bits"`
	ParamBits  int         `mapstructure:"param_bits"`
	QueueDepth int         `mapstructure:"queue_depth"`

	BGR          bool `mapstructure:"bgr"`
	BitsPerPixel int  `mapstructure:"bits_per_pixel"`

	Width       int  `mapstructure:"width"`
	Height      int  `mapstructure:"height"`
	OffsetX     int  `mapstructure:"offset_x"`
	OffsetY     int  `mapstructure:"offset_y"`
	MirrorX     bool `mapstructure:"mirror_x"`
	MirrorY     bool `mapstructure:"mirror_y"`
	SwapXY      bool `mapstructure:"swap_xy"`
	InvertColor bool `mapstructure:"invert_color"`
}

// AudioConfig wires the simplex I2S amplifier and microphone.
type AudioConfig struct {
	InputSampleRate  int             `mapstructure:"input_sample_rate"`
	OutputSampleRate int             `mapstructure:"output_sample_rate"`
	Speaker          hal.SpeakerPins `mapstructure:"speaker"`
	Mic              hal.MicPins     `mapstructure:"mic"`
}

type LedConfig struct {
	Pin hal.Pin `mapstructure:"pin"`
}

type ButtonConfig struct {
	Boot hal.Pin `mapstructure:"boot"`
}

// IdentityConfig is reported in the board JSON. An empty UUID is replaced
// by a random one at construction.
type IdentityConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	UUID    string `mapstructure:"uuid"`
}

// ReportConfig points the status publisher at an MQTT broker. An empty
// Broker disables publishing.
type ReportConfig struct {
	Broker   string        `mapstructure:"broker"`
	Topic    string        `mapstructure:"topic"`
	Interval time.Duration `mapstructure:"interval"`
}

const (
	displayWidth  = 240
	displayHeight = 240
)

// DefaultConfig returns the ESP32-C3 SuperMini wiring.
func DefaultConfig() Config {
	return Config{
		Bus: hal.BusConfig{
			Host:            hal.SPIHost2,
			MOSI:            10,
			MISO:            hal.NC,
			SCLK:            1,
			QuadWP:          hal.NC,
			QuadHD:          hal.NC,
			MaxTransferSize: displayWidth * displayHeight * 2,
			DMA:             hal.DMAAuto,
		},
		Display: DisplayConfig{
			CS:           0,
			DC:           21,
			Reset:        hal.NC,
			SPIMode:      0,
			ClockHz:      40_000_000,
			CmdBits:      8,
			ParamBits:    8,
			QueueDepth:   10,
			BitsPerPixel: 16,
			Width:        displayWidth,
			Height:       displayHeight,
			InvertColor:  true,
		},
		Audio: AudioConfig{
			InputSampleRate:  16000,
			OutputSampleRate: 24000,
			Speaker:          hal.SpeakerPins{BCLK: 2, LRCK: 3, DOUT: 4},
			Mic:              hal.MicPins{SCK: 5, WS: 6, DIN: 7},
		},
		Led:    LedConfig{Pin: 8},
		Button: ButtonConfig{Boot: 9},
		Identity: IdentityConfig{
			Name:    "ESP32-C3 SuperMini",
			Version: "1.0",
		},
		Report: ReportConfig{
			Topic:    "supermini/status",
			Interval: 30 * time.Second,
		},
	}
}

// Validate checks the fields bring-up depends on.
func (c Config) Validate() error {
	if err := hal.CheckBusConfig(c.Bus); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	d := c.Display
	if !d.DC.Connected() {
		return fmt.Errorf("config: display: %w: dc pin required", hal.ErrInvalidConfig)
	}
	if d.SPIMode > 3 {
		return fmt.Errorf("config: display: %w: spi mode %d", hal.ErrInvalidConfig, d.SPIMode)
	}
	if d.ClockHz <= 0 {
		return fmt.Errorf("config: display: %w: clock %d Hz", hal.ErrInvalidConfig, d.ClockHz)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("config: display: %w: size %dx%d", hal.ErrInvalidConfig, d.Width, d.Height)
	}
	if need := d.Width * d.Height * d.BitsPerPixel / 8; need > c.Bus.MaxTransferSize {
		return fmt.Errorf("config: display: %w: frame of %d bytes exceeds bus transfer size %d",
			hal.ErrInvalidConfig, need, c.Bus.MaxTransferSize)
	}
	if c.Audio.InputSampleRate <= 0 || c.Audio.OutputSampleRate <= 0 {
		return fmt.Errorf("config: audio: %w: sample rates %d/%d",
			hal.ErrInvalidConfig, c.Audio.InputSampleRate, c.Audio.OutputSampleRate)
	}
	if !c.Led.Pin.Connected() {
		return fmt.Errorf("config: led: %w: pin required", hal.ErrInvalidConfig)
	}
	if !c.Button.Boot.Connected() {
		return fmt.Errorf("config: button: %w: boot pin required", hal.ErrInvalidConfig)
	}
	if c.Report.Broker != "" && c.Report.Interval <= 0 {
		return fmt.Errorf("config: report: %w: interval %s", hal.ErrInvalidConfig, c.Report.Interval)
	}
	return nil
}

func (d DisplayConfig) panelIOConfig() hal.PanelIOConfig {
	return hal.PanelIOConfig{
		CS:         d.CS,
		DC:         d.DC,
		Mode:       d.SPIMode,
		Clock:      physic.Frequency(d.ClockHz) * physic.Hertz,
		CmdBits:    d.CmdBits,
		ParamBits:  d.ParamBits,
		QueueDepth: d.QueueDepth,
	}
}

func (d DisplayConfig) panelConfig() hal.PanelConfig {
	order := hal.ColorOrderRGB
	if d.BGR {
		order = hal.ColorOrderBGR
	}
	return hal.PanelConfig{
		Reset:        d.Reset,
		ColorOrder:   order,
		BitsPerPixel: d.BitsPerPixel,
		Width:        d.Width,
		Height:       d.Height,
	}
}
