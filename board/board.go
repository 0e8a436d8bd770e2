// Package board composes the ESP32-C3 SuperMini from platform primitives:
// the SPI bus, the ST7789 display, the status LED, the I2S audio pair, the
// BOOT button and the WiFi station.
package board

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"supermini/app"
	"supermini/hal"
)

// Type is the fixed board identifier.
const Type = "esp32c3-supermini"

// Lifecycle is the application state the BOOT button consults.
type Lifecycle interface {
	DeviceState() app.DeviceState
	ToggleChatState()
}

// Fatal handles bring-up failures reported through MustNew. Mains replace
// it to exit or halt; the default logs and panics.
var Fatal = func(log *slog.Logger, err error) {
	log.Error("board: fatal", slog.Any("err", err))
	panic(err)
}

// Board owns the display and the WiFi station. The LED and the codec are
// process-wide and outlive any one Board.
type Board struct {
	cfg     Config
	log     *slog.Logger
	uuid    string
	pins    hal.PinDriver
	speaker hal.AudioSink
	station hal.WifiStation
	life    Lifecycle

	bus     hal.Bus
	display *hal.SpiLcdDisplay
	button  hal.Button

	sleep func(time.Duration)
}

// New brings the board up on p: bus, display, then the BOOT button. life
// is the application the button drives; nil means app.GetInstance().
func New(p *hal.Platform, cfg Config, life Lifecycle, log *slog.Logger) (*Board, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if p == nil {
		return nil, fmt.Errorf("board: %w: nil platform", hal.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	if p.Station == nil || p.Pins == nil || p.Panels == nil {
		return nil, fmt.Errorf("board: %w: platform %s is incomplete", hal.ErrUnsupported, p.Name)
	}
	if life == nil {
		life = app.GetInstance()
	}

	id := cfg.Identity.UUID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("board: identity uuid %q: %w", id, err)
	}

	b := &Board{
		cfg:     cfg,
		log:     log,
		uuid:    id,
		pins:    p.Pins,
		speaker: p.Speaker,
		station: p.Station,
		life:    life,
		sleep:   time.Sleep,
	}

	bus, err := InitializeBus(p.SPI, cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	b.bus = bus
	log.Debug("board: bus ready", slog.String("bus", bus.ID().String()))

	display, err := BringUpDisplay(p.Panels, bus, cfg.Display)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	b.display = display
	log.Debug("board: display ready",
		slog.Int("width", cfg.Display.Width),
		slog.Int("height", cfg.Display.Height))

	button, err := p.Pins.Button(cfg.Button.Boot)
	if err != nil {
		_ = display.Close()
		return nil, fmt.Errorf("board: boot button: %w", err)
	}
	button.OnClick(b.handleClick)
	b.button = button

	log.Info("board: ready", slog.String("platform", p.Name), slog.String("uuid", id))
	return b, nil
}

// MustNew is New with failures routed to Fatal.
func MustNew(p *hal.Platform, cfg Config, life Lifecycle, log *slog.Logger) *Board {
	b, err := New(p, cfg, life, log)
	if err != nil {
		if log == nil {
			log = slog.New(slog.DiscardHandler)
		}
		Fatal(log, err)
		return nil
	}
	return b
}

// Close stops the station and the BOOT button, then releases the display.
func (b *Board) Close() error {
	b.station.Stop()
	var errs []error
	if c, ok := b.button.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, b.display.Close())
	return errors.Join(errs...)
}

// Display returns the board-owned display. It is unusable after Close.
func (b *Board) Display() *hal.SpiLcdDisplay { return b.display }

// Led returns the process-wide status LED, creating it on first use.
func (b *Board) Led() hal.LED {
	led, err := ledSlot.get(func() (*hal.SingleLed, error) {
		pin, err := b.pins.Output(b.cfg.Led.Pin)
		if err != nil {
			return nil, err
		}
		return hal.NewSingleLed(pin)
	})
	if err != nil {
		Fatal(b.log, fmt.Errorf("board: led: %w", err))
		return nil
	}
	return led
}

// AudioCodec returns the process-wide I2S codec, creating it on first use.
func (b *Board) AudioCodec() hal.AudioCodec {
	codec, err := codecSlot.get(func() (*hal.NoAudioCodecSimplex, error) {
		a := b.cfg.Audio
		return hal.NewNoAudioCodecSimplex(a.InputSampleRate, a.OutputSampleRate, a.Speaker, a.Mic, b.speaker)
	})
	if err != nil {
		Fatal(b.log, fmt.Errorf("board: audio codec: %w", err))
		return nil
	}
	return codec
}

// Network reports no generic network interface. The WiFi station is used
// internally for status and the BOOT button only.
func (b *Board) Network() (hal.NetworkInterface, bool) { return nil, false }

// Button returns the BOOT button.
func (b *Board) Button() hal.Button { return b.button }

// StartNetwork starts the WiFi station.
func (b *Board) StartNetwork() { b.station.Start() }

func (b *Board) NetworkConnected() bool { return b.station.IsConnected() }

// UUID is the board identity reported in BoardJSON.
func (b *Board) UUID() string { return b.uuid }
