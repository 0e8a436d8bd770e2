//go:build !tinygo && periph

package hal

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// spidev transfers are capped by the kernel's default bufsiz.
const periphMaxTx = 4096

// NewPlatform returns the Linux single-board-computer platform: spidev for
// the bus and the GPIO character device for DC, reset, LED and BOOT. The
// board's pin numbers are looked up as "GPIO<n>" in the periph registry.
func NewPlatform(log *slog.Logger) (*Platform, error) {
	log = orDiscard(log)
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: %w", err)
	}
	return &Platform{
		Name:    "periph",
		SPI:     &periphSPIHost{buses: busRegistry{}},
		Panels:  periphPanelDriver{},
		Pins:    &periphPins{log: log},
		Station: NewSimStation(SimStationConfig{}, log),
		Speaker: newHostSpeaker(),
	}, nil
}

type periphSPIHost struct {
	mu    sync.Mutex
	buses busRegistry
}

type periphBus struct {
	busHandle
	port spi.PortCloser
}

// InitBus opens the kernel SPI port for cfg.Host. SPI2 maps to the first
// kernel port ("SPI0.0"), SPI3 to the second.
func (h *periphSPIHost) InitBus(cfg BusConfig) (Bus, error) {
	if err := CheckBusConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Host < SPIHost2 || cfg.Host > SPIHost3 {
		return nil, fmt.Errorf("%s: %w", cfg.Host, ErrUnknownBus)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.buses.claim(cfg.Host); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("SPI%d.0", int(cfg.Host-SPIHost2))
	port, err := spireg.Open(name)
	if err != nil {
		delete(h.buses, cfg.Host)
		return nil, fmt.Errorf("%s: open %s: %w", cfg.Host, name, err)
	}
	return &periphBus{busHandle: busHandle{cfg: cfg}, port: port}, nil
}

type periphPanelDriver struct{}

func (periphPanelDriver) NewPanelIO(bus Bus, cfg PanelIOConfig) (PanelIO, error) {
	pb, ok := bus.(*periphBus)
	if !ok {
		return nil, fmt.Errorf("panel io: %w: foreign bus", ErrInvalidConfig)
	}
	conn, err := pb.port.Connect(cfg.Clock, spi.Mode(cfg.Mode), 8)
	if err != nil {
		return nil, fmt.Errorf("panel io: connect: %w", err)
	}
	dc := gpioreg.ByName(cfg.DC.String())
	if dc == nil {
		return nil, fmt.Errorf("panel io: %w: no %s", ErrInvalidConfig, cfg.DC)
	}
	if err := dc.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("panel io: dc: %w", err)
	}
	// Chip select is driven by spidev.
	return &periphPanelIO{conn: conn, dc: dc}, nil
}

func (periphPanelDriver) NewPanel(io PanelIO, cfg PanelConfig) (Panel, error) {
	if _, ok := io.(*periphPanelIO); !ok {
		return nil, fmt.Errorf("panel: %w: foreign io", ErrInvalidConfig)
	}
	var rst GPIOPin
	if cfg.Reset.Connected() {
		p := gpioreg.ByName(cfg.Reset.String())
		if p == nil {
			return nil, fmt.Errorf("panel: %w: no %s", ErrInvalidConfig, cfg.Reset)
		}
		rst = &periphPin{p: p}
	}
	return NewDCSPanel(io, cfg, rst)
}

type periphPanelIO struct {
	mu     sync.Mutex
	conn   spi.Conn
	dc     gpio.PinIO
	closed bool
}

func (s *periphPanelIO) TxParam(cmd byte, params []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx(cmd, params)
}

func (s *periphPanelIO) TxColor(cmd byte, colors []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx(cmd, colors)
}

func (s *periphPanelIO) tx(cmd byte, data []byte) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := s.conn.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := s.dc.Out(gpio.High); err != nil {
		return err
	}
	for off := 0; off < len(data); off += periphMaxTx {
		end := min(off+periphMaxTx, len(data))
		if err := s.conn.Tx(data[off:end], nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *periphPanelIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type periphPins struct {
	log *slog.Logger
}

func (p *periphPins) Output(pin Pin) (GPIOPin, error) {
	gp := gpioreg.ByName(pin.String())
	if gp == nil {
		return nil, fmt.Errorf("gpio: %w: no %s", ErrInvalidConfig, pin)
	}
	return &periphPin{p: gp}, nil
}

func (p *periphPins) Button(pin Pin) (Button, error) {
	gp := gpioreg.ByName(pin.String())
	if gp == nil {
		return nil, fmt.Errorf("gpio: %w: no %s", ErrInvalidConfig, pin)
	}
	if err := gp.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("gpio: %s: %w", pin, err)
	}
	b := &periphButton{p: gp, log: p.log}
	go b.watch()
	return b, nil
}

type periphPin struct {
	p gpio.PinIO
}

func (p *periphPin) Name() string   { return p.p.Name() }
func (p *periphPin) Caps() GPIOCaps { return gpioCapsAll }

func (p *periphPin) Configure(mode GPIOMode, pull GPIOPull) error {
	switch mode {
	case GPIOModeOutput:
		return p.p.Out(gpio.Low)
	case GPIOModeInput:
		gp := gpio.Float
		switch pull {
		case GPIOPullUp:
			gp = gpio.PullUp
		case GPIOPullDown:
			gp = gpio.PullDown
		}
		return p.p.In(gp, gpio.NoEdge)
	}
	return fmt.Errorf("gpio: pin %s: invalid mode", p.p.Name())
}

func (p *periphPin) Read() (bool, error) { return p.p.Read() == gpio.High, nil }

func (p *periphPin) Write(level bool) error { return p.p.Out(gpio.Level(level)) }

// periphButton is an active-low button on an edge-triggered input.
type periphButton struct {
	mu       sync.Mutex
	p        gpio.PinIO
	handlers []func()
	closed   bool
	log      *slog.Logger
}

// Close ends the edge watcher. Halt unblocks a pending WaitForEdge.
func (b *periphButton) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return b.p.Halt()
}

func (b *periphButton) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *periphButton) OnClick(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Click fires the handlers as if the button had been pressed.
func (b *periphButton) Click() { go b.fire() }

func (b *periphButton) fire() {
	b.mu.Lock()
	handlers := append([]func(){}, b.handlers...)
	b.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

func (b *periphButton) watch() {
	for !b.isClosed() {
		if !b.p.WaitForEdge(-1) {
			continue
		}
		time.Sleep(20 * time.Millisecond)
		if b.p.Read() != gpio.Low {
			continue
		}
		for b.p.Read() == gpio.Low {
			time.Sleep(10 * time.Millisecond)
		}
		b.log.Debug("button click", slog.String("pin", b.p.Name()))
		b.fire()
	}
}
