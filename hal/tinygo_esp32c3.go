//go:build tinygo && esp32c3

package hal

import (
	"fmt"
	"log/slog"
	"machine"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/st7789"
)

// NewPlatform returns the ESP32-C3 platform. The SPI2 peripheral is
// exposed by TinyGo as machine.SPI0; there is no WiFi or I2S driver, so
// the station never joins and the codec has no sink.
func NewPlatform(log *slog.Logger) (*Platform, error) {
	log = orDiscard(log)
	return &Platform{
		Name:    "esp32c3",
		SPI:     &mcuSPIHost{buses: busRegistry{}},
		Panels:  mcuPanelDriver{},
		Pins:    mcuPins{log: log},
		Station: &nullStation{log: log},
	}, nil
}

type mcuSPIHost struct {
	mu    sync.Mutex
	buses busRegistry
}

type mcuBus struct {
	busHandle
	spi *machine.SPI
}

func (h *mcuSPIHost) InitBus(cfg BusConfig) (Bus, error) {
	if err := CheckBusConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Host != SPIHost2 {
		return nil, fmt.Errorf("%s: %w", cfg.Host, ErrUnknownBus)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.buses.claim(cfg.Host); err != nil {
		return nil, err
	}
	return &mcuBus{busHandle: busHandle{cfg: cfg}, spi: machine.SPI0}, nil
}

type mcuPanelDriver struct{}

// NewPanelIO clocks the bus at the panel's rate; the ESP32 driver fixes
// the clock per device rather than per bus.
func (mcuPanelDriver) NewPanelIO(bus Bus, cfg PanelIOConfig) (PanelIO, error) {
	mb, ok := bus.(*mcuBus)
	if !ok {
		return nil, fmt.Errorf("panel io: %w: foreign bus", ErrInvalidConfig)
	}
	if !cfg.DC.Connected() {
		return nil, fmt.Errorf("panel io: %w: dc not connected", ErrInvalidConfig)
	}
	bc := mb.Config()
	spiCfg := machine.SPIConfig{
		SCK:       mcuPin(bc.SCLK),
		SDO:       mcuPin(bc.MOSI),
		SDI:       mcuPin(bc.MISO),
		Frequency: uint32(cfg.Clock / physic.Hertz),
		Mode:      uint8(cfg.Mode),
	}
	if err := mb.spi.Configure(spiCfg); err != nil {
		return nil, fmt.Errorf("panel io: %w", err)
	}
	io := &mcuPanelIO{spi: mb.spi, cs: mcuPin(cfg.CS), dc: mcuPin(cfg.DC)}
	io.dc.Configure(machine.PinConfig{Mode: machine.PinOutput})
	io.dc.High()
	if io.cs != machine.NoPin {
		io.cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
		io.cs.High()
	}
	return io, nil
}

func (mcuPanelDriver) NewPanel(io PanelIO, cfg PanelConfig) (Panel, error) {
	mio, ok := io.(*mcuPanelIO)
	if !ok {
		return nil, fmt.Errorf("panel: %w: foreign io", ErrInvalidConfig)
	}
	if cfg.BitsPerPixel != 16 {
		return nil, fmt.Errorf("panel: %w: %d bpp", ErrUnsupported, cfg.BitsPerPixel)
	}
	// Reset is driven here, not by the driver's Configure.
	dev := st7789.New(mio.spi, machine.NoPin, mio.dc, mio.cs, machine.NoPin)
	p := &st7789Panel{io: mio, dev: &dev, cfg: cfg, rst: mcuPin(cfg.Reset)}
	p.rot.apply = p.dev.SetRotation
	if p.rst != machine.NoPin {
		p.rst.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.rst.High()
	}
	return p, nil
}

func mcuPin(p Pin) machine.Pin {
	if !p.Connected() {
		return machine.NoPin
	}
	return machine.Pin(p)
}

type mcuPanelIO struct {
	spi    *machine.SPI
	cs     machine.Pin
	dc     machine.Pin
	closed bool
}

func (s *mcuPanelIO) TxParam(cmd byte, params []byte) error { return s.tx(cmd, params) }
func (s *mcuPanelIO) TxColor(cmd byte, colors []byte) error { return s.tx(cmd, colors) }

func (s *mcuPanelIO) tx(cmd byte, data []byte) error {
	if s.closed {
		return ErrClosed
	}
	if s.cs != machine.NoPin {
		s.cs.Low()
		defer s.cs.High()
	}
	s.dc.Low()
	if _, err := s.spi.Transfer(cmd); err != nil {
		return err
	}
	s.dc.High()
	if len(data) == 0 {
		return nil
	}
	return s.spi.Tx(data, nil)
}

func (s *mcuPanelIO) Close() error {
	s.closed = true
	return nil
}

// st7789Panel drives the panel through the TinyGo st7789 driver. Swap and
// mirror flags are folded into one of the driver's four rotations, applied
// when the display turns on.
type st7789Panel struct {
	io    *mcuPanelIO
	dev   *st7789.Device
	cfg   PanelConfig
	rst   machine.Pin
	ready bool
	rot   rotationLatch
}

func (p *st7789Panel) Reset() error {
	if p.rst != machine.NoPin {
		p.rst.Low()
		time.Sleep(10 * time.Millisecond)
		p.rst.High()
		time.Sleep(dcsResetSettle)
		return nil
	}
	if err := p.io.TxParam(dcsSWRESET, nil); err != nil {
		return err
	}
	time.Sleep(dcsResetSettle)
	return nil
}

func (p *st7789Panel) Init() error {
	p.dev.Configure(st7789.Config{
		Width:    int16(p.cfg.Width),
		Height:   int16(p.cfg.Height),
		Rotation: drivers.Rotation0,
	})
	p.dev.IsBGR(p.cfg.ColorOrder == ColorOrderBGR)
	p.ready = true
	return nil
}

func (p *st7789Panel) InvertColor(on bool) error {
	if !p.ready {
		return ErrNotReady
	}
	p.dev.InvertColors(on)
	return nil
}

func (p *st7789Panel) SwapXY(swap bool) error {
	if !p.ready {
		return ErrNotReady
	}
	return p.rot.setSwap(swap)
}

func (p *st7789Panel) Mirror(x, y bool) error {
	if !p.ready {
		return ErrNotReady
	}
	return p.rot.setMirror(x, y)
}

func (p *st7789Panel) DisplayOn(on bool) error {
	if !p.ready {
		return ErrNotReady
	}
	if err := p.rot.setOn(on); err != nil {
		return err
	}
	if on {
		return p.io.TxParam(dcsDISPON, nil)
	}
	return p.io.TxParam(dcsDISPOFF, nil)
}

func (p *st7789Panel) DrawBitmap(x0, y0, x1, y1 int, data []byte) error {
	if !p.ready {
		return ErrNotReady
	}
	return p.dev.DrawRGBBitmap8(int16(x0), int16(y0), data, int16(x1-x0), int16(y1-y0))
}

func (p *st7789Panel) Close() error {
	p.ready = false
	return nil
}

type mcuPins struct {
	log *slog.Logger
}

func (m mcuPins) Output(p Pin) (GPIOPin, error) {
	if !p.Connected() {
		return nil, fmt.Errorf("gpio: %w: pin not connected", ErrInvalidConfig)
	}
	return &mcuGPIO{pin: machine.Pin(p), name: p.String()}, nil
}

func (m mcuPins) Button(p Pin) (Button, error) {
	if !p.Connected() {
		return nil, fmt.Errorf("gpio: %w: pin not connected", ErrInvalidConfig)
	}
	pin := machine.Pin(p)
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	b := &mcuButton{pin: pin, log: m.log}
	go b.poll()
	return b, nil
}

type mcuGPIO struct {
	pin  machine.Pin
	name string
}

func (g *mcuGPIO) Name() string   { return g.name }
func (g *mcuGPIO) Caps() GPIOCaps { return gpioCapsAll }

func (g *mcuGPIO) Configure(mode GPIOMode, pull GPIOPull) error {
	switch mode {
	case GPIOModeOutput:
		g.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	case GPIOModeInput:
		m := machine.PinInput
		switch pull {
		case GPIOPullUp:
			m = machine.PinInputPullup
		case GPIOPullDown:
			m = machine.PinInputPulldown
		}
		g.pin.Configure(machine.PinConfig{Mode: m})
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", g.name)
	}
	return nil
}

func (g *mcuGPIO) Read() (bool, error) { return g.pin.Get(), nil }

func (g *mcuGPIO) Write(level bool) error {
	g.pin.Set(level)
	return nil
}

// mcuButton polls an active-low input. A click is a debounced press
// followed by a release.
type mcuButton struct {
	mu       sync.Mutex
	pin      machine.Pin
	handlers []func()
	log      *slog.Logger
}

func (b *mcuButton) OnClick(fn func()) {
	b.mu.Lock()
	b.handlers = append(b.handlers, fn)
	b.mu.Unlock()
}

func (b *mcuButton) poll() {
	const (
		period   = 10 * time.Millisecond
		debounce = 3
	)
	low := 0
	pressed := false
	for {
		time.Sleep(period)
		if !b.pin.Get() {
			low++
			if low >= debounce {
				pressed = true
			}
			continue
		}
		low = 0
		if pressed {
			pressed = false
			b.fire()
		}
	}
}

func (b *mcuButton) fire() {
	b.mu.Lock()
	handlers := append([]func(){}, b.handlers...)
	b.mu.Unlock()
	b.log.Debug("button click")
	for _, fn := range handlers {
		fn()
	}
}

// nullStation stands in for the radio; it never associates.
type nullStation struct {
	mu    sync.Mutex
	log   *slog.Logger
	level WifiPowerSaveLevel
}

func (s *nullStation) Start()            { s.log.Warn("wifi: no station driver on this target") }
func (s *nullStation) Stop()             {}
func (s *nullStation) IsConnected() bool { return false }
func (s *nullStation) SSID() string      { return "" }
func (s *nullStation) IPAddress() string { return "0.0.0.0" }
func (s *nullStation) RSSI() int         { return 0 }

func (s *nullStation) SetPowerSaveLevel(l WifiPowerSaveLevel) {
	s.mu.Lock()
	s.level = l
	s.mu.Unlock()
	s.log.Info("wifi power save", slog.String("level", l.String()))
}
