//go:build !tinygo && !periph

package hal

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	simPanelWidth  = 240
	simPanelHeight = 240
)

// NewPlatform returns the desktop simulator: an in-memory SPI host, a
// DCS panel whose GRAM is mirrored for the window, virtual pins and a
// simulated WiFi station.
func NewPlatform(log *slog.Logger) (*Platform, error) {
	log = orDiscard(log)
	panels := &simPanelDriver{}
	return &Platform{
		Name:    "simulator",
		SPI:     &simSPIHost{buses: busRegistry{}},
		Panels:  panels,
		Pins:    &simPins{log: log},
		Station: NewSimStation(SimStationConfig{}, log),
		Speaker: newHostSpeaker(),
		screen:  panels,
	}, nil
}

type simSPIHost struct {
	mu    sync.Mutex
	buses busRegistry
}

func (h *simSPIHost) InitBus(cfg BusConfig) (Bus, error) {
	if err := CheckBusConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Host > SPIHost3 {
		return nil, fmt.Errorf("%s: %w", cfg.Host, ErrUnknownBus)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.buses.claim(cfg.Host); err != nil {
		return nil, err
	}
	return &busHandle{cfg: cfg}, nil
}

type simPanelDriver struct {
	mu  sync.Mutex
	cur *simPanelIO
}

func (d *simPanelDriver) NewPanelIO(bus Bus, cfg PanelIOConfig) (PanelIO, error) {
	if _, ok := bus.(*busHandle); !ok {
		return nil, fmt.Errorf("panel io: %w: foreign bus", ErrInvalidConfig)
	}
	if !cfg.DC.Connected() {
		return nil, fmt.Errorf("panel io: %w: dc pin required", ErrInvalidConfig)
	}
	if cfg.Mode > 3 {
		return nil, fmt.Errorf("panel io: %w: spi mode %d", ErrInvalidConfig, cfg.Mode)
	}
	io := &simPanelIO{cfg: cfg}
	d.mu.Lock()
	d.cur = io
	d.mu.Unlock()
	return io, nil
}

func (d *simPanelDriver) NewPanel(io PanelIO, cfg PanelConfig) (Panel, error) {
	sio, ok := io.(*simPanelIO)
	if !ok {
		return nil, fmt.Errorf("panel: %w: foreign io", ErrInvalidConfig)
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = simPanelWidth
	}
	if h <= 0 {
		h = simPanelHeight
	}
	sio.attach(newHostFramebuffer(w, h))

	var rst GPIOPin
	if cfg.Reset.Connected() {
		rst = newVirtualPin(cfg.Reset.String(), GPIOCapOutput)
	}
	p, err := NewDCSPanel(io, cfg, rst)
	if err != nil {
		return nil, err
	}
	p.sleep = func(time.Duration) {}
	return p, nil
}

func (d *simPanelDriver) current() *simPanelIO {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cur
}

func (d *simPanelDriver) frameSize() (w, h int) {
	if io := d.current(); io != nil {
		if fb := io.framebuffer(); fb != nil {
			return fb.width, fb.height
		}
	}
	return simPanelWidth, simPanelHeight
}

func (d *simPanelDriver) snapshotRGB565(dst []byte) {
	io := d.current()
	if io == nil || !io.displayOn() {
		clear(dst)
		return
	}
	if fb := io.framebuffer(); fb != nil {
		fb.snapshotRGB565(dst)
	}
}

// simPanelIO decodes the DCS stream the way the controller would: it
// tracks the CASET/RASET window and lands RAMWR data in a framebuffer.
type simPanelIO struct {
	mu     sync.Mutex
	cfg    PanelIOConfig
	fb     *hostFramebuffer
	cmds   []byte
	x0, x1 int
	y0, y1 int
	invert bool
	on     bool
	closed bool
}

func (s *simPanelIO) attach(fb *hostFramebuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fb = fb
	s.x0, s.x1 = 0, fb.width-1
	s.y0, s.y1 = 0, fb.height-1
}

func (s *simPanelIO) TxParam(cmd byte, params []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.cmds = append(s.cmds, cmd)

	switch cmd {
	case dcsCASET:
		if len(params) < 4 {
			return fmt.Errorf("sim panel: caset: short params")
		}
		s.x0, s.x1 = int(params[0])<<8|int(params[1]), int(params[2])<<8|int(params[3])
	case dcsRASET:
		if len(params) < 4 {
			return fmt.Errorf("sim panel: raset: short params")
		}
		s.y0, s.y1 = int(params[0])<<8|int(params[1]), int(params[2])<<8|int(params[3])
	case dcsINVON, dcsINVOFF:
		s.invert = cmd == dcsINVON
	case dcsDISPON, dcsDISPOFF:
		s.on = cmd == dcsDISPON
	case dcsSWRESET:
		s.on = false
		s.invert = false
	}
	return nil
}

func (s *simPanelIO) TxColor(cmd byte, colors []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.cmds = append(s.cmds, cmd)
	fb := s.fb
	x0, y0, x1, y1 := s.x0, s.y0, s.x1+1, s.y1+1
	s.mu.Unlock()

	if cmd == dcsRAMWR && fb != nil {
		fb.blit(x0, y0, x1, y1, colors)
	}
	return nil
}

func (s *simPanelIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *simPanelIO) framebuffer() *hostFramebuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fb
}

func (s *simPanelIO) displayOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on && !s.closed
}

func (s *simPanelIO) commands() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.cmds...)
}

type simPins struct {
	log *slog.Logger
}

func (p *simPins) Output(pin Pin) (GPIOPin, error) {
	if !pin.Connected() {
		return nil, fmt.Errorf("gpio: %w: output pin not connected", ErrInvalidConfig)
	}
	v := newVirtualPin(pin.String(), gpioCapsAll)
	log := p.log
	v.onWrite = func(level bool) {
		log.Debug("gpio write", slog.String("pin", v.name), slog.Bool("level", level))
	}
	return v, nil
}

func (p *simPins) Button(pin Pin) (Button, error) {
	if !pin.Connected() {
		return nil, fmt.Errorf("gpio: %w: button pin not connected", ErrInvalidConfig)
	}
	b, err := newSimButton(pin, p.log)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// simButton is an active-low push button. Click presses and releases it;
// handlers run on the button's dispatch goroutine.
type simButton struct {
	mu       sync.Mutex
	pin      *virtualPin
	handlers []func()
	clicks   chan struct{}
	done     chan struct{}
	stop     sync.Once
	log      *slog.Logger
}

func newSimButton(pin Pin, log *slog.Logger) (*simButton, error) {
	v := newVirtualPin(pin.String(), GPIOCapInput|GPIOCapPullUp)
	if err := v.Configure(GPIOModeInput, GPIOPullUp); err != nil {
		return nil, err
	}
	b := &simButton{pin: v, clicks: make(chan struct{}, 8), done: make(chan struct{}), log: log}
	go b.dispatch()
	return b, nil
}

func (b *simButton) OnClick(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

func (b *simButton) Click() {
	b.pin.drive(false)
	b.pin.drive(true)
	select {
	case <-b.done:
	case b.clicks <- struct{}{}:
	default:
		b.log.Warn("button click dropped", slog.String("pin", b.pin.name))
	}
}

// Close stops the dispatch goroutine. Later clicks are ignored.
func (b *simButton) Close() error {
	b.stop.Do(func() { close(b.done) })
	return nil
}

func (b *simButton) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case <-b.clicks:
		}
		b.mu.Lock()
		handlers := append([]func(){}, b.handlers...)
		b.mu.Unlock()
		for _, fn := range handlers {
			fn()
		}
	}
}
