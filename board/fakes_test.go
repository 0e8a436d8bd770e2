package board

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"supermini/app"
	"supermini/hal"
)

var errInjected = errors.New("injected failure")

// callLog records calls across fakes in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeHost struct {
	log   *callLog
	err   error
	inits map[hal.BusID]bool
}

func (h *fakeHost) InitBus(cfg hal.BusConfig) (hal.Bus, error) {
	h.log.add("init_bus")
	if h.err != nil {
		return nil, h.err
	}
	if h.inits == nil {
		h.inits = map[hal.BusID]bool{}
	}
	if h.inits[cfg.Host] {
		return nil, fmt.Errorf("%s: %w", cfg.Host, hal.ErrBusInUse)
	}
	h.inits[cfg.Host] = true
	return fakeBus{cfg: cfg}, nil
}

type fakeBus struct{ cfg hal.BusConfig }

func (b fakeBus) ID() hal.BusID         { return b.cfg.Host }
func (b fakeBus) Config() hal.BusConfig { return b.cfg }

// fakeDriver hands out a recording IO and panel. failAt names the call
// that returns errInjected.
type fakeDriver struct {
	log    *callLog
	failAt string

	ioCfg    hal.PanelIOConfig
	panelCfg hal.PanelConfig
	io       *fakeIO
	panel    *fakePanel
}

func (d *fakeDriver) NewPanelIO(bus hal.Bus, cfg hal.PanelIOConfig) (hal.PanelIO, error) {
	d.log.add("panel_io")
	if d.failAt == "panel_io" {
		return nil, errInjected
	}
	d.ioCfg = cfg
	d.io = &fakeIO{log: d.log}
	return d.io, nil
}

func (d *fakeDriver) NewPanel(io hal.PanelIO, cfg hal.PanelConfig) (hal.Panel, error) {
	d.log.add("panel")
	if d.failAt == "panel" {
		return nil, errInjected
	}
	d.panelCfg = cfg
	d.panel = &fakePanel{log: d.log, failAt: d.failAt}
	return d.panel, nil
}

type fakeIO struct {
	log    *callLog
	closed bool
}

func (f *fakeIO) TxParam(cmd byte, params []byte) error { return nil }
func (f *fakeIO) TxColor(cmd byte, colors []byte) error { return nil }

func (f *fakeIO) Close() error {
	f.log.add("io.close")
	f.closed = true
	return nil
}

type fakePanel struct {
	log    *callLog
	failAt string
	closed bool
	args   []string
}

func (p *fakePanel) step(name string) error {
	p.log.add(name)
	if p.failAt == name {
		return errInjected
	}
	return nil
}

func (p *fakePanel) Reset() error { return p.step("reset") }
func (p *fakePanel) Init() error  { return p.step("init") }

func (p *fakePanel) InvertColor(on bool) error {
	p.args = append(p.args, fmt.Sprintf("invert=%t", on))
	return p.step("invert")
}

func (p *fakePanel) SwapXY(swap bool) error {
	p.args = append(p.args, fmt.Sprintf("swap=%t", swap))
	return p.step("swap_xy")
}

func (p *fakePanel) Mirror(x, y bool) error {
	p.args = append(p.args, fmt.Sprintf("mirror=%t,%t", x, y))
	return p.step("mirror")
}

func (p *fakePanel) DisplayOn(on bool) error {
	p.args = append(p.args, fmt.Sprintf("on=%t", on))
	return p.step("display_on")
}

func (p *fakePanel) DrawBitmap(x0, y0, x1, y1 int, data []byte) error { return nil }

func (p *fakePanel) Close() error {
	p.log.add("panel.close")
	p.closed = true
	return nil
}

type fakePins struct {
	outputs   int
	outputErr error
	button    *fakeButton
}

func (p *fakePins) Output(pin hal.Pin) (hal.GPIOPin, error) {
	p.outputs++
	if p.outputErr != nil {
		return nil, p.outputErr
	}
	return &fakePin{name: pin.String()}, nil
}

func (p *fakePins) Button(pin hal.Pin) (hal.Button, error) {
	if p.button == nil {
		p.button = &fakeButton{}
	}
	return p.button, nil
}

type fakePin struct {
	name  string
	level bool
}

func (p *fakePin) Name() string                               { return p.name }
func (p *fakePin) Caps() hal.GPIOCaps                         { return hal.GPIOCapOutput }
func (p *fakePin) Configure(hal.GPIOMode, hal.GPIOPull) error { return nil }
func (p *fakePin) Read() (bool, error)                        { return p.level, nil }

func (p *fakePin) Write(level bool) error {
	p.level = level
	return nil
}

type fakeButton struct {
	handlers []func()
	closed   bool
}

func (b *fakeButton) OnClick(fn func()) { b.handlers = append(b.handlers, fn) }

func (b *fakeButton) Close() error {
	b.closed = true
	return nil
}

func (b *fakeButton) click() {
	for _, fn := range b.handlers {
		fn()
	}
}

type fakeStation struct {
	log       *callLog
	connected bool
	ssid      string
	ip        string
	rssi      int
	level     hal.WifiPowerSaveLevel
}

func (s *fakeStation) Start()            { s.log.add("start") }
func (s *fakeStation) Stop()             { s.log.add("stop") }
func (s *fakeStation) IsConnected() bool { return s.connected }
func (s *fakeStation) SSID() string      { return s.ssid }
func (s *fakeStation) IPAddress() string { return s.ip }
func (s *fakeStation) RSSI() int         { return s.rssi }

func (s *fakeStation) SetPowerSaveLevel(level hal.WifiPowerSaveLevel) { s.level = level }

type fakeLife struct {
	log     *callLog
	state   app.DeviceState
	toggles int
}

func (l *fakeLife) DeviceState() app.DeviceState { return l.state }

func (l *fakeLife) ToggleChatState() {
	l.log.add("toggle")
	l.toggles++
}

// rig is a board wired to fakes.
type rig struct {
	log     *callLog
	host    *fakeHost
	driver  *fakeDriver
	pins    *fakePins
	station *fakeStation
	life    *fakeLife
	board   *Board
}

func newRig() *rig {
	log := &callLog{}
	return &rig{
		log:     log,
		host:    &fakeHost{log: log},
		driver:  &fakeDriver{log: log},
		pins:    &fakePins{},
		station: &fakeStation{log: log},
		life:    &fakeLife{log: log},
	}
}

func (r *rig) platform() *hal.Platform {
	return &hal.Platform{
		Name:    "fake",
		SPI:     r.host,
		Panels:  r.driver,
		Pins:    r.pins,
		Station: r.station,
	}
}

func (r *rig) build(cfg Config) (*Board, error) {
	b, err := New(r.platform(), cfg, r.life, nil)
	if err != nil {
		return nil, err
	}
	b.sleep = func(d time.Duration) { r.log.add("sleep " + d.String()) }
	r.board = b
	return b, nil
}
