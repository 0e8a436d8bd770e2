//go:build !tinygo && !periph

package hal

import (
	"errors"
	"image/color"
	"log/slog"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

func testBusConfig() BusConfig {
	return BusConfig{
		Host:            SPIHost2,
		MOSI:            10,
		MISO:            NC,
		SCLK:            1,
		QuadWP:          NC,
		QuadHD:          NC,
		MaxTransferSize: 240 * 240 * 2,
		DMA:             DMAAuto,
	}
}

func TestSimSPIHostClaimsOnce(t *testing.T) {
	p, err := NewPlatform(nil)
	if err != nil {
		t.Fatalf("NewPlatform: %v", err)
	}
	bus, err := p.SPI.InitBus(testBusConfig())
	if err != nil {
		t.Fatalf("InitBus: %v", err)
	}
	if bus.ID() != SPIHost2 {
		t.Fatalf("bus id = %s", bus.ID())
	}
	if _, err := p.SPI.InitBus(testBusConfig()); !errors.Is(err, ErrBusInUse) {
		t.Fatalf("second InitBus: %v", err)
	}

	cfg := testBusConfig()
	cfg.Host = 7
	if _, err := p.SPI.InitBus(cfg); !errors.Is(err, ErrUnknownBus) {
		t.Fatalf("unknown host: %v", err)
	}
	cfg = testBusConfig()
	cfg.SCLK = NC
	if _, err := p.SPI.InitBus(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("missing sclk: %v", err)
	}
}

func TestSimPanelLandsPixels(t *testing.T) {
	p, err := NewPlatform(nil)
	if err != nil {
		t.Fatalf("NewPlatform: %v", err)
	}
	bus, err := p.SPI.InitBus(testBusConfig())
	if err != nil {
		t.Fatalf("InitBus: %v", err)
	}
	io, err := p.Panels.NewPanelIO(bus, PanelIOConfig{CS: 0, DC: 21, Clock: 40 * physic.MegaHertz})
	if err != nil {
		t.Fatalf("NewPanelIO: %v", err)
	}
	panel, err := p.Panels.NewPanel(io, PanelConfig{Reset: NC, BitsPerPixel: 16, Width: 240, Height: 240})
	if err != nil {
		t.Fatalf("NewPanel: %v", err)
	}
	for _, step := range []func() error{panel.Reset, panel.Init, func() error { return panel.DisplayOn(true) }} {
		if err := step(); err != nil {
			t.Fatalf("bring-up: %v", err)
		}
	}

	d, err := NewSpiLcdDisplay(io, panel, 240, 240, 0, 0, false, false, false)
	if err != nil {
		t.Fatalf("NewSpiLcdDisplay: %v", err)
	}
	d.SetPixel(3, 4, color.RGBA{R: 0xFF, A: 0xFF})
	if err := d.Display(); err != nil {
		t.Fatalf("Display: %v", err)
	}

	sio := io.(*simPanelIO)
	if got := sio.framebuffer().pixel(3, 4); got != 0xF800 {
		t.Fatalf("pixel = %#04x, want 0xf800", got)
	}
	if !sio.displayOn() {
		t.Fatal("display not on")
	}

	w, h := p.screen.frameSize()
	snap := make([]byte, w*h*2)
	p.screen.snapshotRGB565(snap)
	if off := (4*w + 3) * 2; snap[off] != 0xF8 {
		t.Fatalf("snapshot byte = %#02x", snap[off])
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := io.TxParam(dcsDISPON, nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("TxParam after Close: %v", err)
	}
}

func TestSimPanelIORejectsMissingDC(t *testing.T) {
	p, err := NewPlatform(nil)
	if err != nil {
		t.Fatalf("NewPlatform: %v", err)
	}
	bus, err := p.SPI.InitBus(testBusConfig())
	if err != nil {
		t.Fatalf("InitBus: %v", err)
	}
	if _, err := p.Panels.NewPanelIO(bus, PanelIOConfig{CS: 0, DC: NC}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("missing dc: %v", err)
	}
}

func TestSimButtonClick(t *testing.T) {
	p, err := NewPlatform(nil)
	if err != nil {
		t.Fatalf("NewPlatform: %v", err)
	}
	b, err := p.Pins.Button(9)
	if err != nil {
		t.Fatalf("Button: %v", err)
	}
	clicked := make(chan struct{}, 1)
	b.OnClick(func() { clicked <- struct{}{} })
	b.(Clicker).Click()

	select {
	case <-clicked:
	case <-time.After(time.Second):
		t.Fatal("click handler did not run")
	}
}

func TestSimStationJoins(t *testing.T) {
	s := NewSimStation(SimStationConfig{SSID: "lab", ConnectDelay: time.Millisecond}, nil)
	if s.IsConnected() || s.IPAddress() != "0.0.0.0" {
		t.Fatal("station connected before Start")
	}
	s.Start()
	deadline := time.Now().Add(time.Second)
	for !s.IsConnected() {
		if time.Now().After(deadline) {
			t.Fatal("station never joined")
		}
		time.Sleep(time.Millisecond)
	}
	if s.SSID() != "lab" || s.RSSI() != -58 {
		t.Fatalf("ssid=%q rssi=%d", s.SSID(), s.RSSI())
	}
	s.Stop()
	if s.IsConnected() || s.SSID() != "" {
		t.Fatal("station still connected after Stop")
	}
	if starts, stops := s.Counts(); starts != 1 || stops != 1 {
		t.Fatalf("counts = %d/%d", starts, stops)
	}
}

func TestSimStationPowerSave(t *testing.T) {
	s := NewSimStation(SimStationConfig{}, nil)
	s.SetPowerSaveLevel(WifiPowerSavePerformance)
	if got := s.PowerSaveLevel(); got != WifiPowerSavePerformance {
		t.Fatalf("level = %s", got)
	}
}

func TestSimButtonClose(t *testing.T) {
	b, err := newSimButton(9, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("newSimButton: %v", err)
	}
	clicked := make(chan struct{}, 1)
	b.OnClick(func() { clicked <- struct{}{} })
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	b.Click()

	select {
	case <-clicked:
		t.Fatal("handler ran after Close")
	case <-time.After(20 * time.Millisecond):
	}
}
