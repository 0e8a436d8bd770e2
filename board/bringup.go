package board

import (
	"errors"
	"fmt"

	"supermini/hal"
)

// InitializeBus brings up the shared SPI bus. It is called once per
// process, before any device on the bus is constructed.
func InitializeBus(host hal.SPIHost, cfg hal.BusConfig) (hal.Bus, error) {
	if host == nil {
		return nil, fmt.Errorf("init bus %s: %w: no spi host", cfg.Host, hal.ErrUnsupported)
	}
	if err := hal.CheckBusConfig(cfg); err != nil {
		return nil, fmt.Errorf("init bus %s: %w", cfg.Host, err)
	}
	bus, err := host.InitBus(cfg)
	if err != nil {
		return nil, fmt.Errorf("init bus %s: %w", cfg.Host, err)
	}
	return bus, nil
}

// BringUpDisplay attaches the panel to bus and runs its power-on sequence:
// reset, init, invert, swap, mirror, display on. On any failure the panel
// and IO handles created so far are released and no display is returned.
func BringUpDisplay(driver hal.PanelDriver, bus hal.Bus, cfg DisplayConfig) (*hal.SpiLcdDisplay, error) {
	io, err := driver.NewPanelIO(bus, cfg.panelIOConfig())
	if err != nil {
		return nil, fmt.Errorf("display: panel io: %w", err)
	}
	panel, err := driver.NewPanel(io, cfg.panelConfig())
	if err != nil {
		return nil, errors.Join(fmt.Errorf("display: panel: %w", err), io.Close())
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"reset", panel.Reset},
		{"init", panel.Init},
		{"invert", func() error { return panel.InvertColor(cfg.InvertColor) }},
		{"swap_xy", func() error { return panel.SwapXY(cfg.SwapXY) }},
		{"mirror", func() error { return panel.Mirror(cfg.MirrorX, cfg.MirrorY) }},
		{"display_on", func() error { return panel.DisplayOn(true) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return nil, errors.Join(fmt.Errorf("display: %s: %w", s.name, err), panel.Close(), io.Close())
		}
	}

	d, err := hal.NewSpiLcdDisplay(io, panel,
		cfg.Width, cfg.Height, cfg.OffsetX, cfg.OffsetY,
		cfg.MirrorX, cfg.MirrorY, cfg.SwapXY)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("display: %w", err), panel.Close(), io.Close())
	}
	return d, nil
}
