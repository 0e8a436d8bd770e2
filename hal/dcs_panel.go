package hal

import (
	"fmt"
	"time"
)

// MIPI DCS commands used by ST7789-class controllers.
const (
	dcsSWRESET = 0x01
	dcsSLPOUT  = 0x11
	dcsINVOFF  = 0x20
	dcsINVON   = 0x21
	dcsDISPOFF = 0x28
	dcsDISPON  = 0x29
	dcsCASET   = 0x2A
	dcsRASET   = 0x2B
	dcsRAMWR   = 0x2C
	dcsMADCTL  = 0x36
	dcsCOLMOD  = 0x3A

	madctlMY  = 0x80
	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlBGR = 0x08
)

// The controller ignores SLPOUT for 120 ms after either reset.
const dcsResetSettle = 150 * time.Millisecond

// DCSPanel drives a MIPI-DCS controller such as the ST7789 through a PanelIO.
type DCSPanel struct {
	io     PanelIO
	rst    GPIOPin
	madctl byte
	colmod byte
	ready  bool

	sleep func(time.Duration)
}

// NewDCSPanel returns a panel on io. rst may be nil, in which case Reset
// falls back to SWRESET.
func NewDCSPanel(io PanelIO, cfg PanelConfig, rst GPIOPin) (*DCSPanel, error) {
	if io == nil {
		return nil, fmt.Errorf("dcs panel: %w: nil io", ErrInvalidConfig)
	}

	var colmod byte
	switch cfg.BitsPerPixel {
	case 16:
		colmod = 0x55
	case 18:
		colmod = 0x66
	default:
		return nil, fmt.Errorf("dcs panel: %w: %d bits per pixel", ErrUnsupported, cfg.BitsPerPixel)
	}

	p := &DCSPanel{io: io, rst: rst, colmod: colmod, sleep: time.Sleep}
	if cfg.ColorOrder == ColorOrderBGR {
		p.madctl |= madctlBGR
	}
	if rst != nil {
		if err := rst.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
			return nil, fmt.Errorf("dcs panel: reset pin: %w", err)
		}
		if err := rst.Write(true); err != nil {
			return nil, fmt.Errorf("dcs panel: reset pin: %w", err)
		}
	}
	return p, nil
}

func (p *DCSPanel) Reset() error {
	p.ready = false
	if p.rst != nil {
		if err := p.rst.Write(false); err != nil {
			return fmt.Errorf("dcs panel: reset: %w", err)
		}
		p.sleep(10 * time.Millisecond)
		if err := p.rst.Write(true); err != nil {
			return fmt.Errorf("dcs panel: reset: %w", err)
		}
		p.sleep(dcsResetSettle)
		return nil
	}
	if err := p.io.TxParam(dcsSWRESET, nil); err != nil {
		return fmt.Errorf("dcs panel: swreset: %w", err)
	}
	p.sleep(dcsResetSettle)
	return nil
}

func (p *DCSPanel) Init() error {
	if err := p.io.TxParam(dcsSLPOUT, nil); err != nil {
		return fmt.Errorf("dcs panel: slpout: %w", err)
	}
	p.sleep(100 * time.Millisecond)
	if err := p.io.TxParam(dcsMADCTL, []byte{p.madctl}); err != nil {
		return fmt.Errorf("dcs panel: madctl: %w", err)
	}
	if err := p.io.TxParam(dcsCOLMOD, []byte{p.colmod}); err != nil {
		return fmt.Errorf("dcs panel: colmod: %w", err)
	}
	p.ready = true
	return nil
}

func (p *DCSPanel) InvertColor(invert bool) error {
	if !p.ready {
		return fmt.Errorf("dcs panel: invert: %w", ErrNotReady)
	}
	cmd := byte(dcsINVOFF)
	if invert {
		cmd = dcsINVON
	}
	return p.io.TxParam(cmd, nil)
}

func (p *DCSPanel) SwapXY(swap bool) error {
	if !p.ready {
		return fmt.Errorf("dcs panel: swap: %w", ErrNotReady)
	}
	p.madctl = setBit(p.madctl, madctlMV, swap)
	return p.io.TxParam(dcsMADCTL, []byte{p.madctl})
}

func (p *DCSPanel) Mirror(x, y bool) error {
	if !p.ready {
		return fmt.Errorf("dcs panel: mirror: %w", ErrNotReady)
	}
	p.madctl = setBit(p.madctl, madctlMX, x)
	p.madctl = setBit(p.madctl, madctlMY, y)
	return p.io.TxParam(dcsMADCTL, []byte{p.madctl})
}

func (p *DCSPanel) DisplayOn(on bool) error {
	if !p.ready {
		return fmt.Errorf("dcs panel: display on: %w", ErrNotReady)
	}
	cmd := byte(dcsDISPOFF)
	if on {
		cmd = dcsDISPON
	}
	return p.io.TxParam(cmd, nil)
}

func (p *DCSPanel) DrawBitmap(x0, y0, x1, y1 int, data []byte) error {
	if !p.ready {
		return fmt.Errorf("dcs panel: draw: %w", ErrNotReady)
	}
	if x0 < 0 || y0 < 0 || x1 <= x0 || y1 <= y0 || x1 > 0xFFFF || y1 > 0xFFFF {
		return fmt.Errorf("dcs panel: draw: %w: window (%d,%d)-(%d,%d)", ErrInvalidConfig, x0, y0, x1, y1)
	}
	n := (x1 - x0) * (y1 - y0) * 2
	if len(data) < n {
		return fmt.Errorf("dcs panel: draw: short bitmap: %d < %d", len(data), n)
	}

	if err := p.io.TxParam(dcsCASET, window16(x0, x1-1)); err != nil {
		return fmt.Errorf("dcs panel: caset: %w", err)
	}
	if err := p.io.TxParam(dcsRASET, window16(y0, y1-1)); err != nil {
		return fmt.Errorf("dcs panel: raset: %w", err)
	}
	if err := p.io.TxColor(dcsRAMWR, data[:n]); err != nil {
		return fmt.Errorf("dcs panel: ramwr: %w", err)
	}
	return nil
}

func (p *DCSPanel) Close() error {
	p.ready = false
	return nil
}

func window16(a, b int) []byte {
	return []byte{byte(a >> 8), byte(a), byte(b >> 8), byte(b)}
}

func setBit(v, mask byte, on bool) byte {
	if on {
		return v | mask
	}
	return v &^ mask
}
