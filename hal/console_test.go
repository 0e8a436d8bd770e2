package hal

import (
	"fmt"
	"image/color"
	"testing"
)

func TestConsoleRegionScrollWraps(t *testing.T) {
	d, err := NewSpiLcdDisplay(&recordingIO{}, &fakePanel{}, 1, 6, 0, 0, false, false, false)
	if err != nil {
		t.Fatalf("NewSpiLcdDisplay: %v", err)
	}
	r := &consoleRegion{d: d, top: 2, height: 4}
	for y := int16(0); y < 4; y++ {
		r.SetPixel(0, y, color.RGBA{R: uint8(y+1) << 3, A: 0xFF})
	}

	r.SetScroll(1)
	if got := r.screenY(1); got != 0 {
		t.Fatalf("screenY(1) = %d, want 0", got)
	}
	if got := r.screenY(0); got != 3 {
		t.Fatalf("screenY(0) = %d, want 3", got)
	}
	// Logical row 1 is now drawn at the top of the band.
	off := 2 * 2
	if got := uint16(d.buf[off])<<8 | uint16(d.buf[off+1]); got != uint16(2)<<11 {
		t.Fatalf("top row = %#04x", got)
	}

	r.SetScroll(-1)
	if r.scroll != 3 {
		t.Fatalf("scroll = %d, want 3", r.scroll)
	}
}

func TestConsoleRegionFillSplitsAcrossWrap(t *testing.T) {
	d, err := NewSpiLcdDisplay(&recordingIO{}, &fakePanel{}, 1, 4, 0, 0, false, false, false)
	if err != nil {
		t.Fatalf("NewSpiLcdDisplay: %v", err)
	}
	r := &consoleRegion{d: d, top: 0, height: 4, scroll: 3}
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	if err := r.FillRectangle(0, 0, 1, 2, white); err != nil {
		t.Fatalf("FillRectangle: %v", err)
	}
	// Logical rows 0 and 1 land on screen rows 1 and 2.
	for y, want := range []uint16{0, 0xFFFF, 0xFFFF, 0} {
		if got := uint16(d.buf[y*2])<<8 | uint16(d.buf[y*2+1]); got != want {
			t.Fatalf("row %d = %#04x, want %#04x", y, got, want)
		}
	}

	r.scroll = 1
	clear(d.buf)
	if err := r.FillRectangle(0, 0, 1, 2, white); err != nil {
		t.Fatalf("FillRectangle: %v", err)
	}
	for y, want := range []uint16{0xFFFF, 0, 0, 0xFFFF} {
		if got := uint16(d.buf[y*2])<<8 | uint16(d.buf[y*2+1]); got != want {
			t.Fatalf("wrapped row %d = %#04x, want %#04x", y, got, want)
		}
	}
}

func TestConsolePrintlnFlushes(t *testing.T) {
	panel := &fakePanel{}
	d, err := NewSpiLcdDisplay(&recordingIO{}, panel, 240, 240, 0, 0, false, false, false)
	if err != nil {
		t.Fatalf("NewSpiLcdDisplay: %v", err)
	}
	c, err := NewConsole(d)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	if c.region.height != 220 {
		t.Fatalf("region height = %d, want 220", c.region.height)
	}

	if err := c.SetStatus("wifi_off"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	for i := 0; i < 40; i++ {
		if err := c.Println(fmt.Sprintf("line %d", i)); err != nil {
			t.Fatalf("Println %d: %v", i, err)
		}
	}
	if len(panel.draws) == 0 {
		t.Fatal("console never flushed")
	}
	if err := DrawSplash(d, "SuperMini", "starting"); err != nil {
		t.Fatalf("DrawSplash: %v", err)
	}
}

func TestNewConsoleRejectsShortDisplay(t *testing.T) {
	d, err := NewSpiLcdDisplay(&recordingIO{}, &fakePanel{}, 240, 25, 0, 0, false, false, false)
	if err != nil {
		t.Fatalf("NewSpiLcdDisplay: %v", err)
	}
	if _, err := NewConsole(d); err == nil {
		t.Fatal("expected error for a display shorter than one text row")
	}
}
