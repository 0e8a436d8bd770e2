package hal

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
)

// SpiLcdDisplay is an RGB565 framebuffer that Display flushes to a Panel.
// It owns the panel and its IO handle and releases both in Close.
type SpiLcdDisplay struct {
	mu    sync.Mutex
	io    PanelIO
	panel Panel

	width   int
	height  int
	offsetX int
	offsetY int
	mirrorX bool
	mirrorY bool
	swapXY  bool

	// buf holds big-endian RGB565, the panel's wire order.
	buf []byte
	// [dirtyTop, dirtyBottom) rows changed since the last flush.
	dirtyTop    int
	dirtyBottom int
	closed      bool
}

func NewSpiLcdDisplay(io PanelIO, panel Panel, width, height, offsetX, offsetY int, mirrorX, mirrorY, swapXY bool) (*SpiLcdDisplay, error) {
	if io == nil || panel == nil {
		return nil, fmt.Errorf("lcd: %w: nil io or panel", ErrInvalidConfig)
	}
	if width <= 0 || height <= 0 || width > 0x7FFF || height > 0x7FFF {
		return nil, fmt.Errorf("lcd: %w: size %dx%d", ErrInvalidConfig, width, height)
	}
	return &SpiLcdDisplay{
		io:          io,
		panel:       panel,
		width:       width,
		height:      height,
		offsetX:     offsetX,
		offsetY:     offsetY,
		mirrorX:     mirrorX,
		mirrorY:     mirrorY,
		swapXY:      swapXY,
		buf:         make([]byte, width*height*2),
		dirtyTop:    0,
		dirtyBottom: height,
	}, nil
}

func (d *SpiLcdDisplay) Width() int  { return d.width }
func (d *SpiLcdDisplay) Height() int { return d.height }

// Offset is where the buffer's origin lands in panel memory.
func (d *SpiLcdDisplay) Offset() (x, y int) { return d.offsetX, d.offsetY }

// Orientation reports the mirror and swap flags the panel was brought up with.
func (d *SpiLcdDisplay) Orientation() (mirrorX, mirrorY, swapXY bool) {
	return d.mirrorX, d.mirrorY, d.swapXY
}

func (d *SpiLcdDisplay) Size() (x, y int16) {
	return int16(d.width), int16(d.height)
}

func (d *SpiLcdDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.width || iy < 0 || iy >= d.height {
		return
	}
	pixel := rgb565(c.R, c.G, c.B)
	off := (iy*d.width + ix) * 2
	d.buf[off] = byte(pixel >> 8)
	d.buf[off+1] = byte(pixel)
	d.markDirty(iy, iy+1)
}

func (d *SpiLcdDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.fill(int(x), int(y), int(width), int(height), c)
	return nil
}

// Clear paints the whole framebuffer.
func (d *SpiLcdDisplay) Clear(c color.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.fill(0, 0, d.width, d.height, c)
}

func (d *SpiLcdDisplay) fill(x, y, width, height int, c color.RGBA) {
	x0 := clampInt(x, 0, d.width)
	y0 := clampInt(y, 0, d.height)
	x1 := clampInt(x+width, 0, d.width)
	y1 := clampInt(y+height, 0, d.height)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	pixel := rgb565(c.R, c.G, c.B)
	hi, lo := byte(pixel>>8), byte(pixel)
	for py := y0; py < y1; py++ {
		row := py * d.width * 2
		for px := x0; px < x1; px++ {
			off := row + px*2
			d.buf[off] = hi
			d.buf[off+1] = lo
		}
	}
	d.markDirty(y0, y1)
}

// rotateRows rotates the band [top, top+height) up by lines, wrapping the
// rows that leave the top of the band around to its bottom.
func (d *SpiLcdDisplay) rotateRows(top, height, lines int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || top < 0 || height <= 0 || top+height > d.height {
		return
	}
	lines %= height
	if lines < 0 {
		lines += height
	}
	if lines == 0 {
		return
	}
	stride := d.width * 2
	band := d.buf[top*stride : (top+height)*stride]
	head := make([]byte, lines*stride)
	copy(head, band[:lines*stride])
	copy(band, band[lines*stride:])
	copy(band[(height-lines)*stride:], head)
	d.markDirty(top, top+height)
}

// SetScroll is a no-op: scrolling happens in the framebuffer.
func (d *SpiLcdDisplay) SetScroll(line int16) {
	_ = line
}

// SetRotation only accepts the configured orientation. Rotation is fixed at
// bring-up through SwapXY and Mirror.
func (d *SpiLcdDisplay) SetRotation(rotation drivers.Rotation) error {
	if rotation == drivers.Rotation0 {
		return nil
	}
	return fmt.Errorf("lcd: rotation %d: %w", rotation, ErrUnsupported)
}

// Display flushes the rows changed since the last call.
func (d *SpiLcdDisplay) Display() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.dirtyTop >= d.dirtyBottom {
		return nil
	}
	top, bottom := d.dirtyTop, d.dirtyBottom
	stride := d.width * 2
	err := d.panel.DrawBitmap(
		d.offsetX, d.offsetY+top,
		d.offsetX+d.width, d.offsetY+bottom,
		d.buf[top*stride:bottom*stride],
	)
	if err != nil {
		return fmt.Errorf("lcd: flush: %w", err)
	}
	d.dirtyTop, d.dirtyBottom = d.height, 0
	return nil
}

// Close releases the panel, then its IO handle. The display is unusable afterwards.
func (d *SpiLcdDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.buf = nil
	return errors.Join(d.panel.Close(), d.io.Close())
}

func (d *SpiLcdDisplay) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *SpiLcdDisplay) markDirty(top, bottom int) {
	if top < d.dirtyTop {
		d.dirtyTop = top
	}
	if bottom > d.dirtyBottom {
		d.dirtyBottom = bottom
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
