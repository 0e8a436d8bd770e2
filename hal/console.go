package hal

import (
	"fmt"
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

var (
	consoleFont = &proggy.TinySZ8pt7b

	colorBackground = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	colorForeground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	colorStatusBar  = color.RGBA{R: 0x10, G: 0x60, B: 0xC0, A: 0xFF}
)

const (
	statusBarHeight   = 20
	consoleFontHeight = 10
	consoleFontOffset = 6
)

// Console splits a display into a one-line status bar and a scrolling
// text log rendered by tinyterm.
type Console struct {
	mu     sync.Mutex
	d      *SpiLcdDisplay
	region *consoleRegion
	term   *tinyterm.Terminal
}

func NewConsole(d *SpiLcdDisplay) (*Console, error) {
	if d == nil {
		return nil, fmt.Errorf("console: %w: nil display", ErrInvalidConfig)
	}
	h := (d.Height() - statusBarHeight) / consoleFontHeight * consoleFontHeight
	if h <= 0 {
		return nil, fmt.Errorf("console: %w: display too short", ErrInvalidConfig)
	}

	d.Clear(colorBackground)
	region := &consoleRegion{d: d, top: statusBarHeight, height: int16(h)}
	term := tinyterm.NewTerminal(region)
	term.Configure(&tinyterm.Config{
		Font:       consoleFont,
		FontHeight: consoleFontHeight,
		FontOffset: consoleFontOffset,
	})
	return &Console{d: d, region: region, term: term}, nil
}

// Println appends a line to the log and flushes the display.
func (c *Console) Println(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprint(c.term, s+"\r\n"); err != nil {
		return err
	}
	return c.d.Display()
}

// SetStatus redraws the status bar.
func (c *Console) SetStatus(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.d.FillRectangle(0, 0, int16(c.d.Width()), statusBarHeight, colorStatusBar); err != nil {
		return err
	}
	tinyfont.WriteLine(c.d, consoleFont, 4, statusBarHeight-6, s, colorForeground)
	return c.d.Display()
}

// DrawSplash clears d and centers a title and subtitle on it.
func DrawSplash(d *SpiLcdDisplay, title, subtitle string) error {
	d.Clear(colorBackground)
	mid := int16(d.Height() / 2)
	drawCentered(d, title, mid-4)
	drawCentered(d, subtitle, mid+12)
	return d.Display()
}

func drawCentered(d *SpiLcdDisplay, s string, y int16) {
	_, w := tinyfont.LineWidth(consoleFont, s)
	x := (int16(d.Width()) - int16(w)) / 2
	if x < 0 {
		x = 0
	}
	tinyfont.WriteLine(d, consoleFont, x, y, s, colorForeground)
}

// consoleRegion is the log band below the status bar. It emulates the
// panel's vertical scroll: tinyterm draws into a ring of rows and moves the
// scroll start with SetScroll.
type consoleRegion struct {
	d      *SpiLcdDisplay
	top    int16
	height int16
	scroll int16
}

func (r *consoleRegion) Size() (x, y int16) {
	return int16(r.d.Width()), r.height
}

func (r *consoleRegion) screenY(y int16) int16 {
	s := (y - r.scroll) % r.height
	if s < 0 {
		s += r.height
	}
	return s
}

func (r *consoleRegion) SetPixel(x, y int16, c color.RGBA) {
	if y < 0 || y >= r.height {
		return
	}
	r.d.SetPixel(x, r.top+r.screenY(y), c)
}

func (r *consoleRegion) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if height >= r.height {
		return r.d.FillRectangle(x, r.top, width, r.height, c)
	}
	if y < 0 || y >= r.height || height <= 0 {
		return nil
	}
	sy := r.screenY(y)
	if sy+height <= r.height {
		return r.d.FillRectangle(x, r.top+sy, width, height, c)
	}
	first := r.height - sy
	if err := r.d.FillRectangle(x, r.top+sy, width, first, c); err != nil {
		return err
	}
	return r.d.FillRectangle(x, r.top, width, height-first, c)
}

func (r *consoleRegion) Display() error { return r.d.Display() }

func (r *consoleRegion) SetScroll(line int16) {
	line %= r.height
	if line < 0 {
		line += r.height
	}
	r.d.rotateRows(int(r.top), int(r.height), int(line-r.scroll))
	r.scroll = line
}

func (r *consoleRegion) SetRotation(rotation drivers.Rotation) error {
	return r.d.SetRotation(rotation)
}
