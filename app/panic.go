package app

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"supermini/hal"
)

const (
	fatalFontHeight = 10
	fatalFontOffset = 8
)

// ShowFatal paints a white screen with title and the wrapped message lines
// in black, then flushes. Text that does not fit is cut off.
func ShowFatal(d *hal.SpiLcdDisplay, title string, lines ...string) error {
	if d == nil || d.Closed() {
		return hal.ErrClosed
	}
	font := &proggy.TinySZ8pt7b
	_, outbox := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outbox)
	if fontWidth <= 0 {
		fontWidth = 6
	}

	d.Clear(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	fg := color.RGBA{A: 0xFF}
	maxH := int16(d.Height())
	cols := int16(d.Width()) / fontWidth
	if cols <= 0 {
		cols = 1
	}

	y := int16(0)
	for _, line := range append([]string{title}, lines...) {
		for _, part := range strings.Split(line, "\n") {
			for part != "" {
				if y+fatalFontHeight > maxH {
					return d.Display()
				}
				chunk, rest := takeRunes(part, cols)
				drawTextLine(d, font, fontWidth, 0, y, chunk, fg)
				y += fatalFontHeight
				part = strings.TrimLeft(rest, " ")
			}
		}
	}
	return d.Display()
}

func drawTextLine(d *hal.SpiLcdDisplay, font tinyfont.Fonter, fontWidth, x0, y0 int16, s string, fg color.RGBA) {
	x := x0
	for _, r := range s {
		tinyfont.DrawChar(d, font, x, y0+fatalFontOffset, r, fg)
		x += fontWidth
	}
}

// takeRunes splits s after n runes.
func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= int(n) {
		return s, ""
	}
	i := 0
	for count := int16(0); i < len(s) && count < n; count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
