//go:build !tinygo && !periph && cgo

package hal

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunWindow opens a desktop window that mirrors the simulated panel. Space
// or Enter clicks boot; Escape closes the window. step runs once per frame.
// It blocks until the window closes.
func RunWindow(p *Platform, title string, boot Clicker, step func() error) error {
	if p == nil || p.screen == nil {
		return fmt.Errorf("window: %w: platform has no screen", ErrUnsupported)
	}
	w, h := p.screen.frameSize()
	g := &hostGame{src: p.screen, boot: boot, step: step, width: w, height: h}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	src    frameSource
	boot   Clicker
	step   func() error
	width  int
	height int

	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.boot != nil && (inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter)) {
		g.boot.Click()
	}
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, g.width, g.height))
		g.scratch = make([]byte, g.width*g.height*2)
		g.fbImg = ebiten.NewImage(g.width, g.height)
	}

	g.src.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i])<<8 | uint16(src[i+1]))
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
