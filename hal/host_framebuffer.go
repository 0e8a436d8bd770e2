//go:build !tinygo

package hal

import "sync"

// hostFramebuffer mirrors panel GRAM in big-endian RGB565.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

// blit copies a window of pixels, clipping anything outside the buffer.
func (f *hostFramebuffer) blit(x0, y0, x1, y1 int, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := x1 - x0
	if w <= 0 || y1 <= y0 {
		return
	}
	for y := y0; y < y1; y++ {
		start := (y - y0) * w * 2
		if start >= len(data) {
			return
		}
		if y < 0 || y >= f.height {
			continue
		}
		src := data[start:]
		for x := x0; x < x1; x++ {
			i := (x - x0) * 2
			if x < 0 || x >= f.width || i+1 >= len(src) {
				continue
			}
			off := y*f.stride + x*2
			f.buf[off] = src[i]
			f.buf[off+1] = src[i+1]
		}
	}
}

func (f *hostFramebuffer) pixel(x, y int) uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return 0
	}
	off := y*f.stride + x*2
	return uint16(f.buf[off])<<8 | uint16(f.buf[off+1])
}

func (f *hostFramebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
}
