//go:build tinygo && !esp32c3

package hal

import (
	"fmt"
	"log/slog"
	"runtime"
)

// NewPlatform fails on TinyGo targets other than the ESP32-C3.
func NewPlatform(_ *slog.Logger) (*Platform, error) {
	return nil, fmt.Errorf("%s/%s: %w", runtime.GOOS, runtime.GOARCH, ErrUnsupported)
}
