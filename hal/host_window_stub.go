//go:build !tinygo && (periph || !cgo)

package hal

import "errors"

func RunWindow(_ *Platform, _ string, _ Clicker, _ func() error) error {
	return errors.New("window mode requires the simulator built with cgo (CGO_ENABLED=1, no periph tag)")
}
