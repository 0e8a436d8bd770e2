package hal

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// rotationFor folds swap and mirror flags into one of the four rotations a
// driver without raw MADCTL access can express.
func rotationFor(swap, mirrorX, mirrorY bool) (drivers.Rotation, error) {
	switch {
	case !swap && !mirrorX && !mirrorY:
		return drivers.Rotation0, nil
	case swap && mirrorX && !mirrorY:
		return drivers.Rotation90, nil
	case !swap && mirrorX && mirrorY:
		return drivers.Rotation180, nil
	case swap && !mirrorX && mirrorY:
		return drivers.Rotation270, nil
	}
	return 0, fmt.Errorf("panel: %w: swap=%t mirror=%t/%t", ErrUnsupported, swap, mirrorX, mirrorY)
}

// rotationLatch collects swap and mirror settings and applies their
// combined rotation once the panel is on, then again on every change.
type rotationLatch struct {
	swap, mirrorX, mirrorY bool
	on                     bool
	apply                  func(drivers.Rotation) error
}

func (l *rotationLatch) setSwap(swap bool) error {
	l.swap = swap
	return l.sync()
}

func (l *rotationLatch) setMirror(x, y bool) error {
	l.mirrorX, l.mirrorY = x, y
	return l.sync()
}

func (l *rotationLatch) setOn(on bool) error {
	l.on = on
	return l.sync()
}

func (l *rotationLatch) sync() error {
	if !l.on {
		return nil
	}
	r, err := rotationFor(l.swap, l.mirrorX, l.mirrorY)
	if err != nil {
		return err
	}
	return l.apply(r)
}
