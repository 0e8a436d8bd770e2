package hal

import (
	"fmt"
	"sync"
)

// SingleLed is a status LED on one output pin.
type SingleLed struct {
	mu  sync.Mutex
	pin GPIOPin
	on  bool
}

func NewSingleLed(pin GPIOPin) (*SingleLed, error) {
	if pin == nil {
		return nil, fmt.Errorf("led: %w: nil pin", ErrInvalidConfig)
	}
	if err := pin.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		return nil, fmt.Errorf("led: %w", err)
	}
	if err := pin.Write(false); err != nil {
		return nil, fmt.Errorf("led: %w", err)
	}
	return &SingleLed{pin: pin}, nil
}

func (l *SingleLed) High() { l.set(true) }
func (l *SingleLed) Low()  { l.set(false) }

func (l *SingleLed) IsOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

func (l *SingleLed) set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.pin.Write(on); err != nil {
		return
	}
	l.on = on
}
