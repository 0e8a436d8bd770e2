package hal

import (
	"errors"
	"image/color"
	"strconv"

	"tinygo.org/x/drivers"
)

var (
	ErrUnsupported   = errors.New("unsupported")
	ErrInvalidConfig = errors.New("invalid config")
	ErrBusInUse      = errors.New("bus already initialized")
	ErrUnknownBus    = errors.New("unknown bus")
	ErrClosed        = errors.New("closed")
	ErrNotReady      = errors.New("panel not initialized")
)

// Pin is a GPIO number on the board's chip.
type Pin int16

// NC marks a pin role that is not wired.
const NC Pin = -1

func (p Pin) Connected() bool { return p >= 0 }

func (p Pin) String() string {
	if !p.Connected() {
		return "NC"
	}
	return "GPIO" + strconv.Itoa(int(p))
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

// Button reports debounced clicks. Handlers run on the button's own goroutine.
// Buttons that hold a goroutine also implement io.Closer.
type Button interface {
	OnClick(fn func())
}

// Display is the drawing surface handed out by the board.
type Display interface {
	drivers.Displayer
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// NetworkInterface is a generic packet transport.
type NetworkInterface interface {
	Send(pkt []byte) error
	Recv(pkt []byte) (int, error)
}

// PowerSaveLevel is the board-neutral power policy.
type PowerSaveLevel uint8

const (
	PowerSaveLowPower PowerSaveLevel = iota
	PowerSaveBalanced
	PowerSavePerformance
)

func (l PowerSaveLevel) String() string {
	switch l {
	case PowerSaveLowPower:
		return "low_power"
	case PowerSaveBalanced:
		return "balanced"
	case PowerSavePerformance:
		return "performance"
	}
	return "unknown(" + strconv.Itoa(int(l)) + ")"
}

// WifiPowerSaveLevel is the radio's own power policy.
type WifiPowerSaveLevel uint8

const (
	WifiPowerSaveLowPower WifiPowerSaveLevel = iota
	WifiPowerSaveBalanced
	WifiPowerSavePerformance
)

func (l WifiPowerSaveLevel) String() string {
	switch l {
	case WifiPowerSaveLowPower:
		return "low_power"
	case WifiPowerSaveBalanced:
		return "balanced"
	case WifiPowerSavePerformance:
		return "performance"
	}
	return "unknown(" + strconv.Itoa(int(l)) + ")"
}

// WifiStation is the network collaborator. Start and Stop are best effort;
// failures are logged by the implementation.
type WifiStation interface {
	Start()
	Stop()
	IsConnected() bool
	SSID() string
	IPAddress() string
	RSSI() int
	SetPowerSaveLevel(level WifiPowerSaveLevel)
}

// PinDriver hands out the GPIO roles a board needs.
type PinDriver interface {
	Output(p Pin) (GPIOPin, error)
	Button(p Pin) (Button, error)
}

// Platform bundles the primitives one build target provides.
type Platform struct {
	Name    string
	SPI     SPIHost
	Panels  PanelDriver
	Pins    PinDriver
	Station WifiStation
	// Speaker may be nil when the target has no audio output.
	Speaker AudioSink

	screen frameSource
}

// frameSource exposes a mirrored copy of the panel contents to host runners.
type frameSource interface {
	frameSize() (w, h int)
	snapshotRGB565(dst []byte)
}
