package hal

// ColorOrder is the subpixel order the panel expects.
type ColorOrder uint8

const (
	ColorOrderRGB ColorOrder = iota
	ColorOrderBGR
)

func (o ColorOrder) String() string {
	if o == ColorOrderBGR {
		return "bgr"
	}
	return "rgb"
}

// PanelConfig describes the addressable panel behind a PanelIO.
type PanelConfig struct {
	// Reset may be NC, in which case Reset issues a software reset.
	Reset        Pin
	ColorOrder   ColorOrder
	BitsPerPixel int
	// Width and Height are the controller's native geometry. Zero means
	// the driver default.
	Width  int
	Height int
}

// PanelIO is the command/data channel to one device on a bus.
type PanelIO interface {
	// TxParam sends a command byte followed by its parameters.
	TxParam(cmd byte, params []byte) error
	// TxColor sends a command byte followed by pixel data.
	TxColor(cmd byte, colors []byte) error
	Close() error
}

// Panel is the addressable display controller. Orientation and color
// commands are only valid after Reset and Init.
type Panel interface {
	Reset() error
	Init() error
	InvertColor(invert bool) error
	SwapXY(swap bool) error
	Mirror(x, y bool) error
	DisplayOn(on bool) error
	// DrawBitmap writes big-endian RGB565 pixels to the half-open window
	// [x0,x1) x [y0,y1).
	DrawBitmap(x0, y0, x1, y1 int, data []byte) error
	Close() error
}

// PanelDriver constructs the IO and panel handles for a platform.
type PanelDriver interface {
	NewPanelIO(bus Bus, cfg PanelIOConfig) (PanelIO, error)
	NewPanel(io PanelIO, cfg PanelConfig) (Panel, error)
}
