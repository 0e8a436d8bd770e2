package hal

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// BusID names a physical SPI controller.
type BusID uint8

const (
	SPIHost1 BusID = iota + 1
	SPIHost2
	SPIHost3
)

func (id BusID) String() string {
	switch id {
	case SPIHost1:
		return "SPI1"
	case SPIHost2:
		return "SPI2"
	case SPIHost3:
		return "SPI3"
	}
	return fmt.Sprintf("SPI?%d", uint8(id))
}

// DMAChannel selects the DMA resource backing a bus.
type DMAChannel int8

const (
	DMADisabled DMAChannel = 0
	DMAAuto     DMAChannel = -1
)

// BusConfig describes a shared SPI bus.
type BusConfig struct {
	Host            BusID      `mapstructure:"host"`
	MOSI            Pin        `mapstructure:"mosi"`
	MISO            Pin        `mapstructure:"miso"`
	SCLK            Pin        `mapstructure:"sclk"`
	QuadWP          Pin        `mapstructure:"quad_wp"`
	QuadHD          Pin        `mapstructure:"quad_hd"`
	MaxTransferSize int        `mapstructure:"max_transfer_size"`
	DMA             DMAChannel `mapstructure:"dma"`
}

// Bus is an initialized SPI bus. It lives for the rest of the process.
type Bus interface {
	ID() BusID
	Config() BusConfig
}

// SPIHost allocates buses. Each BusID may be initialized once per process;
// later calls return ErrBusInUse.
type SPIHost interface {
	InitBus(cfg BusConfig) (Bus, error)
}

// SPIMode is the clock polarity/phase pair, 0 through 3.
type SPIMode uint8

// PanelIOConfig binds a device to a bus.
type PanelIOConfig struct {
	CS         Pin
	DC         Pin
	Mode       SPIMode
	Clock      physic.Frequency
	CmdBits    int
	ParamBits  int
	QueueDepth int
}

// busRegistry tracks which bus ids were handed out.
type busRegistry map[BusID]bool

func (r busRegistry) claim(id BusID) error {
	if r[id] {
		return fmt.Errorf("%s: %w", id, ErrBusInUse)
	}
	r[id] = true
	return nil
}

// CheckBusConfig validates the pin roles and sizes of cfg.
func CheckBusConfig(cfg BusConfig) error {
	if cfg.Host == 0 {
		return fmt.Errorf("bus: %w: no host", ErrInvalidConfig)
	}
	if !cfg.MOSI.Connected() || !cfg.SCLK.Connected() {
		return fmt.Errorf("%s: %w: mosi and sclk are required", cfg.Host, ErrInvalidConfig)
	}
	if cfg.MaxTransferSize <= 0 {
		return fmt.Errorf("%s: %w: max transfer size %d", cfg.Host, ErrInvalidConfig, cfg.MaxTransferSize)
	}
	return nil
}

type busHandle struct {
	cfg BusConfig
}

func (b *busHandle) ID() BusID         { return b.cfg.Host }
func (b *busHandle) Config() BusConfig { return b.cfg }
