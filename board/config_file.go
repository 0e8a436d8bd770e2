//go:build !tinygo

package board

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads the board wiring from path, or from SUPERMINI_CONFIG
// when path is empty, on top of DefaultConfig. The file may be TOML or YAML. Env vars with the prefix
// SUPERMINI_ override single keys, e.g. SUPERMINI_DISPLAY_DC=21.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path == "" {
		path = os.Getenv("SUPERMINI_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		// The extension picks the format; bare names are TOML.
		if filepath.Ext(path) == "" {
			v.SetConfigType("toml")
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "supermini"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("supermini")
	}

	v.SetEnvPrefix("SUPERMINI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path must exist; the search path may come up empty.
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("bus.host", c.Bus.Host)
	v.SetDefault("bus.mosi", c.Bus.MOSI)
	v.SetDefault("bus.miso", c.Bus.MISO)
	v.SetDefault("bus.sclk", c.Bus.SCLK)
	v.SetDefault("bus.quad_wp", c.Bus.QuadWP)
	v.SetDefault("bus.quad_hd", c.Bus.QuadHD)
	v.SetDefault("bus.max_transfer_size", c.Bus.MaxTransferSize)
	v.SetDefault("bus.dma", c.Bus.DMA)

	v.SetDefault("display.cs", c.Display.CS)
	v.SetDefault("display.dc", c.Display.DC)
	v.SetDefault("display.reset", c.Display.Reset)
	v.SetDefault("display.spi_mode", c.Display.SPIMode)
	v.SetDefault("display.clock_hz", c.Display.ClockHz)
	v.SetDefault("display.cmd_bits", c.Display.CmdBits)
	v.SetDefault("display.param_bits", c.Display.ParamBits)
	v.SetDefault("display.queue_depth", c.Display.QueueDepth)
	v.SetDefault("display.bgr", c.Display.BGR)
	v.SetDefault("display.bits_per_pixel", c.Display.BitsPerPixel)
	v.SetDefault("display.width", c.Display.Width)
	v.SetDefault("display.height", c.Display.Height)
	v.SetDefault("display.offset_x", c.Display.OffsetX)
	v.SetDefault("display.offset_y", c.Display.OffsetY)
	v.SetDefault("display.mirror_x", c.Display.MirrorX)
	v.SetDefault("display.mirror_y", c.Display.MirrorY)
	v.SetDefault("display.swap_xy", c.Display.SwapXY)
	v.SetDefault("display.invert_color", c.Display.InvertColor)

	v.SetDefault("audio.input_sample_rate", c.Audio.InputSampleRate)
	v.SetDefault("audio.output_sample_rate", c.Audio.OutputSampleRate)
	v.SetDefault("audio.speaker.bclk", c.Audio.Speaker.BCLK)
	v.SetDefault("audio.speaker.lrck", c.Audio.Speaker.LRCK)
	v.SetDefault("audio.speaker.dout", c.Audio.Speaker.DOUT)
	v.SetDefault("audio.mic.sck", c.Audio.Mic.SCK)
	v.SetDefault("audio.mic.ws", c.Audio.Mic.WS)
	v.SetDefault("audio.mic.din", c.Audio.Mic.DIN)

	v.SetDefault("led.pin", c.Led.Pin)
	v.SetDefault("button.boot", c.Button.Boot)

	v.SetDefault("identity.name", c.Identity.Name)
	v.SetDefault("identity.version", c.Identity.Version)
	v.SetDefault("identity.uuid", c.Identity.UUID)

	v.SetDefault("report.broker", c.Report.Broker)
	v.SetDefault("report.topic", c.Report.Topic)
	v.SetDefault("report.interval", c.Report.Interval)
}
