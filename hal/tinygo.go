//go:build tinygo

package hal

import "log/slog"

// NewLogger returns a logger on the target's default console: the USB
// serial/JTAG port on the ESP32-C3.
func NewLogger(level slog.Leveler) *slog.Logger {
	return NewSlog(consoleLogger{}, level)
}

type consoleLogger struct{}

func (consoleLogger) WriteLineString(s string) { println(s) }

func (consoleLogger) WriteLineBytes(b []byte) { println(string(b)) }
