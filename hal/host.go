//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// NewLogger returns the host logger, writing to stdout.
func NewLogger(level slog.Leveler) *slog.Logger {
	return NewSlog(&hostLogger{w: os.Stdout}, level)
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// Clicker is a button that can be pressed from software.
type Clicker interface {
	Click()
}
