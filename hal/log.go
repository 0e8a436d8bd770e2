package hal

import (
	"bytes"
	"io"
	"log/slog"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// NewSlog returns a text logger whose records are written to l one line each.
func NewSlog(l Logger, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(lineWriter{l: l}, &slog.HandlerOptions{Level: level}))
}

type lineWriter struct {
	l Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	w.l.WriteLineBytes(bytes.TrimRight(p, "\r\n"))
	return len(p), nil
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log != nil {
		return log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
