//go:build !tinygo

package hal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64
	// Input carries one command per line: "click" presses boot, "quit" stops.
	Input io.Reader
}

// RunHeadless calls step at cfg.Hz until ctx ends, Ticks elapse, or the
// input says quit.
func RunHeadless(ctx context.Context, boot Clicker, cfg HeadlessConfig, step func() error) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Input != nil {
		go readCommands(cfg.Input, boot, cancel)
	}

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

func readCommands(r io.Reader, boot Clicker, quit func()) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "click", "c":
			if boot != nil {
				boot.Click()
			}
		case "quit", "q":
			quit()
			return
		}
	}
}
