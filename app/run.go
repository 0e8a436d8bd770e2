package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"supermini/hal"
)

// Board is what the boot loop needs from the hardware.
type Board interface {
	BoardType() string
	Display() *hal.SpiLcdDisplay
	Led() hal.LED
	AudioCodec() hal.AudioCodec
	StartNetwork()
	NetworkConnected() bool
	NetworkStateIcon() string
}

var pollInterval = 250 * time.Millisecond

// Run boots the application on b: splash, console, audio, network, then
// idle. Opening a listening session plays a short cue. It blocks until ctx
// ends. A panic while running is drawn on the display and returned as an
// error.
func Run(ctx context.Context, b Board, log *slog.Logger) (err error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := GetInstance()
	a.SetLogger(log)
	display := b.Display()

	defer func() {
		if r := recover(); r != nil {
			a.SetDeviceState(DeviceStateFatalError)
			msg := fmt.Sprint(r)
			log.Error("app: panic", slog.String("panic", msg))
			_ = ShowFatal(display, "panic", msg)
			err = fmt.Errorf("app: panic: %s", msg)
		}
	}()

	if err := hal.DrawSplash(display, b.BoardType(), "starting"); err != nil {
		return fmt.Errorf("app: splash: %w", err)
	}
	console, err := hal.NewConsole(display)
	if err != nil {
		return fmt.Errorf("app: console: %w", err)
	}

	led := b.Led()
	codec := b.AudioCodec()
	var cue []int16
	if codec != nil {
		if err := codec.EnableOutput(true); err != nil {
			log.Warn("app: audio output", slog.Any("err", err))
			codec = nil
		} else {
			cue = listenCue(codec.OutputSampleRate())
			defer func() {
				if err := codec.EnableOutput(false); err != nil {
					log.Warn("app: audio output", slog.Any("err", err))
				}
			}()
		}
	}

	a.OnStateChange(func(_, to DeviceState) {
		switch to {
		case DeviceStateListening:
			led.High()
			playCue(codec, cue, log)
		case DeviceStateSpeaking:
			led.High()
		default:
			led.Low()
		}
		if err := console.Println("state: " + to.String()); err != nil {
			log.Warn("app: console", slog.Any("err", err))
		}
	})

	a.SetDeviceState(DeviceStateStarting)
	icon := b.NetworkStateIcon()
	if err := console.SetStatus(icon); err != nil {
		return fmt.Errorf("app: status bar: %w", err)
	}
	b.StartNetwork()

	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}

		if next := b.NetworkStateIcon(); next != icon {
			icon = next
			if err := console.SetStatus(icon); err != nil {
				log.Warn("app: status bar", slog.Any("err", err))
			}
		}
		if a.DeviceState() == DeviceStateStarting && b.NetworkConnected() {
			a.SetDeviceState(DeviceStateIdle)
		}
	}
}
