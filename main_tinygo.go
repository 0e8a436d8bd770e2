//go:build tinygo

package main

import (
	"context"
	"log/slog"

	"supermini/app"
	"supermini/board"
	"supermini/hal"
)

func main() {
	log := hal.NewLogger(slog.LevelInfo)
	board.Fatal = func(log *slog.Logger, err error) {
		log.Error("supermini: fatal", slog.Any("err", err))
		select {}
	}

	p, err := hal.NewPlatform(log)
	if err != nil {
		board.Fatal(log, err)
	}
	b := board.MustNew(p, board.DefaultConfig(), app.GetInstance(), log)
	if err := app.Run(context.Background(), b, log); err != nil {
		log.Error("supermini: app", slog.Any("err", err))
	}
	select {}
}
