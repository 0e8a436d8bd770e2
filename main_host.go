//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"time"

	"supermini/app"
	"supermini/board"
	"supermini/hal"
	"supermini/internal/buildinfo"
	"supermini/internal/report"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code. Everything opened here is released
// before it returns.
func run() int {
	var (
		configPath string
		headless   hal.HeadlessConfig
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "Board config file (TOML or YAML). Defaults to $SUPERMINI_CONFIG.")
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window; read click/quit commands from stdin.")
	flag.IntVar(&headless.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.BoolVar(&verbose, "v", false, "Log at debug level.")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := hal.NewLogger(level)
	log.Info("supermini: starting", buildinfo.Attr())

	// Only lazy accessors reach Fatal once the board is up.
	board.Fatal = func(log *slog.Logger, err error) {
		log.Error("supermini: fatal", slog.Any("err", err))
		os.Exit(1)
	}

	cfg, err := board.LoadConfig(configPath)
	if err != nil {
		log.Error("supermini: config", slog.Any("err", err))
		return 1
	}
	p, err := hal.NewPlatform(log)
	if err != nil {
		log.Error("supermini: platform", slog.Any("err", err))
		return 1
	}
	b, err := board.New(p, cfg, app.GetInstance(), log)
	if err != nil {
		log.Error("supermini: bring-up", slog.Any("err", err))
		return 1
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn("supermini: close", slog.Any("err", err))
		}
	}()
	log.Info("supermini: board", slog.String("json", b.BoardJSON()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.Run(ctx, b, log); err != nil {
			log.Error("supermini: app", slog.Any("err", err))
		}
	}()
	if cfg.Report.Broker != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			publishStatus(ctx, cfg.Report, b, log)
		}()
	}

	clicker, _ := b.Button().(hal.Clicker)
	if headless.Enabled {
		headless.Input = os.Stdin
		err = hal.RunHeadless(ctx, clicker, headless, nil)
	} else {
		err = hal.RunWindow(p, buildinfo.Title("SuperMini"), clicker, nil)
	}
	stop()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("supermini: runner", slog.Any("err", err))
		return 1
	}
	return 0
}

// publishStatus reports DeviceStatusJSON to the broker, redialing after a
// dropped connection until ctx ends.
func publishStatus(ctx context.Context, cfg board.ReportConfig, b *board.Board, log *slog.Logger) {
	pub := &report.Publisher{
		ClientID: b.UUID(),
		Topic:    cfg.Topic,
		Interval: cfg.Interval,
		Logger:   log,
	}
	var d net.Dialer
	for ctx.Err() == nil {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		conn, err := d.DialContext(dialCtx, "tcp", cfg.Broker)
		cancel()
		if err == nil {
			err = pub.Run(ctx, conn, b.DeviceStatusJSON)
			conn.Close()
		}
		if err != nil {
			log.Warn("supermini: status publisher", slog.String("broker", cfg.Broker), slog.Any("err", err))
		}
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}
}
