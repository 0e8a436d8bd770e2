//go:build !tinygo

package hal

import (
	"log/slog"
	"sync"
	"time"
)

// SimStationConfig shapes the simulated access point.
type SimStationConfig struct {
	SSID         string
	IP           string
	RSSI         int
	ConnectDelay time.Duration
}

// SimStation is a WiFi station that joins a fixed network after a delay.
type SimStation struct {
	mu        sync.Mutex
	cfg       SimStationConfig
	log       *slog.Logger
	started   bool
	connected bool
	level     WifiPowerSaveLevel
	timer     *time.Timer
	starts    int
	stops     int
}

func NewSimStation(cfg SimStationConfig, log *slog.Logger) *SimStation {
	if cfg.SSID == "" {
		cfg.SSID = "supermini-sim"
	}
	if cfg.IP == "" {
		cfg.IP = "192.168.4.2"
	}
	if cfg.RSSI == 0 {
		cfg.RSSI = -58
	}
	if cfg.ConnectDelay <= 0 {
		cfg.ConnectDelay = 1500 * time.Millisecond
	}
	return &SimStation{cfg: cfg, log: orDiscard(log), level: WifiPowerSaveBalanced}
}

func (s *SimStation) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	if s.started {
		return
	}
	s.started = true
	s.log.Info("wifi: scanning", slog.String("ssid", s.cfg.SSID))
	s.timer = time.AfterFunc(s.cfg.ConnectDelay, s.join)
}

func (s *SimStation) join() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.connected = true
	s.log.Info("wifi: connected",
		slog.String("ssid", s.cfg.SSID),
		slog.String("ip", s.cfg.IP),
		slog.Int("rssi", s.cfg.RSSI),
	)
}

func (s *SimStation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.started {
		s.log.Info("wifi: stopped")
	}
	s.started = false
	s.connected = false
}

func (s *SimStation) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *SimStation) SSID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return ""
	}
	return s.cfg.SSID
}

func (s *SimStation) IPAddress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return "0.0.0.0"
	}
	return s.cfg.IP
}

func (s *SimStation) RSSI() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return 0
	}
	return s.cfg.RSSI
}

func (s *SimStation) SetPowerSaveLevel(level WifiPowerSaveLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
	s.log.Debug("wifi: power save", slog.String("level", level.String()))
}

func (s *SimStation) PowerSaveLevel() WifiPowerSaveLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Counts reports how many times Start and Stop were called.
func (s *SimStation) Counts() (starts, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.stops
}
