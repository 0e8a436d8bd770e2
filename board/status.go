package board

import (
	"encoding/json"

	"supermini/hal"
)

type boardInfo struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	UUID    string      `json:"uuid"`
	Display displayInfo `json:"display"`
	Audio   audioInfo   `json:"audio"`
}

type displayInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Type   string `json:"type"`
}

type audioInfo struct {
	InputSampleRate  int `json:"input_sample_rate"`
	OutputSampleRate int `json:"output_sample_rate"`
}

type deviceStatus struct {
	WifiConnected bool   `json:"wifi_connected"`
	WifiSSID      string `json:"wifi_ssid"`
	IPAddress     string `json:"ip_address"`
	RSSI          int    `json:"rssi"`
}

func (b *Board) BoardType() string { return Type }

// BoardJSON describes the static hardware.
func (b *Board) BoardJSON() string {
	return mustJSON(boardInfo{
		Name:    b.cfg.Identity.Name,
		Version: b.cfg.Identity.Version,
		UUID:    b.uuid,
		Display: displayInfo{
			Width:  b.cfg.Display.Width,
			Height: b.cfg.Display.Height,
			Type:   "st7789",
		},
		Audio: audioInfo{
			InputSampleRate:  b.cfg.Audio.InputSampleRate,
			OutputSampleRate: b.cfg.Audio.OutputSampleRate,
		},
	})
}

// DeviceStatusJSON reads the station on every call.
func (b *Board) DeviceStatusJSON() string {
	return mustJSON(deviceStatus{
		WifiConnected: b.station.IsConnected(),
		WifiSSID:      b.station.SSID(),
		IPAddress:     b.station.IPAddress(),
		RSSI:          b.station.RSSI(),
	})
}

// NetworkStateIcon names the status bar icon for the current connection.
func (b *Board) NetworkStateIcon() string {
	if b.station.IsConnected() {
		return "wifi"
	}
	return "wifi_off"
}

// SetPowerSaveLevel applies level to the WiFi station.
func (b *Board) SetPowerSaveLevel(level hal.PowerSaveLevel) {
	b.station.SetPowerSaveLevel(wifiPowerSaveLevel(level))
}

// wifiPowerSaveLevel maps the board policy onto the radio's. Unknown
// levels fall back to balanced.
func wifiPowerSaveLevel(level hal.PowerSaveLevel) hal.WifiPowerSaveLevel {
	switch level {
	case hal.PowerSaveLowPower:
		return hal.WifiPowerSaveLowPower
	case hal.PowerSaveBalanced:
		return hal.WifiPowerSaveBalanced
	case hal.PowerSavePerformance:
		return hal.WifiPowerSavePerformance
	}
	return hal.WifiPowerSaveBalanced
}

// mustJSON marshals plain structs of strings, ints and bools, which cannot fail.
func mustJSON(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(out)
}
