package board

import (
	"log/slog"
	"time"

	"supermini/app"
)

// wifiResetSettle is the pause between stopping and restarting the station.
const wifiResetSettle = 100 * time.Millisecond

// handleClick routes a BOOT click. While the application is still starting
// and WiFi has not joined, the click restarts the station so a fresh
// connection attempt begins; any other click toggles the chat state.
func (b *Board) handleClick() {
	if b.life.DeviceState() == app.DeviceStateStarting && !b.station.IsConnected() {
		b.station.Stop()
		b.sleep(wifiResetSettle)
		b.station.Start()
		b.log.Info("WiFi configuration reset")
		return
	}
	b.log.Debug("board: boot click", slog.String("state", b.life.DeviceState().String()))
	b.life.ToggleChatState()
}
