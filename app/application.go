// Package app is the voice assistant's lifecycle: the device state machine
// the board's BOOT button drives, and the boot loop that brings the
// network up and keeps the display current.
package app

import (
	"log/slog"
	"sync"
)

// Application owns the device state. Use GetInstance.
type Application struct {
	mu        sync.Mutex
	state     DeviceState
	listeners []func(from, to DeviceState)
	log       *slog.Logger
}

var (
	instanceMu sync.Mutex
	instance   *Application
)

// GetInstance returns the process-wide application, creating it in the
// unknown state on first use.
func GetInstance() *Application {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance == nil {
		instance = &Application{log: slog.New(slog.DiscardHandler)}
	}
	return instance
}

// ResetInstance drops the process-wide application. Tests use it between runs.
func ResetInstance() {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = nil
}

func (a *Application) SetLogger(log *slog.Logger) {
	if log == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.log = log
}

// OnStateChange registers fn to run after every state change, on the
// goroutine that made the change.
func (a *Application) OnStateChange(fn func(from, to DeviceState)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *Application) DeviceState() DeviceState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Application) SetDeviceState(s DeviceState) {
	a.mu.Lock()
	from := a.state
	if from == s {
		a.mu.Unlock()
		return
	}
	a.state = s
	log := a.log
	listeners := append([]func(from, to DeviceState){}, a.listeners...)
	a.mu.Unlock()

	log.Info("state", slog.String("from", from.String()), slog.String("to", s.String()))
	for _, fn := range listeners {
		fn(from, s)
	}
}

// ToggleChatState starts a listening session from idle and ends one from
// listening or speaking. Other states ignore the toggle.
func (a *Application) ToggleChatState() {
	switch s := a.DeviceState(); s {
	case DeviceStateIdle:
		a.SetDeviceState(DeviceStateConnecting)
		a.SetDeviceState(DeviceStateListening)
	case DeviceStateListening, DeviceStateSpeaking:
		a.SetDeviceState(DeviceStateIdle)
	default:
		a.mu.Lock()
		log := a.log
		a.mu.Unlock()
		log.Debug("toggle ignored", slog.String("state", s.String()))
	}
}
