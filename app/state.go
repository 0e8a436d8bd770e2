package app

import "strconv"

// DeviceState is the application lifecycle phase.
type DeviceState uint8

const (
	DeviceStateUnknown DeviceState = iota
	DeviceStateStarting
	DeviceStateWifiConfiguring
	DeviceStateIdle
	DeviceStateConnecting
	DeviceStateListening
	DeviceStateSpeaking
	DeviceStateUpgrading
	DeviceStateActivating
	DeviceStateFatalError
)

var stateNames = [...]string{
	DeviceStateUnknown:         "unknown",
	DeviceStateStarting:        "starting",
	DeviceStateWifiConfiguring: "wifi_configuring",
	DeviceStateIdle:            "idle",
	DeviceStateConnecting:      "connecting",
	DeviceStateListening:       "listening",
	DeviceStateSpeaking:        "speaking",
	DeviceStateUpgrading:       "upgrading",
	DeviceStateActivating:      "activating",
	DeviceStateFatalError:      "fatal_error",
}

func (s DeviceState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}
