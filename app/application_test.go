package app

import (
	"slices"
	"testing"
)

func freshApp(t *testing.T) *Application {
	t.Helper()
	ResetInstance()
	t.Cleanup(ResetInstance)
	return GetInstance()
}

func TestGetInstanceIsSingleton(t *testing.T) {
	a := freshApp(t)
	if GetInstance() != a {
		t.Fatal("GetInstance returned a different application")
	}
	if a.DeviceState() != DeviceStateUnknown {
		t.Fatalf("initial state = %s", a.DeviceState())
	}
	ResetInstance()
	if GetInstance() == a {
		t.Fatal("ResetInstance kept the application")
	}
}

func TestToggleChatState(t *testing.T) {
	tests := []struct {
		from DeviceState
		want DeviceState
	}{
		{DeviceStateIdle, DeviceStateListening},
		{DeviceStateListening, DeviceStateIdle},
		{DeviceStateSpeaking, DeviceStateIdle},
		{DeviceStateStarting, DeviceStateStarting},
		{DeviceStateConnecting, DeviceStateConnecting},
		{DeviceStateUpgrading, DeviceStateUpgrading},
		{DeviceStateFatalError, DeviceStateFatalError},
	}
	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			a := freshApp(t)
			a.SetDeviceState(tt.from)
			a.ToggleChatState()
			if got := a.DeviceState(); got != tt.want {
				t.Fatalf("state = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStateListeners(t *testing.T) {
	a := freshApp(t)
	var seen []string
	a.OnStateChange(func(from, to DeviceState) {
		seen = append(seen, from.String()+">"+to.String())
	})

	a.SetDeviceState(DeviceStateIdle)
	a.SetDeviceState(DeviceStateIdle)
	a.ToggleChatState()

	want := []string{"unknown>idle", "idle>connecting", "connecting>listening"}
	if !slices.Equal(seen, want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
}

func TestDeviceStateString(t *testing.T) {
	if got := DeviceStateWifiConfiguring.String(); got != "wifi_configuring" {
		t.Fatalf("String() = %q", got)
	}
	if got := DeviceState(200).String(); got != "state(200)" {
		t.Fatalf("String() = %q", got)
	}
}
