//go:build !tinygo && !cgo

package hal

// newHostSpeaker reports no speaker when the Ebiten audio backend is unavailable.
func newHostSpeaker() AudioSink { return nil }
