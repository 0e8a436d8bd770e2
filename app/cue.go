package app

import (
	"log/slog"
	"math"

	"supermini/hal"
)

const (
	cueFreq     = 880
	cueDuration = 80 // ms
	cueAmp      = 0.3
)

// listenCue is a short sine beep at rate with a linear fade-out, played
// when a listening session opens.
func listenCue(rate int) []int16 {
	n := rate * cueDuration / 1000
	out := make([]int16, n)
	for i := range out {
		fade := 1 - float64(i)/float64(n)
		v := math.Sin(2*math.Pi*cueFreq*float64(i)/float64(rate)) * cueAmp * fade
		out[i] = int16(v * math.MaxInt16)
	}
	return out
}

func playCue(codec hal.AudioCodec, cue []int16, log *slog.Logger) {
	if codec == nil || len(cue) == 0 {
		return
	}
	if _, err := codec.Write(cue); err != nil {
		log.Warn("app: cue", slog.Any("err", err))
	}
}
