package board

import (
	"sync"

	"supermini/hal"
)

// slot holds one process-wide value. The first successful get stores it;
// later calls return the stored value without running init.
type slot[T any] struct {
	mu  sync.Mutex
	v   T
	set bool
}

func (s *slot[T]) get(init func() (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return s.v, nil
	}
	v, err := init()
	if err != nil {
		var zero T
		return zero, err
	}
	s.v, s.set = v, true
	return v, nil
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.v, s.set = zero, false
}

// The LED and the audio codec are shared by every Board in the process.
var (
	ledSlot   slot[*hal.SingleLed]
	codecSlot slot[*hal.NoAudioCodecSimplex]
)

// ResetSingletons forgets the shared LED and codec so the next accessor
// call builds them again. Tests use it between runs.
func ResetSingletons() {
	ledSlot.reset()
	codecSlot.reset()
}
