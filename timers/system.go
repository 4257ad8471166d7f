package timers

import (
	"time"

	"github.com/francis-clairicia/stepper/core"
)

// SystemTimer measures countdowns against the wall clock. It is meant for
// hosted use, where step timing rides on the operating system's clock
// resolution rather than a hardware counter.
type SystemTimer struct {
	freq     uint32
	deadline time.Time
	running  bool
}

// NewSystemTimer returns a wall-clock timer with the given nominal tick
// rate. A zero freq defaults to 1MHz, so one tick is one microsecond.
func NewSystemTimer(freq uint32) *SystemTimer {
	if freq == 0 {
		freq = 1_000_000
	}
	return &SystemTimer{freq: freq}
}

func (s *SystemTimer) Frequency() uint32 { return s.freq }

func (s *SystemTimer) Start(d core.Ticks) error {
	dur := time.Duration(uint64(d) * uint64(time.Second) / uint64(s.freq))
	s.deadline = time.Now().Add(dur)
	s.running = true
	return nil
}

func (s *SystemTimer) Wait() (bool, error) {
	if !s.running {
		return false, ErrNotStarted
	}
	if time.Now().Before(s.deadline) {
		return false, nil
	}
	s.running = false
	return true, nil
}
