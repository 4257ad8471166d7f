// Package timers provides core.Timer implementations for hosted and
// cooperative environments.
package timers

import (
	"errors"

	"github.com/francis-clairicia/stepper/core"
)

// ErrNotStarted is returned by Wait when no countdown is armed.
var ErrNotStarted = errors.New("timer not started")

// ErrCountdownTooLong is returned by Start for countdowns the wraparound
// comparison cannot represent.
var ErrCountdownTooLong = errors.New("countdown exceeds half the counter range")

// TickTimer counts down against a tick counter that the caller advances,
// typically from a hardware timer interrupt or a main-loop clock.
//
// The counter wraps at 32 bits; countdowns shorter than half the counter
// range are handled correctly across the wrap, and Start rejects anything
// longer.
type TickTimer struct {
	freq     uint32
	now      uint32
	deadline uint32
	running  bool
}

func NewTickTimer(freq uint32) *TickTimer {
	return &TickTimer{freq: freq}
}

func (t *TickTimer) Frequency() uint32 { return t.freq }

// Advance moves the tick counter forward by n ticks.
func (t *TickTimer) Advance(n core.Ticks) { t.now += uint32(n) }

// SetTime sets the absolute tick counter, for hardware integration.
func (t *TickTimer) SetTime(ticks uint32) { t.now = ticks }

// Now returns the current tick counter.
func (t *TickTimer) Now() uint32 { return t.now }

func (t *TickTimer) Start(d core.Ticks) error {
	if d >= 1<<31 {
		return ErrCountdownTooLong
	}
	t.deadline = t.now + uint32(d)
	t.running = true
	return nil
}

func (t *TickTimer) Wait() (bool, error) {
	if !t.running {
		return false, ErrNotStarted
	}
	// Signed difference keeps the comparison correct across counter
	// wraparound.
	if int32(t.deadline-t.now) > 0 {
		return false, nil
	}
	t.running = false
	return true, nil
}
