package core

import (
	"errors"
	"math"
	"time"
)

// Ticks is a duration in timer-native tick units.
type Ticks uint32

// Timer is a countdown timer with a non-blocking wait.
//
// Start arms the timer for the given number of ticks. Wait never blocks:
// it returns (false, nil) while the timer is still counting, (true, nil)
// once the countdown has elapsed, and a non-nil error if the timer itself
// failed.
type Timer interface {
	// Frequency returns the timer's tick rate in Hz.
	Frequency() uint32

	Start(d Ticks) error
	Wait() (done bool, err error)
}

// Tick conversion failures. These surface from operations wrapped in an
// Error of kind KindTimeConversion.
var (
	ErrNegativeDuration = errors.New("negative duration")
	ErrZeroFrequency    = errors.New("timer frequency is zero")
	ErrTicksOverflow    = errors.New("duration overflows timer ticks")
)

// DurationToTicks converts d into tick units of a timer running at hz.
// The result is rounded up so a converted duration never undershoots a
// hardware minimum.
func DurationToTicks(d time.Duration, hz uint32) (Ticks, error) {
	if d < 0 {
		return 0, ErrNegativeDuration
	}
	if hz == 0 {
		return 0, ErrZeroFrequency
	}
	ns := uint64(d)
	if ns > (math.MaxUint64-uint64(time.Second-1))/uint64(hz) {
		return 0, ErrTicksOverflow
	}
	t := (ns*uint64(hz) + uint64(time.Second-1)) / uint64(time.Second)
	if t > math.MaxUint32 {
		return 0, ErrTicksOverflow
	}
	return Ticks(t), nil
}
