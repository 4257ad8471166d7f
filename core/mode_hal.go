package core

import "time"

// StepMode is a microstep resolution, in microsteps per full step.
type StepMode uint16

const (
	StepModeFull      StepMode = 1
	StepModeHalf      StepMode = 2
	StepModeQuarter   StepMode = 4
	StepModeEighth    StepMode = 8
	StepModeSixteenth StepMode = 16
	StepMode32        StepMode = 32
	StepMode64        StepMode = 64
	StepMode128       StepMode = 128
	StepMode256       StepMode = 256
)

// ModeControl is implemented by drivers whose microstep resolution can be
// reconfigured at runtime. After ApplyModeConfig the hardware requires
// SetupTime before the output stage may be enabled, and HoldTime of settle
// time after.
type ModeControl interface {
	ApplyModeConfig(mode StepMode) error
	EnableDriver() error

	SetupTime() time.Duration
	HoldTime() time.Duration
}
