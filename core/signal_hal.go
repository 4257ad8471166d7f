package core

import "time"

// OutputPin is a single digital output line.
type OutputPin interface {
	SetHigh() error
	SetLow() error
}

// StepControl is implemented by drivers that expose a dedicated step
// signal. StepPin may fail if the signal is temporarily unavailable, for
// example while the line is claimed by another peripheral.
type StepControl interface {
	StepPin() (OutputPin, error)

	// PulseLength returns the minimum high time of a step pulse.
	PulseLength() time.Duration
}
