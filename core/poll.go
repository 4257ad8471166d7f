// Package core implements non-blocking, polled stepper-motor operations.
//
// Every hardware action in this package is an explicit state machine that
// makes progress only when its Poll method is called. A poll never blocks:
// it either advances the operation by one phase or reports that an external
// resource (typically a countdown timer) is still busy. The caller decides
// the re-poll cadence: a tight busy loop, a periodic tick callback, or a
// hardware interrupt handler that polls again when the timer fires.
package core

// Operation is the common contract of the polled state machines in this
// package. Poll advances the operation by at most one phase transition.
// done reports successful completion. A non-nil error is the terminal
// result of that specific poll only; see the per-operation documentation
// for what later polls report.
type Operation interface {
	Poll() (done bool, err error)
}

// Wait busy-polls op until it produces a terminal result. It spins the
// calling goroutine; use the async adapter or an interrupt-driven re-poll
// when that is not acceptable.
func Wait(op Operation) error {
	for {
		done, err := op.Poll()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}
