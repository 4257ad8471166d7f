// Package motion provides a software step generator for driver boards
// that cannot run a move on their own. It turns a step/dir interface
// into a core.MotionControl by emitting constant-velocity pulses from
// the polling loop.
package motion

import (
	"fmt"
	"time"

	"github.com/francis-clairicia/stepper/core"
)

// DirControl sets the travel direction of the motor. Forward means
// increasing step positions.
type DirControl interface {
	SetDirection(forward bool) error
}

type phase uint8

const (
	phaseIdle phase = iota
	phasePulse
	phaseGap
)

// Controller drives a step/dir board at a constant step rate and tracks
// the absolute position in steps, relative to wherever the motor was
// when the controller was built.
//
// Update performs one unit of progress per call: it advances the
// in-flight step pulse, waits out the inter-step gap, or launches the
// next pulse. The controller owns the driver and the timer for the
// whole move.
type Controller struct {
	driver core.StepControl
	dir    DirControl
	timer  core.Timer

	position int32
	target   int32
	forward  bool
	gapTicks core.Ticks

	phase phase
	pulse *core.StepPulse
}

func New(driver core.StepControl, dir DirControl, timer core.Timer) *Controller {
	return &Controller{driver: driver, dir: dir, timer: timer}
}

// Position returns the current absolute step position.
func (c *Controller) Position() int32 { return c.position }

// StartMove sets the direction line and computes the step period for a
// constant-velocity move toward targetStep. It must not be called while
// a step pulse is in flight; the pulse would be abandoned with the step
// signal in an unknown state.
func (c *Controller) StartMove(maxVelocity core.Velocity, targetStep int32) error {
	if maxVelocity <= 0 {
		return fmt.Errorf("motion: velocity %d is not positive", maxVelocity)
	}
	period, err := core.DurationToTicks(time.Second/time.Duration(maxVelocity), c.timer.Frequency())
	if err != nil {
		return fmt.Errorf("motion: step period: %w", err)
	}
	pulse, err := core.DurationToTicks(c.driver.PulseLength(), c.timer.Frequency())
	if err != nil {
		return fmt.Errorf("motion: pulse length: %w", err)
	}
	forward := targetStep >= c.position
	if err := c.dir.SetDirection(forward); err != nil {
		return fmt.Errorf("motion: set direction: %w", err)
	}

	// The pulse high time is part of the step period.
	if period > pulse {
		c.gapTicks = period - pulse
	} else {
		c.gapTicks = 0
	}
	c.target = targetStep
	c.forward = forward
	c.phase = phaseIdle
	c.pulse = nil
	return nil
}

// Update advances the move by one unit of progress and reports whether
// the motor is still traveling. A failed update leaves the position
// unchanged; the caller may retry.
func (c *Controller) Update() (bool, error) {
	switch c.phase {
	case phasePulse:
		done, err := c.pulse.Poll()
		if err != nil {
			// The pulse is terminal after an error; drop it so the
			// retry starts a fresh one.
			c.pulse = nil
			c.phase = phaseIdle
			return true, err
		}
		if !done {
			return true, nil
		}
		c.pulse = nil
		if c.forward {
			c.position++
		} else {
			c.position--
		}
		if c.position == c.target {
			c.phase = phaseIdle
			return false, nil
		}
		if c.gapTicks == 0 {
			c.phase = phaseIdle
			return true, nil
		}
		if err := c.timer.Start(c.gapTicks); err != nil {
			c.phase = phaseIdle
			return true, err
		}
		c.phase = phaseGap
		return true, nil

	case phaseGap:
		done, err := c.timer.Wait()
		if err != nil {
			return true, err
		}
		if done {
			c.phase = phaseIdle
		}
		return true, nil

	default:
		if c.position == c.target {
			return false, nil
		}
		c.pulse = core.NewStepPulse(c.driver, c.timer)
		c.phase = phasePulse
		return c.Update()
	}
}
