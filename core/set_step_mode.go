package core

type modeSwitchState uint8

const (
	modeSwitchInitial modeSwitchState = iota
	modeSwitchApplyingConfig
	modeSwitchEnablingDriver
	modeSwitchFinished
)

// ModeSwitch reconfigures a driver's microstep resolution, observing the
// setup delay the hardware requires before the output stage is enabled
// and the hold delay after.
//
// The operation borrows the driver and the timer for its lifetime; it has
// no Release because it owns nothing outright. Dropping it is enough.
//
// ModeSwitch reports done on the poll that enables the output stage and
// arms the hold timer, before the hold delay has elapsed. Callers that
// must not touch the hardware until it has fully settled can keep
// polling: the operation reports done again once the hold timer expires.
type ModeSwitch struct {
	mode   StepMode
	driver ModeControl
	timer  Timer
	state  modeSwitchState
}

func NewModeSwitch(mode StepMode, driver ModeControl, timer Timer) *ModeSwitch {
	return &ModeSwitch{mode: mode, driver: driver, timer: timer}
}

// Poll advances the mode switch by one step of progress. Any failure
// finishes the operation and is reported by that poll alone; later polls
// report success (same caveat as StepPulse.Poll).
func (m *ModeSwitch) Poll() (bool, error) {
	switch m.state {
	case modeSwitchInitial:
		if err := m.driver.ApplyModeConfig(m.mode); err != nil {
			m.state = modeSwitchFinished
			return false, opError(KindDriver, err)
		}
		ticks, err := DurationToTicks(m.driver.SetupTime(), m.timer.Frequency())
		if err != nil {
			m.state = modeSwitchFinished
			return false, opError(KindTimeConversion, err)
		}
		if err := m.timer.Start(ticks); err != nil {
			m.state = modeSwitchFinished
			return false, opError(KindTimerStart, err)
		}
		m.state = modeSwitchApplyingConfig
		return false, nil

	case modeSwitchApplyingConfig:
		done, err := m.timer.Wait()
		if err != nil {
			m.state = modeSwitchFinished
			return false, opError(KindTimerWait, err)
		}
		if !done {
			return false, nil
		}
		if err := m.driver.EnableDriver(); err != nil {
			m.state = modeSwitchFinished
			return false, opError(KindDriver, err)
		}
		ticks, err := DurationToTicks(m.driver.HoldTime(), m.timer.Frequency())
		if err != nil {
			m.state = modeSwitchFinished
			return false, opError(KindTimeConversion, err)
		}
		if err := m.timer.Start(ticks); err != nil {
			m.state = modeSwitchFinished
			return false, opError(KindTimerStart, err)
		}
		m.state = modeSwitchEnablingDriver
		// The mode change is committed the instant the hold timer is
		// armed; the remaining polls only wait out the settle time.
		return true, nil

	case modeSwitchEnablingDriver:
		done, err := m.timer.Wait()
		if err != nil {
			m.state = modeSwitchFinished
			return false, opError(KindTimerWait, err)
		}
		if !done {
			return false, nil
		}
		m.state = modeSwitchFinished
		return true, nil

	default:
		return true, nil
	}
}

// Wait busy-polls until the mode switch reports done for the first time,
// which is before the hold delay has elapsed.
func (m *ModeSwitch) Wait() error { return Wait(m) }

// WaitSettled busy-polls until the hold delay has elapsed as well, so the
// driver outputs are fully settled when it returns. Callers that go on to
// step the motor, or that reuse the timer, must use this rather than Wait:
// after Wait the hold timer is still armed and counting.
func (m *ModeSwitch) WaitSettled() error {
	for m.state != modeSwitchFinished {
		if _, err := m.Poll(); err != nil {
			return err
		}
	}
	return nil
}
