package core

type pulseState uint8

const (
	pulseInitial pulseState = iota
	pulseStarted
	pulseFinished
)

// StepPulse emits a single, correctly timed step pulse: raise the step
// signal, hold it high for the driver's pulse length as measured by the
// timer, lower it again.
//
// The operation exclusively owns the driver and the timer until it is
// finished or released. It does not touch the hardware before the first
// Poll.
type StepPulse struct {
	driver StepControl
	timer  Timer
	state  pulseState
}

func NewStepPulse(driver StepControl, timer Timer) *StepPulse {
	return &StepPulse{driver: driver, timer: timer}
}

// Poll advances the pulse by one step of progress.
//
// The first poll raises the step signal and arms the timer. Subsequent
// polls check the timer and lower the signal once the pulse length has
// elapsed. Any failure finishes the operation and is reported by that
// poll alone: once finished, every further poll reports success, even
// after a poll that returned an error. Callers must capture the result
// of the poll that produced it.
func (p *StepPulse) Poll() (bool, error) {
	switch p.state {
	case pulseInitial:
		pin, err := p.driver.StepPin()
		if err != nil {
			p.state = pulseFinished
			return false, opError(KindSignalUnavailable, err)
		}
		if err := pin.SetHigh(); err != nil {
			p.state = pulseFinished
			return false, opError(KindPin, err)
		}
		ticks, err := DurationToTicks(p.driver.PulseLength(), p.timer.Frequency())
		if err != nil {
			p.state = pulseFinished
			return false, opError(KindTimeConversion, err)
		}
		if err := p.timer.Start(ticks); err != nil {
			p.state = pulseFinished
			return false, opError(KindTimerStart, err)
		}
		p.state = pulseStarted
		return false, nil

	case pulseStarted:
		done, err := p.timer.Wait()
		if err != nil {
			p.state = pulseFinished
			return false, opError(KindTimerWait, err)
		}
		if !done {
			return false, nil
		}
		pin, err := p.driver.StepPin()
		if err != nil {
			p.state = pulseFinished
			return false, opError(KindSignalUnavailable, err)
		}
		if err := pin.SetLow(); err != nil {
			p.state = pulseFinished
			return false, opError(KindPin, err)
		}
		p.state = pulseFinished
		return true, nil

	default:
		return true, nil
	}
}

// Wait busy-polls until the pulse completes.
func (p *StepPulse) Wait() error { return Wait(p) }

// Release discards the operation and hands the driver and timer back to
// the caller. Legal in any phase; an in-progress pulse is abandoned with
// the signal left as it is.
func (p *StepPulse) Release() (StepControl, Timer) {
	return p.driver, p.timer
}
