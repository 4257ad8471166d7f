package core

type moveState uint8

const (
	moveInitial moveState = iota
	moveMoving
	moveFinished
)

// MoveTo runs a motion command to completion: a single StartMove request,
// then an Update request on every poll until the driver reports that the
// move has finished.
//
// The operation exclusively owns the motion driver until it is finished
// or released.
type MoveTo struct {
	driver      MotionControl
	maxVelocity Velocity
	targetStep  int32
	state       moveState
}

func NewMoveTo(driver MotionControl, maxVelocity Velocity, targetStep int32) *MoveTo {
	return &MoveTo{
		driver:      driver,
		maxVelocity: maxVelocity,
		targetStep:  targetStep,
	}
}

// Poll advances the move by one step of progress.
//
// Errors never finish this operation: a StartMove failure leaves it in
// its initial phase so the next poll retries the request, and an Update
// failure leaves it moving. The finished phase is therefore reached only
// through a completed move and masks nothing.
func (m *MoveTo) Poll() (bool, error) {
	switch m.state {
	case moveInitial:
		if err := m.driver.StartMove(m.maxVelocity, m.targetStep); err != nil {
			return false, opError(KindDriver, err)
		}
		m.state = moveMoving
		return false, nil

	case moveMoving:
		stillMoving, err := m.driver.Update()
		if err != nil {
			return false, opError(KindDriver, err)
		}
		if stillMoving {
			return false, nil
		}
		m.state = moveFinished
		return true, nil

	default:
		return true, nil
	}
}

// Wait busy-polls until the move completes.
func (m *MoveTo) Wait() error { return Wait(m) }

// Release discards the operation and hands the driver back to the caller.
// Legal in any phase; an in-progress move keeps running at the driver's
// discretion.
func (m *MoveTo) Release() MotionControl {
	return m.driver
}
