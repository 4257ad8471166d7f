package core

// Velocity is a motion speed limit in steps per second.
type Velocity int32

// MotionControl is implemented by drivers that can run a motion command on
// their own, such as external motion-controller chips or a software step
// generator.
type MotionControl interface {
	// StartMove begins a move toward the absolute position targetStep,
	// keeping the speed within maxVelocity.
	StartMove(maxVelocity Velocity, targetStep int32) error

	// Update drives the motion forward and reports whether it is still in
	// progress. It must be called repeatedly until it returns false.
	Update() (stillMoving bool, err error)
}
