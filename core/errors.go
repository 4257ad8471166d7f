package core

import "errors"

// ErrorKind identifies which capability failed during an operation.
type ErrorKind uint8

const (
	// KindSignalUnavailable means the driver could not provide the step
	// signal.
	KindSignalUnavailable ErrorKind = iota + 1
	// KindPin is a pin-level I/O failure.
	KindPin
	// KindTimerStart means the timer rejected a start request.
	KindTimerStart
	// KindTimerWait means the timer failed while counting down.
	KindTimerWait
	// KindTimeConversion means a duration constant does not fit the
	// timer's tick units.
	KindTimeConversion
	// KindDriver is a driver-capability failure (mode configuration,
	// driver enable, or motion control).
	KindDriver
)

func (k ErrorKind) String() string {
	switch k {
	case KindSignalUnavailable:
		return "step signal unavailable"
	case KindPin:
		return "pin I/O"
	case KindTimerStart:
		return "timer start"
	case KindTimerWait:
		return "timer wait"
	case KindTimeConversion:
		return "time conversion"
	case KindDriver:
		return "driver"
	}
	return "unknown"
}

// Error is the failure value produced by the operations in this package.
// Exactly one underlying cause is wrapped; Kind reports which capability
// produced it.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// IsKind reports whether err is an operation error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func opError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}
