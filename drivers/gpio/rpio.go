//go:build !tinygo

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPi drives the Raspberry Pi GPIO header through /dev/gpiomem using
// go-rpio. Pin numbers are BCM.
type RPi struct {
	pins map[int]rpio.Pin
}

// OpenRPi memory-maps the GPIO registers. It fails when not running on a
// Raspberry Pi or without access to /dev/gpiomem.
func OpenRPi() (*RPi, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("gpio: open rpio: %w", err)
	}
	return &RPi{pins: make(map[int]rpio.Pin)}, nil
}

func (r *RPi) SetupPin(pin int, mode PinMode) error {
	p := rpio.Pin(pin)
	r.pins[pin] = p
	switch mode {
	case Input:
		p.Input()
	case Output:
		p.Output()
	default:
		return fmt.Errorf("gpio: unknown pin mode %d", mode)
	}
	return nil
}

func (r *RPi) WritePin(pin int, level Level) error {
	p, ok := r.pins[pin]
	if !ok {
		if err := r.SetupPin(pin, Output); err != nil {
			return err
		}
		p = r.pins[pin]
	}
	if level == High {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

func (r *RPi) ReadPin(pin int) (Level, error) {
	p, ok := r.pins[pin]
	if !ok {
		return Low, fmt.Errorf("gpio: pin %d not set up", pin)
	}
	return Level(p.Read() == rpio.High), nil
}

func (r *RPi) Close() error {
	return rpio.Close()
}
