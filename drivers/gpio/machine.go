//go:build tinygo

package gpio

import (
	"fmt"

	"machine"
)

// Machine drives MCU pins through the machine package when built with
// TinyGo.
type Machine struct{}

func (Machine) SetupPin(pin int, mode PinMode) error {
	p := machine.Pin(pin)
	switch mode {
	case Input:
		p.Configure(machine.PinConfig{Mode: machine.PinInput})
	case Output:
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	default:
		return fmt.Errorf("gpio: unknown pin mode %d", mode)
	}
	return nil
}

func (Machine) WritePin(pin int, level Level) error {
	machine.Pin(pin).Set(bool(level))
	return nil
}

func (Machine) ReadPin(pin int) (Level, error) {
	return Level(machine.Pin(pin).Get()), nil
}

func (Machine) Close() error { return nil }
