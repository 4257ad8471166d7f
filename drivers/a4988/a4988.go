// Package a4988 drives A4988/DRV8825-class step-stick driver boards
// through discrete GPIO pins.
package a4988

import (
	"fmt"
	"time"

	"github.com/francis-clairicia/stepper/core"
	"github.com/francis-clairicia/stepper/drivers/gpio"
)

// Timing constants from the Allegro A4988 datasheet.
const (
	// PulseLength is the STEP minimum high time (t_A is 1µs; doubled for
	// margin on slow level shifters).
	PulseLength = 2 * time.Microsecond
	// SetupTime is the delay required after changing the microstep
	// configuration before the outputs may be enabled.
	SetupTime = 1 * time.Millisecond
	// HoldTime is the settle delay after enabling the output stage.
	HoldTime = 1 * time.Millisecond
)

// Pins is the wiring of the driver board. A pin number of zero or less
// means the line is not wired; STEP and DIR are mandatory, ENABLE and
// MS1..MS3 are optional.
type Pins struct {
	Step   int
	Dir    int
	Enable int // active low
	MS1    int
	MS2    int
	MS3    int
}

// Driver implements core.StepControl and core.ModeControl for a
// step-stick board.
type Driver struct {
	gpio gpio.Driver
	pins Pins
	step line
}

var (
	_ core.StepControl = (*Driver)(nil)
	_ core.ModeControl = (*Driver)(nil)
)

// New configures the wired pins as outputs. The ENABLE line is driven
// high (outputs off) until a mode switch enables the driver stage.
func New(g gpio.Driver, pins Pins) (*Driver, error) {
	if pins.Step <= 0 || pins.Dir <= 0 {
		return nil, fmt.Errorf("a4988: step and dir pins are required")
	}
	outputs := []int{pins.Step, pins.Dir}
	for _, p := range []int{pins.Enable, pins.MS1, pins.MS2, pins.MS3} {
		if p > 0 {
			outputs = append(outputs, p)
		}
	}
	for _, p := range outputs {
		if err := g.SetupPin(p, gpio.Output); err != nil {
			return nil, fmt.Errorf("a4988: setup pin %d: %w", p, err)
		}
	}
	if pins.Enable > 0 {
		if err := g.WritePin(pins.Enable, gpio.High); err != nil {
			return nil, fmt.Errorf("a4988: disable outputs: %w", err)
		}
	}
	return &Driver{
		gpio: g,
		pins: pins,
		step: line{g: g, pin: pins.Step},
	}, nil
}

// StepPin returns the STEP line.
func (d *Driver) StepPin() (core.OutputPin, error) {
	return &d.step, nil
}

func (d *Driver) PulseLength() time.Duration { return PulseLength }

// SetDirection sets the DIR line; forward drives it high.
func (d *Driver) SetDirection(forward bool) error {
	return d.gpio.WritePin(d.pins.Dir, gpio.Level(forward))
}

// MS1/MS2/MS3 truth table from the A4988 datasheet.
var modeTable = map[core.StepMode][3]gpio.Level{
	core.StepModeFull:      {gpio.Low, gpio.Low, gpio.Low},
	core.StepModeHalf:      {gpio.High, gpio.Low, gpio.Low},
	core.StepModeQuarter:   {gpio.Low, gpio.High, gpio.Low},
	core.StepModeEighth:    {gpio.High, gpio.High, gpio.Low},
	core.StepModeSixteenth: {gpio.High, gpio.High, gpio.High},
}

// ApplyModeConfig sets the MS1..MS3 lines for the requested resolution.
func (d *Driver) ApplyModeConfig(mode core.StepMode) error {
	levels, ok := modeTable[mode]
	if !ok {
		return fmt.Errorf("a4988: unsupported step mode %d", mode)
	}
	pins := [3]int{d.pins.MS1, d.pins.MS2, d.pins.MS3}
	for i, p := range pins {
		if p <= 0 {
			return fmt.Errorf("a4988: microstep pins not wired")
		}
		if err := d.gpio.WritePin(p, levels[i]); err != nil {
			return fmt.Errorf("a4988: write ms%d: %w", i+1, err)
		}
	}
	return nil
}

// EnableDriver switches the output stage on. ENABLE is active low; a
// board without the line wired is permanently enabled and this is a
// no-op.
func (d *Driver) EnableDriver() error {
	if d.pins.Enable <= 0 {
		return nil
	}
	return d.gpio.WritePin(d.pins.Enable, gpio.Low)
}

// Disable switches the output stage off; the motor freewheels.
func (d *Driver) Disable() error {
	if d.pins.Enable <= 0 {
		return nil
	}
	return d.gpio.WritePin(d.pins.Enable, gpio.High)
}

func (d *Driver) SetupTime() time.Duration { return SetupTime }
func (d *Driver) HoldTime() time.Duration  { return HoldTime }

// line adapts one GPIO pin to core.OutputPin.
type line struct {
	g   gpio.Driver
	pin int
}

func (l *line) SetHigh() error { return l.g.WritePin(l.pin, gpio.High) }
func (l *line) SetLow() error  { return l.g.WritePin(l.pin, gpio.Low) }
