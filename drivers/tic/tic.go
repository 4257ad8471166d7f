// Package tic drives Pololu Tic stepper motor controllers over I²C.
//
// The Tic plans and executes moves on its own; this package exposes it
// as a core.MotionControl so a MoveTo operation can poll it to
// completion.
package tic

import (
	"encoding/binary"
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/francis-clairicia/stepper/core"
)

// I2CAddr is the controller's factory-default address.
const I2CAddr uint16 = 0x0E

// Command codes from the Tic user's guide.
const (
	cmdSetTargetPosition   = 0xE0
	cmdSetSpeedMax         = 0xE6
	cmdExitSafeStart       = 0x83
	cmdEnergize            = 0x85
	cmdDeenergize          = 0x86
	cmdResetCommandTimeout = 0x8C
	cmdGetVariable         = 0xA1
)

// Variable offsets for cmdGetVariable.
const (
	varTargetPosition  = 0x0A
	varCurrentPosition = 0x22
	varCurrentVelocity = 0x26
)

// The Tic measures speed in pulses per 10000 seconds.
const speedUnit = 10_000

// maxVelocity is the highest pulse rate the controller supports.
const maxVelocity core.Velocity = 50_000

// Device is a Tic controller on an I²C bus.
type Device struct {
	bus  drivers.I2C
	addr uint16
	buf  [6]byte
}

var _ core.MotionControl = (*Device)(nil)

// New returns a device handle on the given bus. A zero addr selects the
// factory default.
func New(bus drivers.I2C, addr uint16) *Device {
	if addr == 0 {
		addr = I2CAddr
	}
	return &Device{bus: bus, addr: addr}
}

// Energize switches the motor outputs on and leaves safe-start, after
// which move commands are accepted.
func (d *Device) Energize() error {
	if err := d.commandQuick(cmdEnergize); err != nil {
		return fmt.Errorf("tic: energize: %w", err)
	}
	if err := d.commandQuick(cmdExitSafeStart); err != nil {
		return fmt.Errorf("tic: exit safe start: %w", err)
	}
	return nil
}

// Deenergize cuts power to the motor outputs.
func (d *Device) Deenergize() error {
	if err := d.commandQuick(cmdDeenergize); err != nil {
		return fmt.Errorf("tic: deenergize: %w", err)
	}
	return nil
}

// StartMove sets the speed limit and the target position; the controller
// starts planning the move immediately.
func (d *Device) StartMove(velocity core.Velocity, targetStep int32) error {
	if velocity <= 0 {
		return fmt.Errorf("tic: velocity limit must be positive, got %d", velocity)
	}
	if velocity > maxVelocity {
		return fmt.Errorf("tic: velocity %d exceeds controller maximum %d", velocity, maxVelocity)
	}
	if err := d.commandW32(cmdSetSpeedMax, uint32(velocity)*speedUnit); err != nil {
		return fmt.Errorf("tic: set speed max: %w", err)
	}
	if err := d.commandW32(cmdSetTargetPosition, uint32(targetStep)); err != nil {
		return fmt.Errorf("tic: set target position: %w", err)
	}
	return nil
}

// Update reports whether the controller is still moving. The command
// timeout is reset on every call so the Tic keeps trusting the host for
// as long as the move is being polled.
func (d *Device) Update() (bool, error) {
	if err := d.commandQuick(cmdResetCommandTimeout); err != nil {
		return false, fmt.Errorf("tic: reset command timeout: %w", err)
	}
	pos, err := d.getVar32(varCurrentPosition)
	if err != nil {
		return false, fmt.Errorf("tic: read position: %w", err)
	}
	target, err := d.getVar32(varTargetPosition)
	if err != nil {
		return false, fmt.Errorf("tic: read target: %w", err)
	}
	vel, err := d.getVar32(varCurrentVelocity)
	if err != nil {
		return false, fmt.Errorf("tic: read velocity: %w", err)
	}
	return pos != target || vel != 0, nil
}

// Position returns the controller's current position in microsteps.
func (d *Device) Position() (int32, error) {
	pos, err := d.getVar32(varCurrentPosition)
	if err != nil {
		return 0, fmt.Errorf("tic: read position: %w", err)
	}
	return int32(pos), nil
}

func (d *Device) commandQuick(cmd byte) error {
	d.buf[0] = cmd
	return d.bus.Tx(d.addr, d.buf[:1], nil)
}

func (d *Device) commandW32(cmd byte, val uint32) error {
	d.buf[0] = cmd
	binary.LittleEndian.PutUint32(d.buf[1:5], val)
	return d.bus.Tx(d.addr, d.buf[:5], nil)
}

func (d *Device) getVar32(offset byte) (uint32, error) {
	d.buf[0] = cmdGetVariable
	d.buf[1] = offset
	var out [4]byte
	if err := d.bus.Tx(d.addr, d.buf[:2], out[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(out[:]), nil
}
