// Package host talks to a motion MCU over a serial link, exposing it as
// a core.MotionControl so the same operations run against local drivers
// and remote firmware alike.
package host

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/francis-clairicia/stepper/core"
	"github.com/francis-clairicia/stepper/host/serial"
)

// MCU is a connection to motion firmware speaking a line protocol:
//
//	-> move <velocity> <target>\n
//	<- ok\n
//	-> mode <microsteps>\n
//	<- ok\n
//	-> status\n
//	<- moving <position>\n  |  idle <position>\n
//
// Any request may be answered with "error <message>". MCU implements
// core.MotionControl; one request is exchanged per Update call, so the
// polling loop stays in charge of pacing.
type MCU struct {
	port serial.Port
	r    *bufio.Reader

	position int32
}

var _ core.MotionControl = (*MCU)(nil)

// Connect opens the serial device and wraps it in an MCU client.
func Connect(device string) (*MCU, error) {
	return ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig opens a serial port with a custom configuration.
func ConnectWithConfig(cfg *serial.Config) (*MCU, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("host: open serial port: %w", err)
	}
	return NewMCU(port), nil
}

// NewMCU wraps an already open port. Useful for tests and non-serial
// transports.
func NewMCU(port serial.Port) *MCU {
	return &MCU{port: port, r: bufio.NewReader(port)}
}

func (m *MCU) Close() error { return m.port.Close() }

// Position returns the motor position reported by the last status
// exchange.
func (m *MCU) Position() int32 { return m.position }

// SetStepMode asks the firmware to reconfigure the driver's microstep
// resolution. The firmware waits out the mode switch before replying.
func (m *MCU) SetStepMode(mode core.StepMode) error {
	reply, err := m.roundTrip(fmt.Sprintf("mode %d", mode))
	if err != nil {
		return err
	}
	if reply != "ok" {
		return fmt.Errorf("host: mode switch rejected: %q", reply)
	}
	return nil
}

// StartMove asks the firmware to begin a move.
func (m *MCU) StartMove(maxVelocity core.Velocity, targetStep int32) error {
	reply, err := m.roundTrip(fmt.Sprintf("move %d %d", maxVelocity, targetStep))
	if err != nil {
		return err
	}
	if reply != "ok" {
		return fmt.Errorf("host: move rejected: %q", reply)
	}
	return nil
}

// Update queries the firmware and reports whether the move is still in
// progress.
func (m *MCU) Update() (bool, error) {
	reply, err := m.roundTrip("status")
	if err != nil {
		return false, err
	}

	state, rest, _ := strings.Cut(reply, " ")
	if rest != "" {
		pos, err := strconv.ParseInt(rest, 10, 32)
		if err != nil {
			return false, fmt.Errorf("host: bad position in status %q: %w", reply, err)
		}
		m.position = int32(pos)
	}

	switch state {
	case "moving":
		return true, nil
	case "idle":
		return false, nil
	}
	return false, fmt.Errorf("host: unexpected status reply %q", reply)
}

// roundTrip sends one request line and reads one reply line. Errors
// reported by the firmware surface as Go errors.
func (m *MCU) roundTrip(request string) (string, error) {
	if _, err := m.port.Write([]byte(request + "\n")); err != nil {
		return "", fmt.Errorf("host: write %q: %w", request, err)
	}
	if err := m.port.Flush(); err != nil {
		return "", fmt.Errorf("host: flush: %w", err)
	}

	line, err := m.r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("host: read reply to %q: %w", request, err)
	}
	line = strings.TrimSpace(line)

	if msg, ok := strings.CutPrefix(line, "error "); ok {
		return "", fmt.Errorf("host: firmware error: %s", msg)
	}
	return line, nil
}
