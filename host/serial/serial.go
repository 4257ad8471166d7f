// Package serial abstracts the serial link between the host and the
// motion MCU, so the protocol layer can run against a real port or an
// in-memory fake.
package serial

import "io"

// Port is a serial port.
type Port interface {
	io.ReadWriteCloser

	// Flush pushes any buffered data out on the wire.
	Flush() error
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g. "/dev/ttyACM0", "COM3").
	Device string

	// Baud rate. USB CDC devices ignore this.
	Baud int

	// Read timeout in milliseconds (0 = blocking).
	ReadTimeout int
}

// DefaultConfig returns the configuration used for a USB-attached
// motion MCU.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 500,
	}
}
