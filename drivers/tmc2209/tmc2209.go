// Package tmc2209 configures Trinamic TMC2209 stepper drivers over their
// single-wire UART interface.
//
// Only the mode-control surface is covered here: microstep resolution via
// the CHOPCONF MRES field and output-stage enable via TOFF and the run
// current. Step generation stays on the dedicated STEP/DIR pins.
package tmc2209

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/francis-clairicia/stepper/core"
)

// Register addresses.
const (
	regGCONF     = 0x00
	regGSTAT     = 0x01
	regIFCNT     = 0x02
	regIHOLDIRUN = 0x10
	regCHOPCONF  = 0x6C
)

const (
	syncNibble = 0x05
	writeFlag  = 0x80

	// GCONF bits.
	gconfPDNDisable     = 1 << 6
	gconfMStepRegSelect = 1 << 7

	// CHOPCONF fields.
	mresShift   = 24
	mresMask    = 0b1111 << mresShift
	toffMask    = 0b1111
	toffDefault = 3
)

// Mode-switch settle times. The output stage needs its standstill current
// regulation to settle after being switched on.
const (
	SetupTime = 100 * time.Microsecond
	HoldTime  = 130 * time.Millisecond
)

// Device is one TMC2209 node on a UART bus. Up to four drivers share a
// bus, addressed 0..3 via the MS1/MS2 straps.
type Device struct {
	bus     io.ReadWriter
	addr    uint8
	run     uint8
	scratch [8]byte
}

var _ core.ModeControl = (*Device)(nil)

func New(bus io.ReadWriter, addr uint8) *Device {
	return &Device{bus: bus, addr: addr, run: 16}
}

// SetRunCurrent sets the IRUN/IHOLD current scale (0..31) programmed by
// the next EnableDriver call.
func (d *Device) SetRunCurrent(scale uint8) {
	if scale > 31 {
		scale = 31
	}
	d.run = scale
}

// ApplyModeConfig programs the MRES microstep resolution field. The
// output stage is kept off (TOFF=0) until EnableDriver.
func (d *Device) ApplyModeConfig(mode core.StepMode) error {
	mres, err := mresFor(mode)
	if err != nil {
		return err
	}
	gconf, err := d.readRegister(regGCONF)
	if err != nil {
		return fmt.Errorf("tmc2209: read GCONF: %w", err)
	}
	// Resolution comes from MRES, not the MS pins, and the PDN_UART pin
	// is dedicated to UART.
	gconf |= gconfPDNDisable | gconfMStepRegSelect
	if err := d.writeRegister(regGCONF, gconf); err != nil {
		return fmt.Errorf("tmc2209: set GCONF: %w", err)
	}

	chopconf, err := d.readRegister(regCHOPCONF)
	if err != nil {
		return fmt.Errorf("tmc2209: read CHOPCONF: %w", err)
	}
	chopconf &^= uint32(mresMask)
	chopconf |= mres << mresShift
	chopconf &^= toffMask
	if err := d.writeRegister(regCHOPCONF, chopconf); err != nil {
		return fmt.Errorf("tmc2209: set CHOPCONF: %w", err)
	}
	return nil
}

// EnableDriver programs the run current and a non-zero TOFF, switching
// the output stage on.
func (d *Device) EnableDriver() error {
	// IHOLD bits 4:0, IRUN bits 12:8; hold current equals run current.
	iholdIRun := uint32(d.run)<<8 | uint32(d.run)
	if err := d.writeRegister(regIHOLDIRUN, iholdIRun); err != nil {
		return fmt.Errorf("tmc2209: set IHOLD_IRUN: %w", err)
	}
	chopconf, err := d.readRegister(regCHOPCONF)
	if err != nil {
		return fmt.Errorf("tmc2209: read CHOPCONF: %w", err)
	}
	chopconf = chopconf&^uint32(toffMask) | toffDefault
	if err := d.writeRegister(regCHOPCONF, chopconf); err != nil {
		return fmt.Errorf("tmc2209: set CHOPCONF: %w", err)
	}
	return nil
}

func (d *Device) SetupTime() time.Duration { return SetupTime }
func (d *Device) HoldTime() time.Duration  { return HoldTime }

// Status reads and clears GSTAT; a non-zero value is reported as an
// error.
func (d *Device) Status() error {
	stat, err := d.readRegister(regGSTAT)
	if err != nil {
		return err
	}
	if stat != 0 {
		return fmt.Errorf("tmc2209: error status %#03b", stat)
	}
	return nil
}

// mresFor maps microsteps per full step to the MRES register code
// (256 -> 0 down to full step -> 8).
func mresFor(mode core.StepMode) (uint32, error) {
	code := uint32(8)
	for m := core.StepModeFull; m <= core.StepMode256; m <<= 1 {
		if m == mode {
			return code, nil
		}
		code--
	}
	return 0, fmt.Errorf("tmc2209: unsupported step mode %d", mode)
}

func (d *Device) readRegister(reg uint8) (uint32, error) {
	req := d.scratch[:4]
	req[0] = syncNibble
	req[1] = d.addr
	req[2] = reg
	req[3] = crc8(req[:3])
	if _, err := d.bus.Write(req); err != nil {
		return 0, fmt.Errorf("write request: %w", err)
	}

	reply := d.scratch[:8]
	if _, err := io.ReadFull(d.bus, reply); err != nil {
		return 0, fmt.Errorf("read reply: %w", err)
	}
	if reply[2] != reg {
		return 0, errors.New("reply for unexpected register")
	}
	if crc8(reply[:7]) != reply[7] {
		return 0, errors.New("reply CRC mismatch")
	}
	return binary.BigEndian.Uint32(reply[3:7]), nil
}

func (d *Device) writeRegister(reg uint8, val uint32) error {
	// IFCNT increments on every accepted write; read it around the write
	// to verify the datagram was taken.
	before, err := d.readRegister(regIFCNT)
	if err != nil {
		return err
	}

	wr := d.scratch[:8]
	wr[0] = syncNibble
	wr[1] = d.addr
	wr[2] = reg | writeFlag
	binary.BigEndian.PutUint32(wr[3:7], val)
	wr[7] = crc8(wr[:7])
	if _, err := d.bus.Write(wr); err != nil {
		return err
	}

	after, err := d.readRegister(regIFCNT)
	if err != nil {
		return err
	}
	if uint8(after) != uint8(before)+1 {
		return errors.New("write not acknowledged")
	}
	return nil
}

// crc8 is the CRC8-ATM polynomial (x^8 + x^2 + x + 1) computed LSB-first,
// as specified in the TMC2209 datasheet.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		for i := 0; i < 8; i++ {
			if (crc>>7)^(b&1) == 1 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
			b >>= 1
		}
	}
	return crc
}
