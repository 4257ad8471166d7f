//go:build rp2040 || rp2350

// Package pio generates step pulse trains on the RP2040 PIO block, so
// the pulse timing is hardware-exact regardless of what the CPU and the
// garbage collector are doing.
package pio

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/francis-clairicia/stepper/core"
)

// Step train program. One FIFO word describes a burst of steps:
//
//	bits 0..15   step count - 1
//	bit  16      direction level
//	bits 17..24  inter-step gap reload value
//
//	     pull block          ; 0
//	     out x, 16           ; 1  burst length
//	     out pins, 1         ; 2  direction
//	     out isr, 8          ; 3  stash the gap length
//	step:
//	     mov y, isr          ; 4  reload the gap counter
//	     set pins, 1 [7]     ; 5  step high, 8 cycles
//	     set pins, 0         ; 6
//	gap:
//	     jmp y--, gap        ; 7
//	     jmp x--, step       ; 8
var trainInstructions = []uint16{
	0x80a0,
	0x6030,
	0x6001,
	0x60c8,
	0xa046,
	0xe701,
	0xe000,
	0x0087,
	0x0044,
}

// The jump targets are absolute, so the program must sit at offset 0.
const trainOrigin = 0

const (
	// State machine cycles per step at any velocity; the clock divider
	// carries the actual speed.
	cyclesPerStep = 64
	// Loop overhead outside the gap counter.
	overheadCycles = 13

	maxBurst = 1 << 16
)

var errVelocityRange = errors.New("pio: velocity out of range for the state machine clock")

// PulseTrain drives a step/dir pair from a PIO state machine and
// implements core.MotionControl. StartMove programs the clock divider
// for the requested velocity; Update feeds burst commands into the TX
// FIFO and watches it drain.
//
// Position tracking is optimistic: a burst is counted as soon as its
// command word is queued, so the reported position may run ahead of
// the motor by a few bursts until the FIFO drains.
type PulseTrain struct {
	sm     rp2pio.StateMachine
	offset uint8

	position  int32
	forward   bool
	remaining uint32
}

var _ core.MotionControl = (*PulseTrain)(nil)

// NewPulseTrain loads the step train program onto the state machine's
// PIO block and maps stepPin and dirPin to it.
func NewPulseTrain(sm rp2pio.StateMachine, stepPin, dirPin machine.Pin) (*PulseTrain, error) {
	sm.TryClaim()
	p := sm.PIO()

	offset, err := p.AddProgram(trainInstructions, trainOrigin)
	if err != nil {
		return nil, err
	}

	stepPin.Configure(machine.PinConfig{Mode: p.PinMode()})
	dirPin.Configure(machine.PinConfig{Mode: p.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(stepPin, 1)
	cfg.SetOutPins(dirPin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(trainInstructions))-1, offset)

	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(stepPin, 1, true)
	sm.SetPindirsConsecutive(dirPin, 1, true)
	sm.SetPinsConsecutive(stepPin, 1, false)
	sm.SetPinsConsecutive(dirPin, 1, false)
	sm.SetEnabled(true)

	return &PulseTrain{sm: sm, offset: offset}, nil
}

// Position returns the step position as counted from queued bursts.
func (t *PulseTrain) Position() int32 { return t.position }

// StartMove sets the state machine clock so that one step takes
// cyclesPerStep cycles at the requested velocity, then records the
// burst to queue.
func (t *PulseTrain) StartMove(maxVelocity core.Velocity, targetStep int32) error {
	if maxVelocity <= 0 {
		return errVelocityRange
	}

	cyclePeriodNs := uint64(1_000_000_000) / (uint64(maxVelocity) * cyclesPerStep)
	if cyclePeriodNs == 0 || cyclePeriodNs > 0xFFFF_FFFF {
		return errVelocityRange
	}
	whole, frac, err := rp2pio.ClkDivFromPeriod(uint32(cyclePeriodNs), uint32(machine.CPUFrequency()))
	if err != nil {
		return errVelocityRange
	}
	t.sm.SetClkDiv(whole, frac)

	t.forward = targetStep >= t.position
	if t.forward {
		t.remaining = uint32(targetStep - t.position)
	} else {
		t.remaining = uint32(t.position - targetStep)
	}
	return nil
}

// Update queues at most one burst per call and reports whether steps
// are still pending or draining.
func (t *PulseTrain) Update() (bool, error) {
	if t.remaining > 0 && !t.sm.IsTxFIFOFull() {
		burst := t.remaining
		if burst > maxBurst {
			burst = maxBurst
		}
		t.sm.TxPut(t.command(burst))
		t.remaining -= burst
		if t.forward {
			t.position += int32(burst)
		} else {
			t.position -= int32(burst)
		}
	}

	if t.remaining > 0 || t.sm.TxFIFOLevel() > 0 {
		return true, nil
	}
	return false, nil
}

// Stop halts the state machine, clears pending bursts and restarts
// the program. Steps already in flight are lost from the position
// count.
func (t *PulseTrain) Stop() {
	t.sm.SetEnabled(false)
	t.sm.ClearFIFOs()
	t.sm.Restart()
	t.sm.ClkDivRestart()
	t.sm.Exec(rp2pio.EncodeJmp(t.offset, rp2pio.JmpAlways))
	t.sm.SetEnabled(true)
	t.remaining = 0
}

func (t *PulseTrain) command(burst uint32) uint32 {
	cmd := burst - 1
	if t.forward {
		cmd |= 1 << 16
	}
	cmd |= uint32(cyclesPerStep-overheadCycles) << 17
	return cmd
}
