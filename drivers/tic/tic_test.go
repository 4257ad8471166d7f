package tic

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/francis-clairicia/stepper/core"
)

// fakeBus emulates the Tic's I²C interface: commands mutate a tiny
// controller model, variable reads answer from it.
type fakeBus struct {
	addr      uint16
	position  int32
	target    int32
	velocity  int32
	speedMax  uint32
	energized bool
	timeouts  int
	cmds      []byte
	err       error
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	b.addr = addr
	if len(w) == 0 {
		return nil
	}
	b.cmds = append(b.cmds, w[0])
	switch w[0] {
	case cmdEnergize:
		b.energized = true
	case cmdDeenergize:
		b.energized = false
	case cmdResetCommandTimeout:
		b.timeouts++
	case cmdSetSpeedMax:
		b.speedMax = binary.LittleEndian.Uint32(w[1:5])
	case cmdSetTargetPosition:
		b.target = int32(binary.LittleEndian.Uint32(w[1:5]))
	case cmdGetVariable:
		var v uint32
		switch w[1] {
		case varCurrentPosition:
			v = uint32(b.position)
		case varTargetPosition:
			v = uint32(b.target)
		case varCurrentVelocity:
			v = uint32(b.velocity)
		}
		binary.LittleEndian.PutUint32(r, v)
	}
	return nil
}

func TestStartMoveCommands(t *testing.T) {
	bus := &fakeBus{}
	dev := New(bus, 0)

	if err := dev.StartMove(500, -1200); err != nil {
		t.Fatalf("start move failed: %v", err)
	}
	if bus.addr != I2CAddr {
		t.Errorf("commands sent to %#x, want default address %#x", bus.addr, I2CAddr)
	}
	if bus.speedMax != 500*speedUnit {
		t.Errorf("speed max = %d, want %d", bus.speedMax, 500*speedUnit)
	}
	if bus.target != -1200 {
		t.Errorf("target position = %d, want -1200", bus.target)
	}
}

func TestStartMoveRejectsBadVelocity(t *testing.T) {
	dev := New(&fakeBus{}, 0)
	if err := dev.StartMove(0, 100); err == nil {
		t.Error("zero velocity accepted")
	}
	if err := dev.StartMove(maxVelocity+1, 100); err == nil {
		t.Error("velocity beyond controller maximum accepted")
	}
}

func TestUpdateReportsMotion(t *testing.T) {
	bus := &fakeBus{position: 10, target: 50, velocity: 2_000_000}
	dev := New(bus, 0)

	still, err := dev.Update()
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !still {
		t.Error("update reported idle while off target")
	}
	if bus.timeouts != 1 {
		t.Errorf("command timeout reset %d times, want 1", bus.timeouts)
	}

	bus.position = 50
	bus.velocity = 0
	still, err = dev.Update()
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if still {
		t.Error("update reported motion at target with zero velocity")
	}
}

func TestUpdateStillMovingWhileDecelerating(t *testing.T) {
	// On target but still moving: the Tic can overshoot and come back.
	bus := &fakeBus{position: 50, target: 50, velocity: -500_000}
	dev := New(bus, 0)
	still, err := dev.Update()
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !still {
		t.Error("update reported idle with non-zero velocity")
	}
}

func TestMoveToOverTic(t *testing.T) {
	bus := &fakeBus{position: 0, velocity: 1}
	dev := New(bus, 0)
	if err := dev.Energize(); err != nil {
		t.Fatalf("energize failed: %v", err)
	}

	op := core.NewMoveTo(dev, 800, 3)
	// Initial poll issues StartMove, then each poll asks the controller.
	for i := 0; i < 3; i++ {
		done, err := op.Poll()
		if err != nil {
			t.Fatalf("poll failed: %v", err)
		}
		if done {
			t.Fatalf("done after %d polls while still moving", i+1)
		}
		// Controller steps once per poll.
		if bus.position < bus.target {
			bus.position++
		}
		if bus.position == bus.target {
			bus.velocity = 0
		}
	}
	if done, err := op.Poll(); !done || err != nil {
		t.Fatalf("final poll = (%v, %v), want (true, nil)", done, err)
	}
}

func TestBusErrorSurfacesAsDriverError(t *testing.T) {
	busFault := errors.New("nack")
	dev := New(&fakeBus{err: busFault}, 0)

	op := core.NewMoveTo(dev, 100, 10)
	_, err := op.Poll()
	if !core.IsKind(err, core.KindDriver) {
		t.Fatalf("error = %v, want driver kind", err)
	}
	if !errors.Is(err, busFault) {
		t.Errorf("error does not wrap the bus fault: %v", err)
	}
}
