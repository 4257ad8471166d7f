package core

import "time"

// mockPin records every level written to it.
type mockPin struct {
	level   bool
	writes  []bool
	highErr error
	lowErr  error
}

func (p *mockPin) SetHigh() error {
	if p.highErr != nil {
		return p.highErr
	}
	p.level = true
	p.writes = append(p.writes, true)
	return nil
}

func (p *mockPin) SetLow() error {
	if p.lowErr != nil {
		return p.lowErr
	}
	p.level = false
	p.writes = append(p.writes, false)
	return nil
}

type mockStepDriver struct {
	pin    mockPin
	pinErr error
	pulse  time.Duration
}

func (d *mockStepDriver) StepPin() (OutputPin, error) {
	if d.pinErr != nil {
		return nil, d.pinErr
	}
	return &d.pin, nil
}

func (d *mockStepDriver) PulseLength() time.Duration {
	if d.pulse == 0 {
		return 2 * time.Microsecond
	}
	return d.pulse
}

// mockTimer reports "still counting" for pending Wait calls, then done.
type mockTimer struct {
	hz       uint32
	pending  int
	starts   []Ticks
	waits    int
	startErr error
	waitErr  error
}

func (t *mockTimer) Frequency() uint32 {
	if t.hz == 0 {
		return 1_000_000
	}
	return t.hz
}

func (t *mockTimer) Start(d Ticks) error {
	if t.startErr != nil {
		return t.startErr
	}
	t.starts = append(t.starts, d)
	return nil
}

func (t *mockTimer) Wait() (bool, error) {
	t.waits++
	if t.waitErr != nil {
		return false, t.waitErr
	}
	if t.pending > 0 {
		t.pending--
		return false, nil
	}
	return true, nil
}

// mockModeDriver records the order of apply/enable calls.
type mockModeDriver struct {
	events    []string
	applied   []StepMode
	applyErr  error
	enableErr error
	setup     time.Duration
	hold      time.Duration
}

func (d *mockModeDriver) ApplyModeConfig(mode StepMode) error {
	if d.applyErr != nil {
		return d.applyErr
	}
	d.events = append(d.events, "apply")
	d.applied = append(d.applied, mode)
	return nil
}

func (d *mockModeDriver) EnableDriver() error {
	if d.enableErr != nil {
		return d.enableErr
	}
	d.events = append(d.events, "enable")
	return nil
}

func (d *mockModeDriver) SetupTime() time.Duration {
	if d.setup == 0 {
		return time.Millisecond
	}
	return d.setup
}

func (d *mockModeDriver) HoldTime() time.Duration {
	if d.hold == 0 {
		return time.Millisecond
	}
	return d.hold
}

type startedMove struct {
	maxVelocity Velocity
	targetStep  int32
}

// mockMotion finishes a move after remaining Update calls.
type mockMotion struct {
	starts    []startedMove
	updates   int
	remaining int
	startErr  error
	updateErr error
}

func (d *mockMotion) StartMove(maxVelocity Velocity, targetStep int32) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.starts = append(d.starts, startedMove{maxVelocity, targetStep})
	return nil
}

func (d *mockMotion) Update() (bool, error) {
	d.updates++
	if d.updateErr != nil {
		return false, d.updateErr
	}
	if d.remaining > 0 {
		d.remaining--
		return true, nil
	}
	return false, nil
}
