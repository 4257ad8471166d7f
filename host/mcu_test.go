package host

import (
	"bytes"
	"strings"
	"testing"

	"github.com/francis-clairicia/stepper/core"
)

// scriptPort is an in-memory serial.Port. Writes are recorded; reads are
// served from a pre-scripted reply stream.
type scriptPort struct {
	sent    bytes.Buffer
	replies bytes.Buffer
	closed  bool
}

func (p *scriptPort) script(lines ...string) {
	for _, l := range lines {
		p.replies.WriteString(l + "\n")
	}
}

func (p *scriptPort) Read(b []byte) (int, error)  { return p.replies.Read(b) }
func (p *scriptPort) Write(b []byte) (int, error) { return p.sent.Write(b) }
func (p *scriptPort) Flush() error                { return nil }
func (p *scriptPort) Close() error                { p.closed = true; return nil }

func (p *scriptPort) sentLines() []string {
	s := strings.TrimSuffix(p.sent.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestStartMoveSendsMoveCommand(t *testing.T) {
	port := &scriptPort{}
	port.script("ok")
	m := NewMCU(port)

	if err := m.StartMove(800, -150); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	got := port.sentLines()
	if len(got) != 1 || got[0] != "move 800 -150" {
		t.Errorf("sent %q, want [move 800 -150]", got)
	}
}

func TestStartMoveRejectedByFirmware(t *testing.T) {
	port := &scriptPort{}
	port.script("error axis not homed")
	m := NewMCU(port)

	err := m.StartMove(800, 10)
	if err == nil || !strings.Contains(err.Error(), "axis not homed") {
		t.Fatalf("error = %v, want firmware message", err)
	}
}

func TestSetStepModeSendsModeCommand(t *testing.T) {
	port := &scriptPort{}
	port.script("ok")
	m := NewMCU(port)

	if err := m.SetStepMode(core.StepModeSixteenth); err != nil {
		t.Fatalf("mode switch failed: %v", err)
	}
	got := port.sentLines()
	if len(got) != 1 || got[0] != "mode 16" {
		t.Errorf("sent %q, want [mode 16]", got)
	}
}

func TestUpdateParsesStatus(t *testing.T) {
	port := &scriptPort{}
	port.script("moving 42", "moving 97", "idle 100")
	m := NewMCU(port)

	for i, wantPos := range []int32{42, 97} {
		still, err := m.Update()
		if err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
		if !still {
			t.Fatalf("update %d reported idle", i)
		}
		if m.Position() != wantPos {
			t.Errorf("position = %d, want %d", m.Position(), wantPos)
		}
	}

	still, err := m.Update()
	if err != nil || still {
		t.Fatalf("final update = (%v, %v), want (false, nil)", still, err)
	}
	if m.Position() != 100 {
		t.Errorf("position = %d, want 100", m.Position())
	}
}

func TestUpdateRejectsGarbageStatus(t *testing.T) {
	port := &scriptPort{}
	port.script("wat")
	m := NewMCU(port)

	if _, err := m.Update(); err == nil {
		t.Fatal("garbage status accepted")
	}
}

func TestMoveToOverMCU(t *testing.T) {
	port := &scriptPort{}
	port.script("ok", "moving 1", "moving 2", "idle 3")
	m := NewMCU(port)

	op := core.NewMoveTo(m, 800, 3)
	for i := 0; i < 3; i++ {
		done, err := op.Poll()
		if err != nil {
			t.Fatalf("poll %d failed: %v", i, err)
		}
		if done {
			t.Fatalf("done after %d polls", i+1)
		}
	}
	if done, err := op.Poll(); !done || err != nil {
		t.Fatalf("final poll = (%v, %v), want (true, nil)", done, err)
	}
	if m.Position() != 3 {
		t.Errorf("position = %d, want 3", m.Position())
	}
}
