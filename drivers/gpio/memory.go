package gpio

import "fmt"

// PinWrite is one recorded write for test assertions.
type PinWrite struct {
	Pin   int
	Level Level
}

// Memory is an in-memory Driver for tests and development machines. It
// remembers pin modes and levels and records every write in order.
type Memory struct {
	modes  map[int]PinMode
	levels map[int]Level

	// Writes is the ordered record of all WritePin calls.
	Writes []PinWrite

	// FailWrite, when set, makes WritePin to that pin fail.
	FailWrite map[int]error
}

func NewMemory() *Memory {
	return &Memory{
		modes:  make(map[int]PinMode),
		levels: make(map[int]Level),
	}
}

func (m *Memory) SetupPin(pin int, mode PinMode) error {
	m.modes[pin] = mode
	return nil
}

func (m *Memory) WritePin(pin int, level Level) error {
	if err := m.FailWrite[pin]; err != nil {
		return err
	}
	if mode, ok := m.modes[pin]; ok && mode != Output {
		return fmt.Errorf("gpio: pin %d not configured as output", pin)
	}
	m.levels[pin] = level
	m.Writes = append(m.Writes, PinWrite{Pin: pin, Level: level})
	return nil
}

func (m *Memory) ReadPin(pin int) (Level, error) {
	return m.levels[pin], nil
}

func (m *Memory) Close() error { return nil }

// Level returns the current level of pin without going through ReadPin's
// error path.
func (m *Memory) Level(pin int) Level { return m.levels[pin] }

// WritesTo returns the ordered levels written to a single pin.
func (m *Memory) WritesTo(pin int) []Level {
	var out []Level
	for _, w := range m.Writes {
		if w.Pin == pin {
			out = append(out, w.Level)
		}
	}
	return out
}
