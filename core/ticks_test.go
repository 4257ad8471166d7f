package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDurationToTicks(t *testing.T) {
	cases := []struct {
		name string
		d    time.Duration
		hz   uint32
		want Ticks
	}{
		{"2us at 1MHz", 2 * time.Microsecond, 1_000_000, 2},
		{"1ms at 12MHz", time.Millisecond, 12_000_000, 12_000},
		{"rounds up", time.Microsecond, 1_500_000, 2},
		{"sub-tick rounds to one", time.Nanosecond, 1000, 1},
		{"zero", 0, 1_000_000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DurationToTicks(tc.d, tc.hz)
			if err != nil {
				t.Fatalf("DurationToTicks(%v, %d) failed: %v", tc.d, tc.hz, err)
			}
			if got != tc.want {
				t.Errorf("DurationToTicks(%v, %d) = %d, want %d", tc.d, tc.hz, got, tc.want)
			}
		})
	}
}

func TestDurationToTicksErrors(t *testing.T) {
	if _, err := DurationToTicks(-time.Second, 1000); !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("negative duration: got %v", err)
	}
	if _, err := DurationToTicks(time.Second, 0); !errors.Is(err, ErrZeroFrequency) {
		t.Errorf("zero frequency: got %v", err)
	}
	// 5000s at 1MHz needs more ticks than fit in 32 bits.
	if _, err := DurationToTicks(5000*time.Second, 1_000_000); !errors.Is(err, ErrTicksOverflow) {
		t.Errorf("tick overflow: got %v", err)
	}
	if _, err := DurationToTicks(math.MaxInt64, math.MaxUint32); !errors.Is(err, ErrTicksOverflow) {
		t.Errorf("intermediate overflow: got %v", err)
	}
}

func TestErrorKindStrings(t *testing.T) {
	kinds := []ErrorKind{
		KindSignalUnavailable, KindPin, KindTimerStart,
		KindTimerWait, KindTimeConversion, KindDriver,
	}
	seen := make(map[string]bool)
	for _, k := range kinds {
		s := k.String()
		if s == "" || s == "unknown" {
			t.Errorf("kind %d has no name", k)
		}
		if seen[s] {
			t.Errorf("duplicate kind name %q", s)
		}
		seen[s] = true
	}
}
