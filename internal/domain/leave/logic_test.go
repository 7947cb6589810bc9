package leave

import (
	"errors"
	"testing"
	"time"
)

func d(day int) time.Time {
	return time.Date(2026, time.June, day, 0, 0, 0, 0, time.UTC)
}

func TestComputeDays(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
		halfDay    bool
		want       float64
	}{
		{"single day", d(1), d(1), false, 1},
		{"inclusive range", d(1), d(5), false, 5},
		{"half day", d(3), d(3), true, 0.5},
		{"half day spanning dates", d(1), d(2), true, 0.5},
		{"full quarter", d(1), time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC), false, 90},
	}
	for _, tc := range cases {
		got, err := ComputeDays(tc.start, tc.end, tc.halfDay)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: days = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestComputeDaysRejects(t *testing.T) {
	if _, err := ComputeDays(d(5), d(1), false); !errors.Is(err, ErrValidation) {
		t.Errorf("inverted range: err = %v, want ErrValidation", err)
	}
	if _, err := ComputeDays(d(1), d(1).AddDate(0, 0, 90), false); !errors.Is(err, ErrValidation) {
		t.Errorf("91 days: err = %v, want ErrValidation", err)
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"disjoint before", d(1), d(3), d(4), d(6), false},
		{"disjoint after", d(10), d(12), d(4), d(6), false},
		{"shared boundary", d(1), d(5), d(5), d(8), true},
		{"contained", d(3), d(4), d(1), d(10), true},
		{"identical", d(2), d(6), d(2), d(6), true},
		{"partial", d(4), d(8), d(6), d(12), true},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// Once a request leaves pending it is frozen: no terminal status may move to
// any other status, including back to pending.
func TestTransitionTerminality(t *testing.T) {
	for _, to := range []string{StatusApproved, StatusRejected, StatusCancelled} {
		if err := Transition(StatusPending, to); err != nil {
			t.Errorf("pending -> %s: unexpected error %v", to, err)
		}
	}
	terminal := []string{StatusApproved, StatusRejected, StatusCancelled}
	all := []string{StatusPending, StatusApproved, StatusRejected, StatusCancelled}
	for _, from := range terminal {
		for _, to := range all {
			if err := Transition(from, to); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: err = %v, want ErrInvalidTransition", from, to, err)
			}
		}
	}
	if err := Transition(StatusPending, "escalated"); !errors.Is(err, ErrValidation) {
		t.Errorf("pending -> escalated: err = %v, want ErrValidation", err)
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range Types {
		if !ValidType(typ) {
			t.Errorf("ValidType(%q) = false", typ)
		}
	}
	if ValidType("sabbatical") {
		t.Error("ValidType accepted unknown type")
	}
}
