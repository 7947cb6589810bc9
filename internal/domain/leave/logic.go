package leave

import (
	"fmt"
	"math"
	"time"
)

const (
	MinDays = 0.5
	MaxDays = 90
)

// ComputeDays derives the day count for a request. Ranges are inclusive of
// both endpoints; a half-day request counts 0.5 whatever its date span.
func ComputeDays(start, end time.Time, halfDay bool) (float64, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date precedes start date", ErrValidation)
	}
	if halfDay {
		return 0.5, nil
	}
	days := math.Floor(end.Sub(start).Hours()/24) + 1
	if days > MaxDays {
		return 0, fmt.Errorf("%w: leave cannot exceed %d days", ErrValidation, MaxDays)
	}
	return days, nil
}

// Overlaps reports whether two inclusive date ranges intersect. Sharing a
// single boundary date counts as overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// Transition validates a pending-state move. Only pending requests move, and
// only to approved, rejected or cancelled.
func Transition(from, to string) error {
	if from != StatusPending {
		return ErrInvalidTransition
	}
	switch to {
	case StatusApproved, StatusRejected, StatusCancelled:
		return nil
	}
	return fmt.Errorf("%w: unknown status %q", ErrValidation, to)
}
