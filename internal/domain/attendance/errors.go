package attendance

import "errors"

var (
	ErrNotFound         = errors.New("attendance record not found")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrNoOpenCheckIn    = errors.New("no open check-in for today")
	ErrFutureDate       = errors.New("attendance cannot be marked for a future date")
	ErrValidation       = errors.New("invalid attendance data")
)
