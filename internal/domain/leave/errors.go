package leave

import "errors"

var (
	ErrNotFound          = errors.New("leave request not found")
	ErrOverlap           = errors.New("leave request overlaps an existing request")
	ErrInvalidTransition = errors.New("leave request is no longer pending")
	ErrForbidden         = errors.New("not allowed to act on this leave request")
	ErrValidation        = errors.New("invalid leave request")
)
