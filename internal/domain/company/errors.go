package company

import "errors"

var (
	ErrNotFound    = errors.New("company not found")
	ErrNameTaken   = errors.New("company name already in use")
	ErrInvalidPlan = errors.New("invalid plan")

	ErrInvalidTimezone = errors.New("invalid timezone")
)
