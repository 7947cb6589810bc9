package directory

import "errors"

var (
	ErrNotFound           = errors.New("employee not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrEmailTaken         = errors.New("employee email already in use")
	ErrDepartmentTaken    = errors.New("department name already in use")
	ErrDepartmentNotEmpty = errors.New("department still has employees")
	ErrValidation         = errors.New("invalid employee data")
)
