package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrMFARequired        = errors.New("mfa code required")
	ErrMFAInvalid         = errors.New("invalid mfa code")
	ErrSessionExpired     = errors.New("session expired or revoked")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
	ErrWeakPassword       = errors.New("password too weak")
)
