package db

import "errors"

// Domain failure taxonomy. Handlers map these to HTTP statuses; everything
// else that bubbles up from gorm is treated as a storage error.
var (
	ErrDuplicateIdentity   = errors.New("email or university id already registered")
	ErrInvalidCredential   = errors.New("invalid email or password")
	ErrOtpInvalidOrExpired = errors.New("otp invalid, used or expired")
	ErrUnauthorized        = errors.New("caller is not permitted to act on this entity")
	ErrNotFound            = errors.New("entity not found")
	ErrValidationFailed    = errors.New("invalid input")
)
