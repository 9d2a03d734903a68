package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// LockoutError is returned while a login key is throttled.
type LockoutError struct {
	RetryAfter time.Duration
}

func (e *LockoutError) Error() string {
	return "too many attempts, retry after " + e.RetryAfter.String()
}

func (e *LockoutError) Unwrap() error {
	return ErrTooManyAttempts
}
