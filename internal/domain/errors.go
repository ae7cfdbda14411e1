package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidLogin covers both an unknown identifier and a wrong password.
	// Callers must not be able to tell the two apart.
	ErrInvalidLogin  = errors.New("invalid username or password")
	ErrAccountLocked = errors.New("account locked")
	ErrInvalidOTP    = errors.New("invalid otp")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// OTP failures are reported distinctly to the caller; both unwrap to ErrInvalidOTP.
var (
	ErrOTPExpired  error = &otpError{msg: "otp has expired"}
	ErrOTPMismatch error = &otpError{msg: "otp is incorrect or was never issued"}
)

type otpError struct{ msg string }

func (e *otpError) Error() string { return e.msg }
func (e *otpError) Unwrap() error { return ErrInvalidOTP }

// AccountLockedError is returned while an identity is inside its lock period.
type AccountLockedError struct {
	Until     time.Time
	Remaining time.Duration
}

// RemainingMinutes truncates toward zero, so 24m59s reports 24.
func (e *AccountLockedError) RemainingMinutes() int64 {
	return int64(e.Remaining / time.Minute)
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.RemainingMinutes())
}

func (e *AccountLockedError) Unwrap() error { return ErrAccountLocked }
