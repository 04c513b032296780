package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/nurture/internal/validation"
)

var (
	// ErrAuthentication indicates a rejected login.
	ErrAuthentication = errors.New("authentication failed")

	// ErrResendCooldown indicates a code was requested again too soon.
	ErrResendCooldown = errors.New("code recently sent")

	// ErrInvalidToken indicates a session token that is malformed, expired
	// or signed with another key.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrInvalidInput indicates request fields failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

// AuthenticationError is returned by Login when the code does not match.
type AuthenticationError struct {
	Phone string
}

func (e *AuthenticationError) Error() string {
	return "invalid verification code"
}

// Is reports ErrAuthentication for errors.Is.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// CooldownError carries the remaining wait before another code may be sent.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("code recently sent, retry in %s", e.RetryAfter.Round(time.Second))
}

// Unwrap returns ErrResendCooldown for errors.Is compatibility.
func (e *CooldownError) Unwrap() error {
	return ErrResendCooldown
}

// InputError collects field validation failures.
type InputError struct {
	Errors []validation.ValidationError
}

func (e *InputError) Error() string {
	if len(e.Errors) == 0 {
		return ErrInvalidInput.Error()
	}
	return e.Errors[0].Error()
}

// Unwrap returns ErrInvalidInput for errors.Is compatibility.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func inputError(errs []validation.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return &InputError{Errors: errs}
}
