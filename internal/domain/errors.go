package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when request input is missing or malformed.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when the access token is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when an authenticated caller does not own the quiz.
	ErrForbidden = errors.New("not authorized")
	// ErrNotFound is the parent of every lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrQuizNotFound indicates no quiz matches the id or join code.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrUserNotFound indicates no user matches the id or email.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrUserExists is returned on registration with a taken email or username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrJoinCodeTaken is returned by stores when the join code unique constraint fires.
	ErrJoinCodeTaken = errors.New("join code already taken")
	// ErrBadUpstreamResponse indicates the text-generation reply could not be parsed.
	ErrBadUpstreamResponse = errors.New("bad upstream response")
	// ErrGeneratorDisabled is returned when no text-generation backend is configured.
	ErrGeneratorDisabled = errors.New("quiz generation is not configured")
)

// ValidationError describes which input field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UpstreamError keeps the raw model reply for diagnosis.
type UpstreamError struct {
	Raw string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return ErrBadUpstreamResponse.Error()
	}
	return ErrBadUpstreamResponse.Error() + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return ErrBadUpstreamResponse }
