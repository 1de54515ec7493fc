package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to responses without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Onboarding flow errors. Each wraps one of the categories above.
var (
	ErrDuplicateEmail      = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrUnknownEmail        = fmt.Errorf("no account for email: %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrInvalidCode         = fmt.Errorf("invalid code: %w", ErrUnauthorized)
	ErrNotVerified         = fmt.Errorf("user not verified: %w", ErrForbidden)
	ErrAlreadyOnboarded    = fmt.Errorf("questionnaire already submitted: %w", ErrConflict)
	ErrUnauthenticated     = fmt.Errorf("unauthenticated: %w", ErrUnauthorized)
	ErrConstraintViolation = fmt.Errorf("store constraint violation: %w", ErrConflict)
	ErrDeliveryFailure     = errors.New("code delivery failed")
)
