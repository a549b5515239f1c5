// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across storage/repo/service layers.
var (
	// ErrNotFound indicates the requested entity (note, storage key) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail indicates an account with the same email is already registered.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrInvalidCredentials indicates that no account matches the email/secret pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrValidation indicates a missing required field (e.g., empty title).
	ErrValidation = errors.New("validation")

	// ErrUnauthenticated indicates the operation requires an active session for the user.
	ErrUnauthenticated = errors.New("unauthenticated")
)
