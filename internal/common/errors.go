// Package common defines shared constants and sentinel errors used across
// server and client layers of printfleet. Callers should use errors.Is to
// match these values; transports map them to status codes.
package common

import "errors"

var (
	// Input errors.
	ErrValidation = errors.New("validation error")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// Lifecycle errors (operation not permitted in the current state).
	ErrInvalidState = errors.New("invalid state")

	// Storage backend failures.
	ErrStorage = errors.New("storage error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
