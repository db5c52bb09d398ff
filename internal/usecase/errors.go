package usecase

import "errors"

// Sentinels callers wrap with %w. The HTTP layer maps each to a status code;
// anything else is reported as an internal error.
var (
	// ErrInvalidInput covers rejected commands and unknown filters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned for unknown list resources.
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict reports an ambiguous reference or a unique-key clash.
	ErrConflict    = errors.New("conflict")
	ErrRateLimited = errors.New("too many requests")
	// ErrDependencyUnavailable wraps store timeouts during a save.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
