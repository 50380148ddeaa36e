// Package apperr defines the sentinel errors shared across service layers.
package apperr

import "errors"

var (
	// ErrNotFound covers rows that are absent or owned by a different user;
	// handlers never distinguish the two cases.
	ErrNotFound = errors.New("not found")
	// ErrFutureDate rejects check-ins dated after today in the owner's timezone.
	ErrFutureDate = errors.New("future date")
	// ErrConflict is a lock-contention failure that callers retry a bounded
	// number of times before surfacing.
	ErrConflict = errors.New("conflict")
	// ErrAlreadyExists covers unique-constraint violations (duplicate email,
	// duplicate board name for the same user).
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized covers missing, malformed, revoked or expired credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden covers credentials that lack a required scope.
	ErrForbidden = errors.New("forbidden")
)
