// Package errs contains sentinel errors shared by services and handlers.
// Services wrap them with context; the HTTP layer maps them to status codes.
package errs

import "errors"

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates bad credentials or an invalid/expired token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound indicates the entity does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrUpstream indicates the translation service failed, timed out or returned garbage.
	ErrUpstream = errors.New("upstream failure")

	// ErrRateLimited indicates the caller exceeded the request budget.
	ErrRateLimited = errors.New("rate limited")
)
