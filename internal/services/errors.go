package services

import "errors"

// Sentinel errors returned by services. Handlers map these to HTTP status
// codes; anything not in this set is an upstream failure from the store,
// object store or identity provider and is never retried.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("operation not permitted")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidState    = errors.New("operation not valid in current state")
)
