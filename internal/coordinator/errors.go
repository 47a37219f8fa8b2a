package coordinator

import "errors"

// Error kinds surfaced by coordinator operations. Callers match them with
// errors.Is; the API layer maps them onto HTTP status codes.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvariantViolation = errors.New("invariant violation")
)
