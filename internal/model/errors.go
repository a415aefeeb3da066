package model

import "errors"

// Sentinel errors for the core operations. The HTTP layer maps these to
// status codes; everything else wraps them with context via fmt.Errorf and %w.
var (
	// ErrNotFound covers both unknown ids and missions the caller is not
	// allowed to see - a non-member probing a mission gets the same answer
	// as a probe for a mission that does not exist.
	ErrNotFound = errors.New("not found")

	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks state conflicts: an asset already attached to a
	// mission, a user or organization already in a mission, a command that
	// was already responded to.
	ErrConflict = errors.New("conflict")

	// ErrValidation marks input rejected before any write.
	ErrValidation = errors.New("invalid input")
)
