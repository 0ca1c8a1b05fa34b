package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a referenced identity or room that does not exist.
	ErrNotFound = errors.New("services: not found")
	// ErrInvalidState reports an operation not valid for the current room
	// status. Close is idempotent, so this is reserved for stricter callers.
	ErrInvalidState = errors.New("services: invalid state")
)

// ValidationError reports room fields that violate the per-type
// requirements, e.g. a support room missing routing fields.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validation: %s", e.Reason) }
