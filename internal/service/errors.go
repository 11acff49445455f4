package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the owner has no reminder with that id.
	ErrNotFound = errors.New("reminder not found")
	// ErrPastTime means a one-off reminder was requested for an
	// instant that has already passed.
	ErrPastTime = errors.New("reminder time is in the past")
)

// ValidationError reports malformed input. Handlers render it back to
// the user instead of retrying.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
