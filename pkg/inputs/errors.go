package inputs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedInput matches every *UnresolvedInputError via errors.Is
	ErrUnresolvedInput = errors.New("unresolved input")

	// ErrInvalidLocator indicates a locator string could not be parsed
	ErrInvalidLocator = errors.New("invalid locator")

	// ErrOffline indicates an input needed the network while offline mode was on
	ErrOffline = errors.New("input is neither pinned nor locked, and offline mode is enabled")

	// ErrRevisionNotFound indicates the remote has no ref with the requested name
	ErrRevisionNotFound = errors.New("revision not found")
)

// UnresolvedInputError reports an input whose locator could not be turned into a revision.
// It aborts evaluation for every platform.
type UnresolvedInputError struct {
	Input   string
	Locator string
	Err     error
}

func (e *UnresolvedInputError) Error() string {
	return fmt.Sprintf("unresolved input %q (%s): %v", e.Input, e.Locator, e.Err)
}

func (e *UnresolvedInputError) Unwrap() error {
	return e.Err
}

func (e *UnresolvedInputError) Is(target error) bool {
	return target == ErrUnresolvedInput
}
