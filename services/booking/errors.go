package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable wraps a remote dependency that is not
	// configured or not reachable. Fatal on initial load, silent on
	// background refresh.
	ErrServiceUnavailable = errors.New("remote service unavailable")

	// ErrOperationInProgress guards the move/override flow: only one
	// pending conflict decision may exist at a time.
	ErrOperationInProgress = errors.New("another move operation is in progress")

	// ErrDecisionResolved is returned when confirming or cancelling a
	// move decision that already ran to completion or was cancelled.
	ErrDecisionResolved = errors.New("move decision already resolved")

	ErrBookingNotFound = errors.New("booking not found")

	// ErrNoMatchingSlot means a tee time falls outside operating hours
	// or off an interval boundary.
	ErrNoMatchingSlot = errors.New("no matching time slot")

	ErrDayNotLoaded = errors.New("no day loaded")
)

// ValidationError rejects a malformed booking before any local mutation
// is attempted; no rollback is ever needed for one.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// CapacityConflictError is a decision point, not a failure: the target
// slot is full and the caller must explicitly override to proceed.
type CapacityConflictError struct {
	CurrentCount int
	Capacity     int
}

func (e *CapacityConflictError) Error() string {
	return fmt.Sprintf("slot at capacity: %d/%d", e.CurrentCount, e.Capacity)
}

// RemoteRejectedError means the server declined a mutation after it was
// applied locally; the local store has already been rolled back.
type RemoteRejectedError struct {
	Op  string
	Err error
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("remote rejected %s: %v", e.Op, e.Err)
}

func (e *RemoteRejectedError) Unwrap() error {
	return e.Err
}
