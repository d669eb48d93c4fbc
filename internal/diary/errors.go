// ABOUTME: Error taxonomy of the diary engine.
// ABOUTME: Sentinels for not-found, bad index and stale deletes; typed validation and storage errors.
package diary

import (
	"errors"
	"fmt"

	"github.com/harperreed/fitness/internal/models"
	"github.com/harperreed/fitness/internal/storage"
)

var (
	// ErrNotFound means no diary exists for the user and date. It is an empty state, not a failure.
	ErrNotFound = errors.New("no diary for that date")

	// ErrInvalidIndex means a positional delete pointed outside the list.
	ErrInvalidIndex = errors.New("entry index out of range")

	// ErrInconsistentState means the entry at the index is not the one the caller expected.
	ErrInconsistentState = errors.New("entry at index does not match the expected entry")

	// ErrNoGoals means the tracker has no GoalProvider.
	ErrNoGoals = errors.New("no nutrition goals configured (set a profile)")
)

// ValidationError reports malformed input rejected before any store call.
type ValidationError = models.ValidationError

// StorageError wraps a failed store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageErr translates store errors: absent documents become ErrNotFound,
// everything else a StorageError.
func storageErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
