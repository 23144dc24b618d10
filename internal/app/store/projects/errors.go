// internal/app/store/projects/errors.go
package projectstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no project exists for the given id.
	ErrNotFound = errors.New("project not found")

	// ErrNotOwner is returned when a mutating operation is attempted by a
	// principal other than the project's owner, including an absent one.
	ErrNotOwner = errors.New("project can only be modified by its owner")

	// ErrNotExpired is returned when reactivation is requested for a
	// project that is still inside its visibility window.
	ErrNotExpired = errors.New("project is not expired")
)

// StorageError wraps a MongoDB failure with the store operation that hit it.
// Callers surface these with a generic retry prompt; the underlying driver
// error stays out of user-facing text.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("projects: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
