package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by direct reads and claims of an account that does not exist.
var ErrNotFound = errors.New("account not found")

// StorageError means the backing store could not be read or written.
// The operation that failed made no partial change.
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

// NewStorageError wraps err, leaving nil and already wrapped errors untouched.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
