package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageWrite matches every *StorageWriteError.
	ErrStorageWrite = errors.New("ledger storage failure")

	// ErrAlreadyRecorded is returned by appends for a submission key that is
	// already in the ledger.
	ErrAlreadyRecorded = errors.New("submission already recorded")
)

// StorageWriteError reports that the backing store was unreachable or held
// unreadable data. A failed append or mark leaves no partial record behind.
type StorageWriteError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStorageWrite.
func (e *StorageWriteError) Is(target error) bool { return target == ErrStorageWrite }

func storageErr(backend, op string, err error) error {
	return &StorageWriteError{Backend: backend, Op: op, Err: err}
}
