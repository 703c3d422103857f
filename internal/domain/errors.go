package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSubmission indicates a submission payload violates a format constraint.
	ErrInvalidSubmission = errors.New("invalid application submission")

	// ErrMissingField indicates a required submission field is absent.
	ErrMissingField = errors.New("missing required field")
)

// MissingFieldError reports the first required field found empty on a
// submission. It matches ErrMissingField with errors.Is.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }
