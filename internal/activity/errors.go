package activity

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

// Application error types reported to workflows. Workflows and retry
// policies match on these strings.
const (
	ErrTypeMissingField      = "MissingFieldError"
	ErrTypeInvalidSubmission = "InvalidSubmissionError"
	ErrTypeScorer            = "ScorerError"
	ErrTypeStorageWrite      = "StorageWriteError"
)

// Error describes an activity failure before it is converted into a
// Temporal application error.
type Error struct {
	// Type is one of the ErrType constants.
	Type string

	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	retryInfo := "non-retryable"
	if e.Retryable {
		retryInfo = "retryable"
	}
	if e.Cause != nil {
		return fmt.Sprintf("activity error [%s, %s]: %s: %v", e.Type, retryInfo, e.Message, e.Cause)
	}
	return fmt.Sprintf("activity error [%s, %s]: %s", e.Type, retryInfo, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Application converts e into the error returned from the activity.
func (e *Error) Application() error {
	if e.Retryable {
		return retryable(e.Type, e.Cause, e.Message)
	}
	return nonRetryable(e.Type, e.Cause, e.Message)
}

func missingFieldError(err *domain.MissingFieldError) *Error {
	return &Error{
		Type:    ErrTypeMissingField,
		Message: fmt.Sprintf("submission is missing %s", err.Field),
		Cause:   err,
	}
}

func invalidSubmissionError(err error) *Error {
	return &Error{Type: ErrTypeInvalidSubmission, Message: "submission is invalid", Cause: err}
}

func scorerError(err error) *Error {
	return &Error{Type: ErrTypeScorer, Message: "scorer failed", Cause: err, Retryable: true}
}

func storageWriteError(op string, err error) *Error {
	return &Error{Type: ErrTypeStorageWrite, Message: op + " failed", Cause: err, Retryable: true}
}

// classifyValidation maps a submission validation error to its activity
// error.
func classifyValidation(err error) *Error {
	var mfe *domain.MissingFieldError
	if errors.As(err, &mfe) {
		return missingFieldError(mfe)
	}
	return invalidSubmissionError(err)
}

// nonRetryable wraps an error as a Temporal non-retryable application error.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

// retryable wraps an error as a retryable Temporal application error.
func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationErrorWithCause(msg, tag, cause)
}
