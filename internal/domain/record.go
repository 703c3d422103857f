package domain

import (
	"time"

	"github.com/google/uuid"
)

// failedRecordNamespace scopes the name-based UUIDs minted for failed records.
var failedRecordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("temporal-hr/failed-application"))

// AcceptedRecord is the ledger entry for a qualifying submission. It is
// append-only and never mutated.
type AcceptedRecord struct {
	SubmissionKey string           `json:"submission_key"`
	Email         string           `json:"email"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	FilePath      string           `json:"file_path"`
	EvaluatedAt   time.Time        `json:"evaluated_at"`
	Analysis      ScreeningVerdict `json:"analysis"`
}

// FailedRecord is the ledger entry for a non-qualifying submission.
// NotifiedAt is the only mutable field and only ever moves from nil to a
// timestamp.
type FailedRecord struct {
	ID            string           `json:"id"`
	SubmissionKey string           `json:"submission_key"`
	Email         string           `json:"email"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	FilePath      string           `json:"file_path"`
	EvaluatedAt   time.Time        `json:"evaluated_at"`
	Analysis      ScreeningVerdict `json:"analysis"`
	NotifiedAt    *time.Time       `json:"notified_at"`
}

// Notified reports whether a rejection email has been recorded for the row.
func (r *FailedRecord) Notified() bool { return r.NotifiedAt != nil }

// FailedRecordID derives the id of the failed record for a submission key.
// The id is stable, so re-running screening for the same submission cannot
// mint a second identity.
func FailedRecordID(submissionKey string) string {
	return uuid.NewSHA1(failedRecordNamespace, []byte(submissionKey)).String()
}

// NewAcceptedRecord builds the ledger entry for a qualifying submission.
func NewAcceptedRecord(sub ApplicationSubmission, verdict ScreeningVerdict, at time.Time) AcceptedRecord {
	return AcceptedRecord{
		SubmissionKey: sub.ID,
		Email:         sub.Email,
		Title:         sub.Title,
		Description:   sub.Description,
		FilePath:      sub.FilePath,
		EvaluatedAt:   at.UTC(),
		Analysis:      verdict,
	}
}

// NewFailedRecord builds the ledger entry for a rejected submission with
// NotifiedAt unset.
func NewFailedRecord(sub ApplicationSubmission, verdict ScreeningVerdict, at time.Time) FailedRecord {
	return FailedRecord{
		ID:            FailedRecordID(sub.ID),
		SubmissionKey: sub.ID,
		Email:         sub.Email,
		Title:         sub.Title,
		Description:   sub.Description,
		FilePath:      sub.FilePath,
		EvaluatedAt:   at.UTC(),
		Analysis:      verdict,
	}
}

// OutcomeKind names the ledger collection a submission landed in.
type OutcomeKind string

// Ledger collections.
const (
	OutcomeAccepted OutcomeKind = "accepted"
	OutcomeFailed   OutcomeKind = "failed"
)

// Outcome is what the ledger holds for one submission key.
type Outcome struct {
	Kind     OutcomeKind
	Analysis ScreeningVerdict
	// FailedID is set when Kind is OutcomeFailed.
	FailedID string
}
