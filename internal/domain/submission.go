// Package domain defines the types shared by the screening pipeline: the
// submission handed to the pipeline, the scorer's verdict, the two ledger
// record kinds, and the request/response contracts of every activity and
// workflow. Types here carry no I/O; they are safe to use from workflow code.
package domain

import "strings"

// Submission sources recognised by intake.
const (
	SourceWeb          = "web"
	SourceGmailWebhook = "gmail-webhook"
	SourceOperator     = "operator"
)

// ApplicationSubmission is the payload a Primary Workflow run is started with.
// It is treated as immutable once handed to the pipeline.
type ApplicationSubmission struct {
	// ID is the logical submission key. Left empty by intake, the workflow
	// fills it with its own workflow ID so activity retries and replays agree
	// on the key.
	ID string `json:"id,omitempty"`

	Email       string `json:"email" validate:"required,email"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`

	// FilePath points at an uploaded resume. Optional.
	FilePath string `json:"file_path,omitempty"`

	Source string `json:"source"`
}

// Validate checks the submission before it enters the pipeline. A missing
// field is reported as *MissingFieldError.
func (s *ApplicationSubmission) Validate() error {
	if strings.TrimSpace(s.Email) == "" {
		return &MissingFieldError{Field: "email"}
	}
	return translateValidation(validate.Struct(s))
}

// Normalized returns a copy with surrounding whitespace trimmed and the
// source defaulted.
func (s ApplicationSubmission) Normalized() ApplicationSubmission {
	s.Email = strings.TrimSpace(s.Email)
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	s.FilePath = strings.TrimSpace(s.FilePath)
	if s.Source == "" {
		s.Source = SourceWeb
	}
	return s
}
