package domain

// Activity and workflow contracts. Every value crossing the workflow/activity
// boundary is one of these types so payloads stay stable across worker
// deployments.

// NotifyInput asks a notification activity to email one applicant.
type NotifyInput struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// NotificationResult reports a single delivery attempt. Sent=false does not
// prove the message was never delivered.
type NotificationResult struct {
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// FetchUnnotifiedInput is the request of fetch_unnotified_failed. A positive
// Limit returns at most that many rows, oldest first.
type FetchUnnotifiedInput struct {
	Limit int `json:"limit,omitempty"`
}

// FetchUnnotifiedOutput carries the unnotified failed rows in ledger order.
// Remaining counts unnotified rows left out by the limit.
type FetchUnnotifiedOutput struct {
	Rows      []FailedRecord `json:"rows"`
	Remaining int            `json:"remaining,omitempty"`
}

// MarkNotifiedInput names the failed records whose rejection email was sent.
type MarkNotifiedInput struct {
	IDs []string `json:"ids"`
}

// MarkNotifiedOutput reports how many records moved from unnotified to notified.
type MarkNotifiedOutput struct {
	Updated int `json:"updated"`
}

// PipelineResult is the terminal state of ApplicationWorkflow.
// NotificationResult is nil when the applicant did not qualify.
type PipelineResult struct {
	Analysis           ScreeningVerdict    `json:"analysis"`
	NotificationResult *NotificationResult `json:"notification_result"`
}

// SweepInput configures one NotifyFailedWorkflow run. The zero value is what
// the schedule starts runs with.
type SweepInput struct {
	// MaxConcurrent bounds in-flight notification activities. Values below 1
	// mean sequential delivery.
	MaxConcurrent int `json:"max_concurrent,omitempty"`

	// MaxRows bounds how many records one run notifies. Zero means the
	// default batch; the rest wait for the next run.
	MaxRows int `json:"max_rows,omitempty"`
}

// SweepOutcome is the per-row result of a sweep, in fetch order.
type SweepOutcome struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// SweepResult is the terminal state of NotifyFailedWorkflow.
// Remaining is the unnotified backlog this run left for later runs.
type SweepResult struct {
	Notified  []string       `json:"notified"`
	Attempts  int            `json:"attempts"`
	Results   []SweepOutcome `json:"results"`
	Remaining int            `json:"remaining,omitempty"`
}
