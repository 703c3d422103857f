// Package activity implements the screening pipeline's Temporal activities.
//
// Screening writes exactly one ledger record per submission key. The
// notification activities never fail on delivery problems; they report them
// in their result. Ledger reads and marks surface storage failures as
// retryable errors.
package activity

import (
	"time"

	"github.com/jackwill99/temporal-hr/internal/ledger"
	"github.com/jackwill99/temporal-hr/internal/mail"
	"github.com/jackwill99/temporal-hr/internal/metrics"
	"github.com/jackwill99/temporal-hr/internal/scoring"
	baseactivity "github.com/jackwill99/temporal-hr/pkg/activity"
	"github.com/jackwill99/temporal-hr/pkg/events"
)

// Registered activity names.
const (
	EvaluateApplicationName   = "evaluate_application"
	SendApplicantEmailName    = "send_applicant_email"
	SendFailedEmailName       = "send_failed_email"
	FetchUnnotifiedFailedName = "fetch_unnotified_failed"
	MarkFailedAsNotifiedName  = "mark_failed_as_notified"
)

// Deps are the collaborators of Activities. Ledger and Scorer are required;
// a nil Sender disables delivery.
type Deps struct {
	Ledger  ledger.Ledger
	Scorer  scoring.Scorer
	Sender  mail.Sender
	Events  events.EventSink
	Metrics *metrics.Metrics
	Clock   func() time.Time
}

// Activities holds the pipeline's activity implementations.
type Activities struct {
	baseactivity.BaseActivities
	ledger  ledger.Ledger
	scorer  scoring.Scorer
	sender  mail.Sender
	metrics *metrics.Metrics
	now     func() time.Time
	events  *EventEmitter
}

// NewActivities wires deps into an Activities value.
func NewActivities(deps Deps) *Activities {
	base := baseactivity.NewBaseActivities(deps.Events)
	sender := deps.Sender
	if sender == nil {
		sender = mail.DisabledSender{}
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Activities{
		BaseActivities: base,
		ledger:         deps.Ledger,
		scorer:         deps.Scorer,
		sender:         sender,
		metrics:        deps.Metrics,
		now:            now,
		events:         NewEventEmitter(base, now),
	}
}
