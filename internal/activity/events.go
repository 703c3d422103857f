package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jackwill99/temporal-hr/internal/domain"
	baseactivity "github.com/jackwill99/temporal-hr/pkg/activity"
	"github.com/jackwill99/temporal-hr/pkg/events"
)

const eventVersion = "1.0.0"

type applicationRecordedEvent struct {
	SubmissionKey      string   `json:"submission_key"`
	Outcome            string   `json:"outcome"`
	FailedID           string   `json:"failed_id,omitempty"`
	Email              string   `json:"email"`
	Source             string   `json:"source"`
	Reason             string   `json:"reason"`
	MissingKeywords    []string `json:"missing_keywords"`
	UsedExternalScorer bool     `json:"used_external_scorer"`
}

type failedNotifiedEvent struct {
	IDs     []string `json:"ids"`
	Updated int      `json:"updated"`
}

// EventEmitter builds and emits the pipeline's domain events.
type EventEmitter struct {
	base baseactivity.BaseActivities
	now  func() time.Time
}

// NewEventEmitter returns an emitter over base.
func NewEventEmitter(base baseactivity.BaseActivities, now func() time.Time) *EventEmitter {
	return &EventEmitter{base: base, now: now}
}

// EmitApplicationRecorded announces a new ledger record.
func (e *EventEmitter) EmitApplicationRecorded(
	ctx context.Context,
	wfCtx baseactivity.WorkflowContext,
	sub domain.ApplicationSubmission,
	verdict domain.ScreeningVerdict,
	outcome domain.OutcomeKind,
	failedID string,
) {
	e.emit(ctx, wfCtx, "screening.application_recorded", "screening-activity",
		"screening:"+sub.ID,
		applicationRecordedEvent{
			SubmissionKey:      sub.ID,
			Outcome:            string(outcome),
			FailedID:           failedID,
			Email:              sub.Email,
			Source:             sub.Source,
			Reason:             verdict.Reason,
			MissingKeywords:    verdict.MissingKeywords,
			UsedExternalScorer: verdict.UsedExternalScorer,
		},
		fmt.Sprintf("ApplicationRecorded[%s]", sub.ID))
}

// EmitFailedNotified announces a completed mark.
func (e *EventEmitter) EmitFailedNotified(
	ctx context.Context,
	wfCtx baseactivity.WorkflowContext,
	ids []string,
	updated int,
) {
	e.emit(ctx, wfCtx, "notification.failed_marked", "notification-activity",
		"marked:"+uuid.NewSHA1(uuid.NameSpaceOID, []byte(wfCtx.RunID+"|"+strings.Join(ids, ","))).String(),
		failedNotifiedEvent{IDs: ids, Updated: updated},
		fmt.Sprintf("FailedMarked[%d]", updated))
}

func (e *EventEmitter) emit(
	ctx context.Context,
	wfCtx baseactivity.WorkflowContext,
	eventType, source, idemKey string,
	body any,
	description string,
) {
	payload, err := json.Marshal(body)
	if err != nil {
		baseactivity.SafeLogError(ctx, "Failed to marshal event", "event_type", eventType, "error", err)
		return
	}
	e.base.EmitEventSafe(ctx, events.Envelope{
		ID:             uuid.New().String(),
		Type:           eventType,
		Source:         source,
		Version:        eventVersion,
		Timestamp:      e.now(),
		IdempotencyKey: idemKey,
		WorkflowID:     wfCtx.WorkflowID,
		RunID:          wfCtx.RunID,
		Payload:        payload,
	}, description)
}
