package activity

import (
	"context"
	"errors"
	"time"

	"github.com/jackwill99/temporal-hr/internal/domain"
	"github.com/jackwill99/temporal-hr/internal/ledger"
	"github.com/jackwill99/temporal-hr/internal/scoring"
	baseactivity "github.com/jackwill99/temporal-hr/pkg/activity"
)

// EvaluateApplication scores a submission and appends exactly one ledger
// record for it: an AcceptedRecord when it qualifies, otherwise a
// FailedRecord with notified_at unset.
//
// The submission key (sub.ID, or the workflow ID when empty) makes the
// activity idempotent: when the ledger already holds an outcome for the key,
// the stored verdict is returned and neither the scorer nor the ledger is
// written again.
func (a *Activities) EvaluateApplication(
	ctx context.Context,
	sub domain.ApplicationSubmission,
) (*domain.ScreeningVerdict, error) {
	sub = sub.Normalized()
	if err := sub.Validate(); err != nil {
		return nil, a.fail(EvaluateApplicationName, classifyValidation(err))
	}

	wfCtx := a.GetWorkflowContext(ctx)
	if sub.ID == "" {
		sub.ID = wfCtx.WorkflowID
	}

	if verdict, err := a.recorded(ctx, sub.ID); err != nil || verdict != nil {
		return verdict, err
	}

	baseactivity.SafeLog(ctx, "Scoring application",
		"submission_key", sub.ID,
		"workflow_id", wfCtx.WorkflowID,
		"attempt", wfCtx.Attempt)

	start := time.Now()
	verdict, err := a.scorer.Score(ctx, scoring.RequestFrom(sub))
	if err != nil {
		return nil, a.fail(EvaluateApplicationName, scorerError(err))
	}
	a.metrics.ObserveScoring(time.Since(start), verdict.UsedExternalScorer)
	if verdict.FilePath == "" {
		verdict.FilePath = sub.FilePath
	}

	at := a.now()
	var failedID string
	if verdict.Qualifies {
		err = a.ledger.AppendAccepted(ctx, domain.NewAcceptedRecord(sub, verdict, at))
	} else {
		rec := domain.NewFailedRecord(sub, verdict, at)
		failedID = rec.ID
		err = a.ledger.AppendFailed(ctx, rec)
	}

	switch {
	case errors.Is(err, ledger.ErrAlreadyRecorded):
		// A concurrent attempt recorded this key between our lookup and append.
		return a.recordedAfterRace(ctx, sub.ID)
	case err != nil:
		return nil, a.fail(EvaluateApplicationName, storageWriteError("append ledger record", err))
	}

	outcome := domain.OutcomeFailed
	if verdict.Qualifies {
		outcome = domain.OutcomeAccepted
	}
	a.metrics.Screened(string(outcome), false)
	a.events.EmitApplicationRecorded(ctx, wfCtx, sub, verdict, outcome, failedID)

	baseactivity.SafeLog(ctx, "Application recorded",
		"submission_key", sub.ID,
		"outcome", outcome,
		"used_external_scorer", verdict.UsedExternalScorer)
	return &verdict, nil
}

// recorded returns the stored verdict for key, or nil when nothing is
// recorded yet.
func (a *Activities) recorded(ctx context.Context, key string) (*domain.ScreeningVerdict, error) {
	out, err := a.ledger.Lookup(ctx, key)
	if err != nil {
		return nil, a.fail(EvaluateApplicationName, storageWriteError("lookup submission", err))
	}
	if out == nil {
		return nil, nil
	}
	a.metrics.Screened(string(out.Kind), true)
	baseactivity.SafeLog(ctx, "Submission already recorded, returning stored verdict",
		"submission_key", key,
		"outcome", out.Kind)
	verdict := out.Analysis
	return &verdict, nil
}

func (a *Activities) recordedAfterRace(ctx context.Context, key string) (*domain.ScreeningVerdict, error) {
	verdict, err := a.recorded(ctx, key)
	if err != nil {
		return nil, err
	}
	if verdict == nil {
		return nil, a.fail(EvaluateApplicationName,
			storageWriteError("lookup submission", errors.New("append reported duplicate but no record found")))
	}
	return verdict, nil
}

// fail counts and logs an activity error and converts it for Temporal.
func (a *Activities) fail(activityName string, e *Error) error {
	a.metrics.ActivityError(activityName, e.Type)
	return e.Application()
}
