package workflow

import (
	"errors"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/jackwill99/temporal-hr/internal/activity"
	"github.com/jackwill99/temporal-hr/internal/domain"
)

// ApplicationWorkflow screens one submission and notifies the applicant when
// they qualify. Rejected applicants are left to NotifyFailedWorkflow.
//
// A failed or undeliverable success notification does not fail the
// workflow; it is reported in the result's NotificationResult.
func ApplicationWorkflow(
	ctx workflow.Context,
	sub domain.ApplicationSubmission,
) (*domain.PipelineResult, error) {
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "application.v", workflow.DefaultVersion, currentVersion)

	logger := workflow.GetLogger(ctx)

	sub = sub.Normalized()
	if err := sub.Validate(); err != nil {
		var mfe *domain.MissingFieldError
		if errors.As(err, &mfe) {
			return nil, temporal.NewNonRetryableApplicationError(
				"submission is missing "+mfe.Field, activity.ErrTypeMissingField, err)
		}
		return nil, temporal.NewNonRetryableApplicationError(
			"submission is invalid", activity.ErrTypeInvalidSubmission, err)
	}
	if sub.ID == "" {
		sub.ID = workflow.GetInfo(ctx).WorkflowExecution.ID
	}

	state := newPipelineState()
	for !state.done() {
		switch state.step {
		case stepScreen:
			var verdict domain.ScreeningVerdict
			err := workflow.ExecuteActivity(withDeadline(ctx, screeningTimeout),
				activity.EvaluateApplicationName, sub).Get(ctx, &verdict)
			if err != nil {
				logger.Error("Screening failed", "submission_key", sub.ID, "error", err)
				return nil, err
			}
			logger.Info("Application screened",
				"submission_key", sub.ID,
				"qualifies", verdict.Qualifies)
			state.screened(verdict)

		case stepNotifySuccess:
			var res domain.NotificationResult
			err := workflow.ExecuteActivity(withDeadline(ctx, notifyTimeout),
				activity.SendApplicantEmailName,
				domain.NotifyInput{Email: sub.Email, Reason: state.result.Analysis.Reason}).Get(ctx, &res)
			if err != nil {
				logger.Warn("Success notification did not complete", "submission_key", sub.ID, "error", err)
				res = domain.NotificationResult{Sent: false, Error: err.Error()}
			}
			state.notified(res)
		}
	}

	return &state.result, nil
}
