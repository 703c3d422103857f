package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/jackwill99/temporal-hr/internal/activity"
)

// Registered workflow names.
const (
	ApplicationWorkflowName  = "ApplicationWorkflow"
	NotifyFailedWorkflowName = "NotifyFailedWorkflow"
)

// Per-activity completion deadlines, retries included.
const (
	screeningTimeout = 5 * time.Minute
	notifyTimeout    = 2 * time.Minute
	fetchTimeout     = 2 * time.Minute
	markTimeout      = time.Minute
)

// maxSweepConcurrency caps SweepInput.MaxConcurrent.
const maxSweepConcurrency = 32

// Rows notified per sweep run. Bounding the batch bounds a run's history.
const (
	DefaultSweepBatch = 200
	MaxSweepBatch     = 1000
)

// retryPolicy is shared by every activity call.
func retryPolicy() *temporal.RetryPolicy {
	return &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    5,
		NonRetryableErrorTypes: []string{
			activity.ErrTypeMissingField,
			activity.ErrTypeInvalidSubmission,
		},
	}
}

func withDeadline(ctx workflow.Context, timeout time.Duration) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		ScheduleToCloseTimeout: timeout,
		RetryPolicy:            retryPolicy(),
	})
}
