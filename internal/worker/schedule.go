package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/jackwill99/temporal-hr/internal/config"
	"github.com/jackwill99/temporal-hr/internal/domain"
	"github.com/jackwill99/temporal-hr/internal/workflow"
)

// Sweep schedule identity.
const (
	SweepScheduleID       = "notify-failed-schedule"
	SweepWorkflowID       = "notify-failed-workflow"
	SweepCron             = "*/1 * * * *"
	SweepExecutionTimeout = 5 * time.Minute
)

// ScheduleCreator is the part of client.ScheduleClient used here.
type ScheduleCreator interface {
	Create(ctx context.Context, options client.ScheduleOptions) (client.ScheduleHandle, error)
}

// SweepScheduleOptions builds the schedule that starts NotifyFailedWorkflow
// every minute.
func SweepScheduleOptions(cfg *config.Config) (client.ScheduleOptions, error) {
	overlap, err := overlapPolicy(cfg.Schedule.OverlapPolicy)
	if err != nil {
		return client.ScheduleOptions{}, err
	}
	return client.ScheduleOptions{
		ID: SweepScheduleID,
		Spec: client.ScheduleSpec{
			CronExpressions: []string{SweepCron},
		},
		Action: &client.ScheduleWorkflowAction{
			ID:                       SweepWorkflowID,
			Workflow:                 workflow.NotifyFailedWorkflowName,
			Args:                     []interface{}{domain.SweepInput{
				MaxConcurrent: cfg.Sweep.MaxConcurrent,
				MaxRows:       cfg.Sweep.MaxRows,
			}},
			TaskQueue:                cfg.Temporal.TaskQueue,
			WorkflowExecutionTimeout: SweepExecutionTimeout,
		},
		Overlap: overlap,
	}, nil
}

// EnsureSweepSchedule creates the sweep schedule. It reports created=false,
// without error, when the schedule already exists.
func EnsureSweepSchedule(ctx context.Context, sc ScheduleCreator, cfg *config.Config) (created bool, err error) {
	opts, err := SweepScheduleOptions(cfg)
	if err != nil {
		return false, err
	}
	if _, err := sc.Create(ctx, opts); err != nil {
		if errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
			return false, nil
		}
		return false, fmt.Errorf("create schedule %s: %w", SweepScheduleID, err)
	}
	return true, nil
}

func overlapPolicy(name string) (enumspb.ScheduleOverlapPolicy, error) {
	switch name {
	case config.OverlapSkip, "":
		return enumspb.SCHEDULE_OVERLAP_POLICY_SKIP, nil
	case config.OverlapBufferOne:
		return enumspb.SCHEDULE_OVERLAP_POLICY_BUFFER_ONE, nil
	case config.OverlapAllowAll:
		return enumspb.SCHEDULE_OVERLAP_POLICY_ALLOW_ALL, nil
	default:
		return enumspb.SCHEDULE_OVERLAP_POLICY_UNSPECIFIED,
			fmt.Errorf("%w: unknown overlap policy %q", config.ErrInvalid, name)
	}
}
