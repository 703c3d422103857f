package activity

import (
	"context"

	"github.com/jackwill99/temporal-hr/internal/domain"
	baseactivity "github.com/jackwill99/temporal-hr/pkg/activity"
)

// FetchUnnotifiedFailed returns failed records still awaiting a rejection
// email, in ledger order, truncated to in.Limit when positive.
func (a *Activities) FetchUnnotifiedFailed(
	ctx context.Context,
	in domain.FetchUnnotifiedInput,
) (*domain.FetchUnnotifiedOutput, error) {
	rows, err := a.ledger.FetchUnnotifiedFailed(ctx)
	if err != nil {
		return nil, a.fail(FetchUnnotifiedFailedName, storageWriteError("fetch unnotified failed records", err))
	}
	if rows == nil {
		rows = []domain.FailedRecord{}
	}
	remaining := 0
	if in.Limit > 0 && len(rows) > in.Limit {
		remaining = len(rows) - in.Limit
		rows = rows[:in.Limit]
	}
	baseactivity.SafeLog(ctx, "Fetched unnotified failed records",
		"count", len(rows),
		"remaining", remaining)
	return &domain.FetchUnnotifiedOutput{Rows: rows, Remaining: remaining}, nil
}

// MarkFailedAsNotified stamps notified_at on the listed records. Records
// already notified keep their original timestamp.
func (a *Activities) MarkFailedAsNotified(
	ctx context.Context,
	in domain.MarkNotifiedInput,
) (*domain.MarkNotifiedOutput, error) {
	updated, err := a.ledger.MarkNotified(ctx, in.IDs)
	if err != nil {
		return nil, a.fail(MarkFailedAsNotifiedName, storageWriteError("mark failed records notified", err))
	}
	a.metrics.Marked(updated)

	wfCtx := a.GetWorkflowContext(ctx)
	a.events.EmitFailedNotified(ctx, wfCtx, in.IDs, updated)
	baseactivity.SafeLog(ctx, "Marked failed records notified",
		"requested", len(in.IDs),
		"updated", updated)
	return &domain.MarkNotifiedOutput{Updated: updated}, nil
}
