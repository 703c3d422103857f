package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/jackwill99/temporal-hr/internal/activity"
	"github.com/jackwill99/temporal-hr/internal/domain"
)

// NotifyFailedWorkflow is one notification sweep. It fetches failed records
// whose rejection email has not been sent, attempts each delivery, and marks
// only the delivered records as notified. Rows whose delivery failed stay
// unnotified for the next sweep. A run handles at most one batch of rows
// (SweepInput.MaxRows); the backlog beyond it waits for later runs.
//
// Overlapping runs are safe because the ledger's mark is a per-record
// check-and-set: a row marked by one run is absent from later fetches and is
// never re-stamped.
func NotifyFailedWorkflow(ctx workflow.Context, in domain.SweepInput) (*domain.SweepResult, error) {
	logger := workflow.GetLogger(ctx)

	var fetched domain.FetchUnnotifiedOutput
	err := workflow.ExecuteActivity(withDeadline(ctx, fetchTimeout),
		activity.FetchUnnotifiedFailedName,
		domain.FetchUnnotifiedInput{Limit: batchSize(in.MaxRows)}).Get(ctx, &fetched)
	if err != nil {
		logger.Error("Fetching unnotified failed records failed", "error", err)
		return nil, err
	}

	state := newSweepState(fetched.Rows)
	notifyAll(ctx, state, concurrency(in.MaxConcurrent))

	sent := state.sentIDs()
	if len(sent) > 0 {
		var marked domain.MarkNotifiedOutput
		err := workflow.ExecuteActivity(withDeadline(ctx, markTimeout),
			activity.MarkFailedAsNotifiedName, domain.MarkNotifiedInput{IDs: sent}).Get(ctx, &marked)
		if err != nil {
			logger.Error("Marking records notified failed", "ids", len(sent), "error", err)
			return nil, err
		}
		logger.Info("Sweep marked records notified", "sent", len(sent), "updated", marked.Updated)
	}

	result := state.result(fetched.Remaining)
	logger.Info("Sweep finished",
		"attempts", result.Attempts,
		"notified", len(result.Notified),
		"remaining", result.Remaining)
	return &result, nil
}

// notifyAll runs one rejection notification per row with at most limit in
// flight. Results are collected in row order, so the outcome for row i
// always comes from row i's activity.
func notifyAll(ctx workflow.Context, state *sweepState, limit int) {
	n := len(state.rows)
	futures := make([]workflow.Future, n)
	nctx := withDeadline(ctx, notifyTimeout)

	launched := 0
	for done := 0; done < n; done++ {
		for launched < n && launched-done < limit {
			futures[launched] = workflow.ExecuteActivity(nctx, activity.SendFailedEmailName, state.input(launched))
			launched++
		}

		var res domain.NotificationResult
		if err := futures[done].Get(ctx, &res); err != nil {
			workflow.GetLogger(ctx).Warn("Rejection notification did not complete",
				"id", state.rows[done].ID, "error", err)
			res = domain.NotificationResult{Sent: false, Error: err.Error()}
		}
		state.record(done, res)
	}
}
