package workflow

import "github.com/jackwill99/temporal-hr/internal/domain"

// sweepState accumulates one sweep's per-row outcomes. Outcomes are indexed
// by fetch position so attribution survives out-of-order completion.
type sweepState struct {
	rows     []domain.FailedRecord
	outcomes []domain.SweepOutcome
}

func newSweepState(rows []domain.FailedRecord) *sweepState {
	outcomes := make([]domain.SweepOutcome, len(rows))
	for i, r := range rows {
		outcomes[i] = domain.SweepOutcome{ID: r.ID, Email: r.Email}
	}
	return &sweepState{rows: rows, outcomes: outcomes}
}

func (s *sweepState) input(i int) domain.NotifyInput {
	return domain.NotifyInput{Email: s.rows[i].Email, Reason: s.rows[i].Analysis.Reason}
}

func (s *sweepState) record(i int, res domain.NotificationResult) {
	s.outcomes[i].Sent = res.Sent
	s.outcomes[i].Error = res.Error
}

// sentIDs returns the ids of rows whose delivery succeeded, in fetch order.
func (s *sweepState) sentIDs() []string {
	ids := make([]string, 0, len(s.outcomes))
	for _, o := range s.outcomes {
		if o.Sent && o.ID != "" {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func (s *sweepState) result(remaining int) domain.SweepResult {
	return domain.SweepResult{
		Notified:  s.sentIDs(),
		Attempts:  len(s.rows),
		Results:   s.outcomes,
		Remaining: remaining,
	}
}

// batchSize clamps the requested rows per run to [1, MaxSweepBatch];
// non-positive requests get DefaultSweepBatch.
func batchSize(requested int) int {
	switch {
	case requested < 1:
		return DefaultSweepBatch
	case requested > MaxSweepBatch:
		return MaxSweepBatch
	default:
		return requested
	}
}

// concurrency clamps the requested fan-out to [1, maxSweepConcurrency].
func concurrency(requested int) int {
	switch {
	case requested < 1:
		return 1
	case requested > maxSweepConcurrency:
		return maxSweepConcurrency
	default:
		return requested
	}
}
