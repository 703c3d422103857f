// Package ledger stores screening outcomes: accepted applications, failed
// applications, and the notification state of each failed application.
//
// The ledger is the only shared mutable resource of the pipeline. Every
// backend keeps two guarantees that the orchestration relies on:
//
//   - a submission key is recorded at most once, in exactly one collection;
//   - a failed record's notified_at moves from unset to set at most once,
//     checked and set per record at write time.
//
// The second guarantee is what lets overlapping notification sweeps run
// without a global lock: marks commute, and a mark never reverts another.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

// Ledger is the record store contract used by the activities.
type Ledger interface {
	// AppendAccepted records a qualifying submission. It returns
	// ErrAlreadyRecorded, writing nothing, when the submission key is
	// already present in either collection.
	AppendAccepted(ctx context.Context, rec domain.AcceptedRecord) error

	// AppendFailed records a rejected submission with notified_at unset.
	// Same duplicate contract as AppendAccepted.
	AppendFailed(ctx context.Context, rec domain.FailedRecord) error

	// FetchUnnotifiedFailed returns failed records whose notified_at is
	// unset, in insertion order. No rows is an empty slice, not an error.
	FetchUnnotifiedFailed(ctx context.Context) ([]domain.FailedRecord, error)

	// MarkNotified sets notified_at on every listed record that is still
	// unnotified and returns how many changed. Unknown and already-notified
	// ids are skipped.
	MarkNotified(ctx context.Context, ids []string) (int, error)

	// Lookup returns the recorded outcome for a submission key, or nil when
	// nothing has been recorded yet.
	Lookup(ctx context.Context, submissionKey string) (*domain.Outcome, error)
}

// Option configures a ledger backend.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *slog.Logger
}

// WithClock overrides the clock used to stamp notified_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for ledger diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// uniqueIDs drops empty and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
