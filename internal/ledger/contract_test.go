package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwill99/temporal-hr/internal/domain"
	"github.com/jackwill99/temporal-hr/internal/ledger"
)

// fakeClock is a manually advanced clock shared by a ledger under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// harness exposes a ledger plus a backend-specific way to read notified_at,
// which the Ledger interface intentionally does not offer.
type harness struct {
	ledger     ledger.Ledger
	clock      *fakeClock
	notifiedAt func(t *testing.T, id string) *time.Time
}

type harnessFactory func(t *testing.T) harness

func submission(key, email string) domain.ApplicationSubmission {
	return domain.ApplicationSubmission{
		ID:          key,
		Email:       email,
		Title:       "Senior Full-Stack",
		Description: "React and Node.js",
		Source:      domain.SourceWeb,
	}
}

func failedRecord(key string) domain.FailedRecord {
	return domain.NewFailedRecord(
		submission(key, key+"@x.com"),
		domain.ScreeningVerdict{Qualifies: false, Reason: "missing Node.js", MissingKeywords: []string{"node"}},
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	)
}

func acceptedRecord(key string) domain.AcceptedRecord {
	return domain.NewAcceptedRecord(
		submission(key, key+"@x.com"),
		domain.ScreeningVerdict{Qualifies: true, Reason: "match"},
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	)
}

func ids(rows []domain.FailedRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

// runLedgerContract exercises the behaviour every backend must share.
func runLedgerContract(t *testing.T, newHarness harnessFactory) {
	ctx := context.Background()

	t.Run("fetch on empty ledger returns empty slice", func(t *testing.T) {
		h := newHarness(t)
		rows, err := h.ledger.FetchUnnotifiedFailed(ctx)
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("failed records are fetched in insertion order", func(t *testing.T) {
		h := newHarness(t)
		a, b, c := failedRecord("a"), failedRecord("b"), failedRecord("c")
		require.NoError(t, h.ledger.AppendFailed(ctx, a))
		require.NoError(t, h.ledger.AppendFailed(ctx, b))
		require.NoError(t, h.ledger.AppendFailed(ctx, c))

		rows, err := h.ledger.FetchUnnotifiedFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(rows))
		assert.Nil(t, rows[0].NotifiedAt)
		assert.Equal(t, "missing Node.js", rows[0].Analysis.Reason)
		assert.Equal(t, "a@x.com", rows[0].Email)
	})

	t.Run("accepted records never show up as failed", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.ledger.AppendAccepted(ctx, acceptedRecord("a")))

		rows, err := h.ledger.FetchUnnotifiedFailed(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)

		out, err := h.ledger.Lookup(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, domain.OutcomeAccepted, out.Kind)
		assert.True(t, out.Analysis.Qualifies)
	})

	t.Run("a submission key is recorded in exactly one collection", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.ledger.AppendAccepted(ctx, acceptedRecord("a")))

		err := h.ledger.AppendFailed(ctx, failedRecord("a"))
		require.ErrorIs(t, err, ledger.ErrAlreadyRecorded)

		err = h.ledger.AppendAccepted(ctx, acceptedRecord("a"))
		require.ErrorIs(t, err, ledger.ErrAlreadyRecorded)

		rows, err := h.ledger.FetchUnnotifiedFailed(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("duplicate failed append writes nothing", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.ledger.AppendFailed(ctx, failedRecord("a")))
		require.ErrorIs(t, h.ledger.AppendFailed(ctx, failedRecord("a")), ledger.ErrAlreadyRecorded)

		rows, err := h.ledger.FetchUnnotifiedFailed(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		out, err := h.ledger.Lookup(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, domain.OutcomeFailed, out.Kind)
		assert.Equal(t, domain.FailedRecordID("a"), out.FailedID)
	})

	t.Run("lookup of unknown key returns nil", func(t *testing.T) {
		h := newHarness(t)
		out, err := h.ledger.Lookup(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("mark removes records from later fetches", func(t *testing.T) {
		h := newHarness(t)
		a, b, c := failedRecord("a"), failedRecord("b"), failedRecord("c")
		for _, r := range []domain.FailedRecord{a, b, c} {
			require.NoError(t, h.ledger.AppendFailed(ctx, r))
		}

		updated, err := h.ledger.MarkNotified(ctx, []string{b.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, updated)

		rows, err := h.ledger.FetchUnnotifiedFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, c.ID}, ids(rows))

		at := h.notifiedAt(t, b.ID)
		require.NotNil(t, at)
		assert.True(t, at.Equal(h.clock.Now()))
	})

	t.Run("mark is a no-op for unknown and empty ids", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.ledger.AppendFailed(ctx, failedRecord("a")))

		updated, err := h.ledger.MarkNotified(ctx, []string{"does-not-exist", ""})
		require.NoError(t, err)
		assert.Zero(t, updated)

		updated, err = h.ledger.MarkNotified(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, updated)

		rows, err := h.ledger.FetchUnnotifiedFailed(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("re-marking keeps the first timestamp", func(t *testing.T) {
		h := newHarness(t)
		a := failedRecord("a")
		require.NoError(t, h.ledger.AppendFailed(ctx, a))

		updated, err := h.ledger.MarkNotified(ctx, []string{a.ID})
		require.NoError(t, err)
		require.Equal(t, 1, updated)
		first := h.notifiedAt(t, a.ID)
		require.NotNil(t, first)

		h.clock.Advance(time.Hour)
		updated, err = h.ledger.MarkNotified(ctx, []string{a.ID, a.ID})
		require.NoError(t, err)
		assert.Zero(t, updated)

		second := h.notifiedAt(t, a.ID)
		require.NotNil(t, second)
		assert.True(t, first.Equal(*second), "notified_at must not move once set")
	})

	t.Run("concurrent overlapping marks converge", func(t *testing.T) {
		h := newHarness(t)
		var all []string
		for i := 0; i < 12; i++ {
			rec := failedRecord(fmt.Sprintf("rec-%02d", i))
			require.NoError(t, h.ledger.AppendFailed(ctx, rec))
			all = append(all, rec.ID)
		}

		// Each sweep marks an overlapping window of the fetched rows.
		windows := [][]string{all[0:8], all[4:12], all[2:10], all}
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			total int
		)
		for _, w := range windows {
			wg.Add(1)
			go func(batch []string) {
				defer wg.Done()
				n, err := h.ledger.MarkNotified(ctx, batch)
				assert.NoError(t, err)
				mu.Lock()
				total += n
				mu.Unlock()
			}(w)
		}
		wg.Wait()

		assert.Equal(t, len(all), total, "each record transitions exactly once")
		rows, err := h.ledger.FetchUnnotifiedFailed(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
		for _, id := range all {
			assert.NotNil(t, h.notifiedAt(t, id), "record %s lost its timestamp", id)
		}
	})
}
