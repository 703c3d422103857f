package activity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwill99/temporal-hr/internal/activity"
	"github.com/jackwill99/temporal-hr/internal/domain"
)

func TestFetchAndMark(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, domain.ScreeningVerdict{})
	for _, key := range []string{"k1", "k2", "k3"} {
		sub := validSubmission(key)
		sub.Email = key + "@x.com"
		require.NoError(t, f.ledger.AppendFailed(ctx, domain.NewFailedRecord(sub, domain.ScreeningVerdict{Reason: key}, fixedNow)))
	}

	val, err := f.env.ExecuteActivity(activity.FetchUnnotifiedFailedName, domain.FetchUnnotifiedInput{})
	require.NoError(t, err)
	var fetched domain.FetchUnnotifiedOutput
	require.NoError(t, val.Get(&fetched))
	require.Len(t, fetched.Rows, 3)
	assert.Equal(t, "k1@x.com", fetched.Rows[0].Email)
	assert.Equal(t, "k3@x.com", fetched.Rows[2].Email)

	ids := []string{fetched.Rows[0].ID, fetched.Rows[2].ID, "unknown"}
	val, err = f.env.ExecuteActivity(activity.MarkFailedAsNotifiedName, domain.MarkNotifiedInput{IDs: ids})
	require.NoError(t, err)
	var marked domain.MarkNotifiedOutput
	require.NoError(t, val.Get(&marked))
	assert.Equal(t, 2, marked.Updated)

	val, err = f.env.ExecuteActivity(activity.MarkFailedAsNotifiedName, domain.MarkNotifiedInput{IDs: ids})
	require.NoError(t, err)
	require.NoError(t, val.Get(&marked))
	assert.Zero(t, marked.Updated)

	rows, err := f.ledger.FetchUnnotifiedFailed(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "k2@x.com", rows[0].Email)
}

func TestFetchAndMarkStorageFailure(t *testing.T) {
	f := newFixtureWith(t, brokenLedger{}, &countingScorer{}, nil)

	_, err := f.env.ExecuteActivity(activity.FetchUnnotifiedFailedName, domain.FetchUnnotifiedInput{})
	requireAppError(t, err, activity.ErrTypeStorageWrite, true)

	_, err = f.env.ExecuteActivity(activity.MarkFailedAsNotifiedName, domain.MarkNotifiedInput{IDs: []string{"x"}})
	requireAppError(t, err, activity.ErrTypeStorageWrite, true)
}

func TestFetchEmptyLedger(t *testing.T) {
	f := newFixture(t, domain.ScreeningVerdict{})

	val, err := f.env.ExecuteActivity(activity.FetchUnnotifiedFailedName, domain.FetchUnnotifiedInput{})
	require.NoError(t, err)
	var fetched domain.FetchUnnotifiedOutput
	require.NoError(t, val.Get(&fetched))
	assert.Empty(t, fetched.Rows)
}

func TestFetchUnnotifiedFailedLimit(t *testing.T) {
	f := newFixture(t, domain.ScreeningVerdict{})
	ctx := context.Background()
	var want []string
	for _, key := range []string{"k1", "k2", "k3", "k4", "k5"} {
		rec := domain.NewFailedRecord(validSubmission(key), domain.ScreeningVerdict{Reason: "no"}, fixedNow)
		require.NoError(t, f.ledger.AppendFailed(ctx, rec))
		want = append(want, rec.ID)
	}

	tests := []struct {
		name      string
		limit     int
		rows      []string
		remaining int
	}{
		{"limit below backlog", 2, want[:2], 3},
		{"limit equals backlog", 5, want, 0},
		{"limit above backlog", 10, want, 0},
		{"zero limit returns everything", 0, want, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := f.env.ExecuteActivity(activity.FetchUnnotifiedFailedName,
				domain.FetchUnnotifiedInput{Limit: tt.limit})
			require.NoError(t, err)
			var out domain.FetchUnnotifiedOutput
			require.NoError(t, val.Get(&out))

			got := make([]string, len(out.Rows))
			for i, r := range out.Rows {
				got[i] = r.ID
			}
			assert.Equal(t, tt.rows, got)
			assert.Equal(t, tt.remaining, out.Remaining)
		})
	}
}
