package activity_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/jackwill99/temporal-hr/internal/activity"
	"github.com/jackwill99/temporal-hr/internal/domain"
	"github.com/jackwill99/temporal-hr/internal/ledger"
	"github.com/jackwill99/temporal-hr/internal/mail"
	"github.com/jackwill99/temporal-hr/internal/scoring"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

// countingScorer returns a fixed verdict and counts calls.
type countingScorer struct {
	mu      sync.Mutex
	calls   int
	verdict domain.ScreeningVerdict
	err     error
}

func (s *countingScorer) Score(context.Context, scoring.ScoreRequest) (domain.ScreeningVerdict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.verdict, s.err
}

func (s *countingScorer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingSender) Sent() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}

// brokenLedger fails every operation with a storage error.
type brokenLedger struct{}

func (brokenLedger) err() error {
	return &ledger.StorageWriteError{Backend: "test", Op: "any", Err: errors.New("disk unavailable")}
}

func (b brokenLedger) AppendAccepted(context.Context, domain.AcceptedRecord) error { return b.err() }
func (b brokenLedger) AppendFailed(context.Context, domain.FailedRecord) error     { return b.err() }
func (b brokenLedger) FetchUnnotifiedFailed(context.Context) ([]domain.FailedRecord, error) {
	return nil, b.err()
}
func (b brokenLedger) MarkNotified(context.Context, []string) (int, error) { return 0, b.err() }
func (b brokenLedger) Lookup(context.Context, string) (*domain.Outcome, error) {
	return nil, nil
}

type fixture struct {
	env    *testsuite.TestActivityEnvironment
	ledger ledger.Ledger
	scorer *countingScorer
	sender *recordingSender
}

func newFixture(t *testing.T, verdict domain.ScreeningVerdict) *fixture {
	t.Helper()
	l, err := ledger.NewFileLedger(t.TempDir(), ledger.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return newFixtureWith(t, l, &countingScorer{verdict: verdict}, &recordingSender{})
}

func newFixtureWith(t *testing.T, l ledger.Ledger, s *countingScorer, sender mail.Sender) *fixture {
	t.Helper()
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()

	acts := activity.NewActivities(activity.Deps{
		Ledger: l,
		Scorer: s,
		Sender: sender,
		Clock:  func() time.Time { return fixedNow },
	})
	acts.Register(env)

	f := &fixture{env: env, ledger: l, scorer: s}
	if rs, ok := sender.(*recordingSender); ok {
		f.sender = rs
	}
	return f
}

func validSubmission(key string) domain.ApplicationSubmission {
	return domain.ApplicationSubmission{
		ID:          key,
		Email:       "a@x.com",
		Title:       "Senior Full-Stack",
		Description: "5 years, React, Node.js, senior",
	}
}

func (f *fixture) evaluate(t *testing.T, sub domain.ApplicationSubmission) (*domain.ScreeningVerdict, error) {
	t.Helper()
	val, err := f.env.ExecuteActivity(activity.EvaluateApplicationName, sub)
	if err != nil {
		return nil, err
	}
	var out domain.ScreeningVerdict
	require.NoError(t, val.Get(&out))
	return &out, nil
}

func (f *fixture) notify(t *testing.T, name string, in domain.NotifyInput) domain.NotificationResult {
	t.Helper()
	val, err := f.env.ExecuteActivity(name, in)
	require.NoError(t, err)
	var out domain.NotificationResult
	require.NoError(t, val.Get(&out))
	return out
}

func requireAppError(t *testing.T, err error, errType string, retryable bool) {
	t.Helper()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, errType, appErr.Type())
	require.Equal(t, !retryable, appErr.NonRetryable())
}
