package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/jackwill99/temporal-hr/internal/activity"
	"github.com/jackwill99/temporal-hr/internal/domain"
	"github.com/jackwill99/temporal-hr/internal/ledger"
	"github.com/jackwill99/temporal-hr/internal/mail"
	"github.com/jackwill99/temporal-hr/internal/scoring"
	"github.com/jackwill99/temporal-hr/internal/workflow"
)

// switchSender fails deliveries to addresses marked down.
type switchSender struct {
	mu   sync.Mutex
	down map[string]bool
	sent []mail.Message
}

func newSwitchSender() *switchSender { return &switchSender{down: map[string]bool{}} }

func (s *switchSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down[msg.To] {
		return errors.New("dial tcp: connection refused")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *switchSender) setDown(addr string, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down[addr] = down
}

func (s *switchSender) sentTo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.To
	}
	return out
}

// countingLedger counts MarkNotified calls.
type countingLedger struct {
	ledger.Ledger
	mu    sync.Mutex
	marks int
}

func (c *countingLedger) MarkNotified(ctx context.Context, ids []string) (int, error) {
	c.mu.Lock()
	c.marks++
	c.mu.Unlock()
	return c.Ledger.MarkNotified(ctx, ids)
}

func (c *countingLedger) markCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marks
}

type harness struct {
	testsuite.WorkflowTestSuite
	ledger *countingLedger
	scorer scoring.Scorer
	sender *switchSender
}

func newHarness(t *testing.T, scorer scoring.Scorer) *harness {
	t.Helper()
	l, err := ledger.NewFileLedger(t.TempDir())
	require.NoError(t, err)
	return &harness{
		ledger: &countingLedger{Ledger: l},
		scorer: scorer,
		sender: newSwitchSender(),
	}
}

func (h *harness) newEnv() *testsuite.TestWorkflowEnvironment {
	env := h.NewTestWorkflowEnvironment()
	activity.NewActivities(activity.Deps{
		Ledger: h.ledger,
		Scorer: h.scorer,
		Sender: h.sender,
	}).Register(env)
	workflow.Register(env)
	return env
}

func (h *harness) runApplication(t *testing.T, sub domain.ApplicationSubmission) (domain.PipelineResult, error) {
	t.Helper()
	env := h.newEnv()
	env.ExecuteWorkflow(workflow.ApplicationWorkflowName, sub)
	require.True(t, env.IsWorkflowCompleted())
	var res domain.PipelineResult
	if err := env.GetWorkflowError(); err != nil {
		return res, err
	}
	require.NoError(t, env.GetWorkflowResult(&res))
	return res, nil
}

func (h *harness) runSweep(t *testing.T, in domain.SweepInput) domain.SweepResult {
	t.Helper()
	env := h.newEnv()
	env.ExecuteWorkflow(workflow.NotifyFailedWorkflowName, in)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var res domain.SweepResult
	require.NoError(t, env.GetWorkflowResult(&res))
	return res
}

func (h *harness) unnotified(t *testing.T) []domain.FailedRecord {
	t.Helper()
	rows, err := h.ledger.FetchUnnotifiedFailed(context.Background())
	require.NoError(t, err)
	return rows
}

// fixedVerdict scores every submission the same way.
func fixedVerdict(v domain.ScreeningVerdict) scoring.Scorer {
	return scoring.ScorerFunc(func(context.Context, scoring.ScoreRequest) (domain.ScreeningVerdict, error) {
		return v, nil
	})
}

// verdictByEmail rejects the listed addresses and accepts everyone else.
func verdictByEmail(rejected map[string]string) scoring.Scorer {
	return scoring.ScorerFunc(func(_ context.Context, req scoring.ScoreRequest) (domain.ScreeningVerdict, error) {
		if reason, ok := rejected[req.Email]; ok {
			return domain.ScreeningVerdict{Qualifies: false, Reason: reason}, nil
		}
		return domain.ScreeningVerdict{Qualifies: true, Reason: "match"}, nil
	})
}

func submission(key, email string) domain.ApplicationSubmission {
	return domain.ApplicationSubmission{
		ID:          key,
		Email:       email,
		Title:       "Senior Full-Stack",
		Description: "5 years, React, Node.js, senior",
	}
}
