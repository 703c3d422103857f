package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwill99/temporal-hr/internal/domain"
	"github.com/jackwill99/temporal-hr/internal/scoring"
)

func failing(err error) scoring.Scorer {
	return scoring.ScorerFunc(func(context.Context, scoring.ScoreRequest) (domain.ScreeningVerdict, error) {
		return domain.ScreeningVerdict{}, err
	})
}

func TestFallbackScorer(t *testing.T) {
	ctx := context.Background()
	req := scoring.ScoreRequest{Title: "Senior", Description: "React, Node.js"}

	t.Run("falls back to the next scorer", func(t *testing.T) {
		s := scoring.NewFallbackScorer(nil, failing(errors.New("gemini down")), scoring.NewKeywordScorer(nil))

		v, err := s.Score(ctx, req)
		require.NoError(t, err)
		assert.True(t, v.Qualifies)
		assert.False(t, v.UsedExternalScorer)
	})

	t.Run("first success wins", func(t *testing.T) {
		calls := 0
		second := scoring.ScorerFunc(func(context.Context, scoring.ScoreRequest) (domain.ScreeningVerdict, error) {
			calls++
			return domain.ScreeningVerdict{}, nil
		})
		s := scoring.NewFallbackScorer(nil, scoring.NewKeywordScorer(nil), second)

		_, err := s.Score(ctx, req)
		require.NoError(t, err)
		assert.Zero(t, calls)
	})

	t.Run("all failing surfaces the last error", func(t *testing.T) {
		last := errors.New("last")
		s := scoring.NewFallbackScorer(nil, failing(errors.New("first")), failing(last))

		_, err := s.Score(ctx, req)
		require.ErrorIs(t, err, last)
	})

	t.Run("cancelled context stops the chain", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s := scoring.NewFallbackScorer(nil, failing(errors.New("boom")), scoring.NewKeywordScorer(nil))

		_, err := s.Score(cctx, req)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty chain is an error", func(t *testing.T) {
		_, err := scoring.NewFallbackScorer(nil, nil).Score(ctx, req)
		require.Error(t, err)
	})
}
