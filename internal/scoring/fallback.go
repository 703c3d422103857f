package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

// FallbackScorer tries its scorers in order and returns the first verdict.
type FallbackScorer struct {
	scorers []Scorer
	logger  *slog.Logger
}

// NewFallbackScorer chains scorers. Nil entries are dropped.
func NewFallbackScorer(logger *slog.Logger, scorers ...Scorer) *FallbackScorer {
	if logger == nil {
		logger = slog.Default()
	}
	chain := make([]Scorer, 0, len(scorers))
	for _, s := range scorers {
		if s != nil {
			chain = append(chain, s)
		}
	}
	return &FallbackScorer{scorers: chain, logger: logger}
}

// Score implements Scorer. When every scorer fails the last error is
// returned; a cancelled context stops the chain immediately.
func (f *FallbackScorer) Score(ctx context.Context, req ScoreRequest) (domain.ScreeningVerdict, error) {
	if len(f.scorers) == 0 {
		return domain.ScreeningVerdict{}, errors.New("scoring: no scorers configured")
	}

	var lastErr error
	for i, s := range f.scorers {
		verdict, err := s.Score(ctx, req)
		if err == nil {
			return verdict, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ScreeningVerdict{}, ctxErr
		}
		lastErr = err
		if i < len(f.scorers)-1 {
			f.logger.Warn("scorer failed, falling back",
				"scorer", fmt.Sprintf("%T", s),
				"submission_key", req.Key,
				"error", err)
		}
	}
	return domain.ScreeningVerdict{}, fmt.Errorf("scoring: all %d scorers failed: %w", len(f.scorers), lastErr)
}
