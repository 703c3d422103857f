// Package scoring turns an application into a screening verdict.
//
// The orchestration treats scoring as opaque: it only reads Qualifies and
// Reason from the verdict. Scorers here range from an external model
// (Gemini) to a deterministic keyword heuristic, chained by FallbackScorer.
package scoring

import (
	"context"
	"errors"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

// ErrUnusableOutput is returned when a scorer answered but the answer cannot
// be turned into a verdict.
var ErrUnusableOutput = errors.New("scoring: unusable scorer output")

// ScoreRequest is the application material a scorer sees.
type ScoreRequest struct {
	Key         string
	Email       string
	Title       string
	Description string
	ResumePath  string
}

// RequestFrom builds a ScoreRequest from a normalized submission.
func RequestFrom(sub domain.ApplicationSubmission) ScoreRequest {
	return ScoreRequest{
		Key:         sub.ID,
		Email:       sub.Email,
		Title:       sub.Title,
		Description: sub.Description,
		ResumePath:  sub.FilePath,
	}
}

// Scorer produces a verdict for one application.
type Scorer interface {
	Score(ctx context.Context, req ScoreRequest) (domain.ScreeningVerdict, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, req ScoreRequest) (domain.ScreeningVerdict, error)

// Score implements Scorer.
func (f ScorerFunc) Score(ctx context.Context, req ScoreRequest) (domain.ScreeningVerdict, error) {
	return f(ctx, req)
}
