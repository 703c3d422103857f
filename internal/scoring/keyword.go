package scoring

import (
	"context"
	"strings"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

// Reasons reported by the keyword heuristic.
const (
	KeywordReasonQualified = "Matches senior full-stack criteria with React, Node.js."
	KeywordReasonRejected  = "Missing senior signal or required keywords."
)

// DefaultKeywords must all appear for an application to qualify.
var DefaultKeywords = []string{"react", "node"}

// DefaultSeniorSignals are substrings of which at least one must appear.
var DefaultSeniorSignals = []string{"senior", "sr"}

// KeywordScorer qualifies an application when its title, description and
// resume text together contain a senior signal and every keyword. Matching
// is case-insensitive substring matching.
type KeywordScorer struct {
	keywords      []string
	seniorSignals []string
	resume        ResumeReader
}

// NewKeywordScorer uses the default keyword and signal lists. A nil resume
// reader scores on title and description only.
func NewKeywordScorer(resume ResumeReader) *KeywordScorer {
	if resume == nil {
		resume = noResume{}
	}
	return &KeywordScorer{
		keywords:      DefaultKeywords,
		seniorSignals: DefaultSeniorSignals,
		resume:        resume,
	}
}

// Score implements Scorer. It never fails.
func (s *KeywordScorer) Score(ctx context.Context, req ScoreRequest) (domain.ScreeningVerdict, error) {
	text := strings.ToLower(strings.Join([]string{
		req.Title,
		req.Description,
		s.resume.ResumeText(ctx, req.ResumePath),
	}, "\n"))

	missing := make([]string, 0, len(s.keywords))
	for _, kw := range s.keywords {
		if !strings.Contains(text, kw) {
			missing = append(missing, kw)
		}
	}

	senior := false
	for _, sig := range s.seniorSignals {
		if strings.Contains(text, sig) {
			senior = true
			break
		}
	}

	qualifies := senior && len(missing) == 0
	reason := KeywordReasonRejected
	if qualifies {
		reason = KeywordReasonQualified
	}
	return domain.ScreeningVerdict{
		Qualifies:       qualifies,
		Reason:          reason,
		MissingKeywords: missing,
		FilePath:        req.ResumePath,
	}, nil
}
