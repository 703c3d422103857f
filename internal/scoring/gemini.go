package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jackwill99/temporal-hr/internal/domain"
)

// Gemini defaults.
const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel    = "models/gemini-2.5-flash"
	defaultGeminiTimeout  = 60 * time.Second
)

const screeningInstructions = "You are screening candidates for a Senior Full-Stack Developer role. " +
	"Overall 3 years of experience can be assumed for the senior level candidate. " +
	"Decide if the applicant is senior-level and explicitly mentions React, Node.js. " +
	`Respond with compact JSON: {"qualifies":true|false,"reason":"string","missing_keywords":["react","node"]}`

// GeminiConfig configures GeminiScorer.
type GeminiConfig struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// APIError is a non-2xx answer from the Gemini API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini: http %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini: http %d: %s", e.StatusCode, e.Message)
}

// GeminiScorer asks a Gemini model for the verdict through the
// generateContent REST API.
type GeminiScorer struct {
	cfg    GeminiConfig
	client *http.Client
	resume ResumeReader
}

// NewGeminiScorer validates cfg and fills in defaults. A nil client gets one
// with cfg.Timeout.
func NewGeminiScorer(cfg GeminiConfig, client *http.Client, resume ResumeReader) (*GeminiScorer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGeminiEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeminiTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if resume == nil {
		resume = noResume{}
	}
	return &GeminiScorer{cfg: cfg, client: client, resume: resume}, nil
}

// Score implements Scorer.
func (s *GeminiScorer) Score(ctx context.Context, req ScoreRequest) (domain.ScreeningVerdict, error) {
	materials := strings.Join([]string{
		req.Title,
		req.Description,
		s.resume.ResumeText(ctx, req.ResumePath),
	}, "\n")

	httpReq, err := s.build(ctx, materials)
	if err != nil {
		return domain.ScreeningVerdict{}, err
	}
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return domain.ScreeningVerdict{}, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := parseGenerateContent(resp)
	if err != nil {
		return domain.ScreeningVerdict{}, err
	}
	verdict, err := decodeVerdict(text)
	if err != nil {
		return domain.ScreeningVerdict{}, err
	}
	verdict.FilePath = req.ResumePath
	return verdict, nil
}

func (s *GeminiScorer) endpoint() string {
	model := s.cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(s.cfg.Endpoint, "/"), model)
}

func (s *GeminiScorer) build(ctx context.Context, materials string) (*http.Request, error) {
	body := map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]any{{"text": screeningInstructions}},
		},
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]any{{"text": "Application materials:\n" + materials}},
			},
		},
		"generationConfig": map[string]any{
			"temperature":      0,
			"responseMimeType": "application/json",
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.cfg.APIKey)
	return httpReq, nil
}

func parseGenerateContent(resp *http.Response) (string, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseGeminiError(resp.StatusCode, body)
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini: parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrUnusableOutput)
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%w: empty text", ErrUnusableOutput)
	}
	return text.String(), nil
}

func parseGeminiError(status int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return &APIError{StatusCode: status, Status: errResp.Error.Status, Message: errResp.Error.Message}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

func decodeVerdict(text string) (domain.ScreeningVerdict, error) {
	obj, ok := extractJSONObject(text)
	if !ok {
		return domain.ScreeningVerdict{}, fmt.Errorf("%w: not json: %.200q", ErrUnusableOutput, text)
	}

	var answer struct {
		Qualifies       *bool    `json:"qualifies"`
		Reason          string   `json:"reason"`
		MissingKeywords []string `json:"missing_keywords"`
	}
	if err := json.Unmarshal([]byte(obj), &answer); err != nil {
		return domain.ScreeningVerdict{}, fmt.Errorf("%w: %v", ErrUnusableOutput, err)
	}
	if answer.Qualifies == nil {
		return domain.ScreeningVerdict{}, fmt.Errorf("%w: missing qualifies", ErrUnusableOutput)
	}
	if answer.MissingKeywords == nil {
		answer.MissingKeywords = []string{}
	}

	return domain.ScreeningVerdict{
		Qualifies:          *answer.Qualifies,
		Reason:             answer.Reason,
		MissingKeywords:    answer.MissingKeywords,
		UsedExternalScorer: true,
		Details:            json.RawMessage(obj),
	}, nil
}
