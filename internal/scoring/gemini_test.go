package scoring_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwill99/temporal-hr/internal/scoring"
)

func geminiServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "systemInstruction")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(text))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newGemini(t *testing.T, srv *httptest.Server) *scoring.GeminiScorer {
	t.Helper()
	s, err := scoring.NewGeminiScorer(scoring.GeminiConfig{
		APIKey:   "test-key",
		Endpoint: srv.URL,
	}, srv.Client(), nil)
	require.NoError(t, err)
	return s
}

func TestGeminiScorer(t *testing.T) {
	ctx := context.Background()
	req := scoring.ScoreRequest{Title: "Senior", Description: "React, Node.js", ResumePath: "/cv.pdf"}

	t.Run("fenced json answer", func(t *testing.T) {
		srv := geminiServer(t, http.StatusOK,
			"```json\n{\"qualifies\":true,\"reason\":\"strong match\",\"missing_keywords\":[]}\n```")

		v, err := newGemini(t, srv).Score(ctx, req)
		require.NoError(t, err)
		assert.True(t, v.Qualifies)
		assert.Equal(t, "strong match", v.Reason)
		assert.True(t, v.UsedExternalScorer)
		assert.Equal(t, "/cv.pdf", v.FilePath)
		assert.JSONEq(t, `{"qualifies":true,"reason":"strong match","missing_keywords":[]}`, string(v.Details))
	})

	t.Run("json surrounded by prose", func(t *testing.T) {
		srv := geminiServer(t, http.StatusOK,
			`Here you go: {"qualifies":false,"reason":"no node","missing_keywords":["node"]} thanks`)

		v, err := newGemini(t, srv).Score(ctx, req)
		require.NoError(t, err)
		assert.False(t, v.Qualifies)
		assert.Equal(t, []string{"node"}, v.MissingKeywords)
	})

	t.Run("answer without qualifies is unusable", func(t *testing.T) {
		srv := geminiServer(t, http.StatusOK, `{"reason":"unsure"}`)

		_, err := newGemini(t, srv).Score(ctx, req)
		require.ErrorIs(t, err, scoring.ErrUnusableOutput)
	})

	t.Run("prose answer is unusable", func(t *testing.T) {
		srv := geminiServer(t, http.StatusOK, "I cannot decide.")

		_, err := newGemini(t, srv).Score(ctx, req)
		require.ErrorIs(t, err, scoring.ErrUnusableOutput)
	})

	t.Run("api error carries status", func(t *testing.T) {
		srv := geminiServer(t, http.StatusTooManyRequests,
			`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)

		_, err := newGemini(t, srv).Score(ctx, req)
		var apiErr *scoring.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		assert.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)
		assert.Equal(t, "quota exceeded", apiErr.Message)
	})
}

func TestNewGeminiScorerRequiresKey(t *testing.T) {
	_, err := scoring.NewGeminiScorer(scoring.GeminiConfig{}, nil, nil)
	require.Error(t, err)
}
