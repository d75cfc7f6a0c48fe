package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacy-awakened/server/internal/config"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float32 `json:"top_p"`
}

func completionBody(content string) string {
	return `{"id":"cmpl-1","object":"chat.completion","created":1,"model":"gpt-4o",` +
		`"choices":[{"index":0,"message":{"role":"assistant","content":"` + content + `"},` +
		`"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`
}

func TestCompleteSuccess(t *testing.T) {
	var got capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("  The city holds its breath.  ")))
	}))
	defer srv.Close()

	oracle := NewOracleClient(config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})

	completion := oracle.Complete(context.Background(), "what happens next?", 0.7)

	assert.False(t, completion.Degraded)
	assert.Equal(t, "The city holds its breath.", completion.Text)

	// Fixed persona, fixed sampling parameters.
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, systemPersona, got.Messages[0].Content)
	assert.Equal(t, "what happens next?", got.Messages[1].Content)
	assert.Equal(t, float32(0.7), got.Temperature)
	assert.Equal(t, oracleMaxTokens, got.MaxTokens)
	assert.Equal(t, float32(1.0), got.TopP)
	assert.Equal(t, defaultModel, got.Model)
}

func TestCompleteFailureDegradesToPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	oracle := NewOracleClient(config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})

	completion := oracle.Complete(context.Background(), "prompt", 0.5)

	assert.True(t, completion.Degraded)
	assert.Equal(t, PlaceholderCompletion, completion.Text)
}

func TestCompleteEmptyChoicesDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	oracle := NewOracleClient(config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})

	completion := oracle.Complete(context.Background(), "prompt", 0.5)

	assert.True(t, completion.Degraded)
	assert.Equal(t, PlaceholderCompletion, completion.Text)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.True(t, isRetryableError(errTimeout))
	assert.True(t, isRetryableError(errRefused))
	assert.False(t, isRetryableError(errOther))
}

var (
	errTimeout = contextError("request timeout exceeded")
	errRefused = contextError("dial tcp: connection refused")
	errOther   = contextError("invalid api key")
)

type contextError string

func (e contextError) Error() string { return string(e) }
