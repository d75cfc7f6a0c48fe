package engine

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"legacy-awakened/server/internal/config"
	"legacy-awakened/server/internal/interfaces"
)

const (
	defaultModel   = "gpt-4o"
	defaultTimeout = 120 * time.Second
	maxRetries     = 3
	retryDelay     = 1 * time.Second

	// Every completion is capped at the same output length.
	oracleMaxTokens = 800

	// PlaceholderCompletion replaces a completion when the external
	// service cannot be reached. Downstream prompts keep flowing with
	// this filler instead of the turn failing.
	PlaceholderCompletion = "The journey continues... (Error generating content, please try again)"
)

const systemPersona = "You are a cinematic narrator for a superhero adventure game called " +
	"'Legacy Awakened'. Create action-packed, emotional, and immersive scenes. Let the player " +
	"become a new hero caught in a multiverse crisis, interacting with elements like SHIELD, " +
	"Stark tech, cosmic threats, and multiverse rifts. Make choices matter."

// OracleClient wraps an OpenAI-compatible chat completion API. It is the
// system's sole failure-isolation point: callers never see an error, only
// degraded placeholder text.
type OracleClient struct {
	client *openai.Client
	model  string
}

// NewOracleClient creates a completion client from config. The API key
// may be empty; every call will then degrade to the placeholder.
func NewOracleClient(cfg config.OpenAIConfig) *OracleClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: defaultTimeout}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &OracleClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Complete sends one chat completion request with the fixed persona and
// sampling parameters. Transient failures are retried; any terminal
// failure is logged and absorbed into the placeholder completion.
func (o *OracleClient) Complete(ctx context.Context, prompt string, temperature float32) interfaces.Completion {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				log.Printf("[Oracle] completion aborted: %v", ctx.Err())
				return interfaces.Completion{Text: PlaceholderCompletion, Degraded: true}
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPersona},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: temperature,
			MaxTokens:   oracleMaxTokens,
			TopP:        1.0,
		})
		if err == nil {
			if len(resp.Choices) == 0 {
				lastErr = errors.New("no choices returned from model")
				break
			}
			return interfaces.Completion{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}
	}

	log.Printf("[Oracle] completion failed: %v", lastErr)
	return interfaces.Completion{Text: PlaceholderCompletion, Degraded: true}
}

// isRetryableError checks if an error is worth another attempt
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "rate limit")
}
