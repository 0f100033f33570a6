// Package generate provides an OpenAI chat-backed generation provider.
// The answer composer only sees it through the injected GenerateFunc
// shape.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

// DefaultMaxPromptTokens caps the prompt length before truncation.
const DefaultMaxPromptTokens = 16000

// Generator produces completions for answer prompts.
type Generator struct {
	client    *openai.Client
	model     openai.ChatModel
	maxTokens int
}

// NewGenerator creates a Generator sharing an existing OpenAI client.
// Optional maxTokens sets the prompt truncation limit (defaults to
// DefaultMaxPromptTokens).
func NewGenerator(client *openai.Client, maxTokens ...int) *Generator {
	limit := DefaultMaxPromptTokens
	if len(maxTokens) > 0 && maxTokens[0] > 0 {
		limit = maxTokens[0]
	}
	return &Generator{
		client:    client,
		model:     openai.ChatModelGPT4o,
		maxTokens: limit,
	}
}

// Generate sends the prompt as a single user message and returns the
// model's text verbatim. Its signature matches compose.GenerateFunc.
// HTTP 429 responses are retried with exponential backoff.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	truncated := g.truncatePrompt(prompt)

	var answer string
	operation := func() error {
		resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(truncated),
			},
			Model: g.model,
		})
		if err != nil {
			if isRateLimitError(err) {
				return err // Retried with backoff.
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("chat completion returned no choices"))
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return answer, nil
}

// truncatePrompt trims an oversized prompt using a rough estimate of
// 4 characters per token.
func (g *Generator) truncatePrompt(prompt string) string {
	maxChars := g.maxTokens * 4
	if len(prompt) <= maxChars {
		return prompt
	}

	slog.Warn("Truncating prompt",
		"from_chars", len(prompt),
		"to_chars", maxChars,
		"estimated_tokens", g.maxTokens,
	)
	return prompt[:maxChars]
}

// isRateLimitError reports whether err is an HTTP 429 from the API.
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
