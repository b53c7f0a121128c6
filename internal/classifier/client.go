// Package classifier sends extracted tags to a language model in parallel
// shards and decodes the typed answers.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Pass names, used for logging, metrics and prompt selection.
const (
	PassSummarize = "summarize"
	PassRelevance = "relevance"
	PassChoose    = "choose_option"
	PassDropdown  = "select_dropdown"
)

// ErrEmptyAnswer is returned when the model answers with no usable text.
var ErrEmptyAnswer = errors.New("empty model answer")

// Request is one model call: a system prompt and ordered user turns.
type Request struct {
	Pass   string
	System string
	Turns  []string
}

// Client performs a single synchronous model call.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ProviderConfig selects and configures a model provider.
type ProviderConfig struct {
	Provider  string
	Model     string
	APIKey    string
	MaxTokens int64
}

// NewProviderClient builds the client for cfg.Provider.
func NewProviderClient(ctx context.Context, cfg ProviderConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic, "":
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.MaxTokens), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}

// stripFences removes a surrounding Markdown code fence.
func stripFences(answer string) string {
	answer = strings.TrimSpace(answer)
	answer = strings.TrimPrefix(answer, "```json")
	answer = strings.TrimPrefix(answer, "```")
	answer = strings.TrimSuffix(answer, "```")
	return strings.TrimSpace(answer)
}
