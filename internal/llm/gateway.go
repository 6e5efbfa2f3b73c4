// Package llm implements the LLM Gateway: a provider-abstracted
// chat-completion client over langchaingo's openai/anthropic clients, with
// retry/backoff on transport failures.
package llm

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// Usage reports token accounting for one Complete call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Result is the outcome of a successful Complete call.
type Result struct {
	Text  string
	Usage Usage
}

// RetryPolicy configures the exponential backoff used on transport/5xx
// errors: configurable base delay, cap, and max attempts.
type RetryPolicy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

// DefaultRetryPolicy allows a handful of attempts with a short initial
// backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    8 * time.Second,
		MaxAttempts: 4,
	}
}

// completer is the minimal surface Gateway needs from a langchaingo model.
type completer interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Gateway issues chat-completion requests against a single configured
// provider, retrying on transport/5xx failures and classifying 4xx and
// exhausted-retry failures.
type Gateway struct {
	model    completer
	retry    RetryPolicy
	provider string
}

// Config selects and authenticates the provider.
type Config struct {
	Provider    string // "openai", "anthropic", or "custom"
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Retry       RetryPolicy
}

// New constructs a Gateway for the configured provider.
func New(cfg Config) (*Gateway, error) {
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = DefaultRetryPolicy()
	}

	switch cfg.Provider {
	case "openai", "custom":
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return &Gateway{model: m, retry: cfg.Retry, provider: cfg.Provider}, nil

	case "anthropic":
		opts := []anthropic.Option{
			anthropic.WithModel(cfg.Model),
			anthropic.WithToken(cfg.APIKey),
		}
		m, err := anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return &Gateway{model: m, retry: cfg.Retry, provider: cfg.Provider}, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// Complete issues one chat-completion request, retrying transport/5xx
// failures with exponential backoff and surfacing a typed LLMUnavailable
// error once retries are exhausted.
func (g *Gateway) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (*Result, error) {
	content := toMessageContent(messages)

	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}

	var lastErr error
	for attempt := 0; attempt < g.retry.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, voiderr.Wrap(voiderr.Cancelled, ctx.Err())
		}

		resp, err := g.model.GenerateContent(ctx, content, opts...)
		if err == nil {
			return extractResult(resp)
		}

		if !isRetryable(err) {
			return nil, voiderr.Wrap(voiderr.LLMBadReply, err)
		}
		lastErr = err

		delay := backoffDelay(g.retry, attempt)
		select {
		case <-ctx.Done():
			return nil, voiderr.Wrap(voiderr.Cancelled, ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, voiderr.Newf(voiderr.LLMUnavailable, "llm provider %s unavailable after %d attempts: %v", g.provider, g.retry.MaxAttempts, lastErr)
}

func backoffDelay(p RetryPolicy, attempt int) time.Duration {
	d := p.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	// jitter to avoid synchronized retries under concurrent load
	jitter := time.Duration(rand.Int63n(int64(d)/4 + 1))
	return d + jitter
}

// isRetryable treats transport errors and anything that isn't an obvious
// client mistake as retryable. langchaingo doesn't expose a typed status
// code uniformly across providers, so this falls back to a pragmatic
// string-based classification of the error message, while never retrying
// a context cancellation.
func isRetryable(err error) bool {
	if err == context.Canceled || err == context.DeadlineExceeded {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, clientMistake := range []string{"invalid_request", "400", "401", "403", "invalid api key", "context_length_exceeded"} {
		if strings.Contains(msg, clientMistake) {
			return false
		}
	}
	return true
}

func extractResult(resp *llms.ContentResponse) (*Result, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, voiderr.New(voiderr.LLMBadReply, "llm returned no choices")
	}
	choice := resp.Choices[0]
	return &Result{
		Text:  choice.Content,
		Usage: usageFromGenerationInfo(choice.GenerationInfo),
	}, nil
}

func usageFromGenerationInfo(info map[string]any) Usage {
	var u Usage
	if v, ok := info["PromptTokens"].(int); ok {
		u.PromptTokens = v
	}
	if v, ok := info["CompletionTokens"].(int); ok {
		u.CompletionTokens = v
	}
	return u
}

func toMessageContent(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var t llms.ChatMessageType
		switch m.Role {
		case "system":
			t = llms.ChatMessageTypeSystem
		case "assistant":
			t = llms.ChatMessageTypeAI
		default:
			t = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(t, m.Content))
	}
	return out
}
