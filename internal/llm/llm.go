// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the single boundary between paper-digest and hosted or local
// language models. A Client sends one system + user prompt pair with a
// sampling temperature and an output-token cap, and returns the raw
// completion text.
//
// Every failure, whatever its cause (transport, auth, quota, empty reply,
// deadline), is returned as a *GenerationError for which
// errors.Is(err, ErrGenerationFailed) holds. The client never retries.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Supported providers.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// DefaultTimeout is the per-call deadline applied when neither the caller's
// context nor the configuration sets one.
const DefaultTimeout = 2 * time.Minute

// ErrGenerationFailed is matched by every error a Client returns.
var ErrGenerationFailed = errors.New("language model generation failed")

// GenerationError reports a failed completion call.
type GenerationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s/%s: %v", ErrGenerationFailed, e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrGenerationFailed) true for every GenerationError.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// Request is one completion call.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer returns the completion text for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// usage is the token accounting a backend reports, when it reports any.
type usage struct {
	PromptTokens     int
	CompletionTokens int
}

// backend performs the provider-specific call.
type backend interface {
	complete(ctx context.Context, model string, req Request) (string, usage, error)
}

// Client implements Completer on top of one provider backend. It is safe for
// concurrent use; nothing is mutated after New returns.
type Client struct {
	provider string
	model    string
	timeout  time.Duration
	backend  backend
	logger   *zap.Logger
}

// New builds the Client for cfg.Provider.
func New(cfg types.LLMConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm: model is required")
	}

	var (
		b   backend
		err error
	)
	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case ProviderOpenAI, "":
		provider = ProviderOpenAI
		b, err = newOpenAIBackend(cfg)
	case ProviderOllama:
		b, err = newOllamaBackend(cfg)
	case ProviderAnthropic:
		b, err = newAnthropicBackend(cfg)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("llm: creating %s backend: %w", provider, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		provider: provider,
		model:    cfg.Model,
		timeout:  timeout,
		backend:  b,
		logger:   logger.With(zap.String("provider", provider), zap.String("model", cfg.Model)),
	}, nil
}

// Provider returns the backend name.
func (c *Client) Provider() string { return c.provider }

// Model returns the model identifier sent with every request.
func (c *Client) Model() string { return c.model }

// Complete sends req to the model. The caller's deadline wins; otherwise the
// configured timeout applies.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, u, err := c.backend.complete(ctx, c.model, req)
	elapsed := time.Since(start)
	requestDuration.WithLabelValues(c.provider, c.model).Observe(elapsed.Seconds())

	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		requestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		c.logger.Warn("completion failed", zap.Duration("latency", elapsed), zap.Error(err))
		return "", &GenerationError{Provider: c.provider, Model: c.model, Err: err}
	}

	requestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	if u.PromptTokens > 0 || u.CompletionTokens > 0 {
		promptTokens.WithLabelValues(c.provider, c.model).Observe(float64(u.PromptTokens))
		completionTokens.WithLabelValues(c.provider, c.model).Observe(float64(u.CompletionTokens))
	}
	c.logger.Debug("completion received",
		zap.Duration("latency", elapsed),
		zap.Int("chars", len(text)),
		zap.Int("prompt_tokens", u.PromptTokens),
		zap.Int("completion_tokens", u.CompletionTokens))
	return text, nil
}
