// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultOllamaURL is used when no base URL is configured.
const DefaultOllamaURL = "http://localhost:11434"

type ollamaBackend struct {
	client *api.Client
}

func newOllamaBackend(cfg types.LLMConfig) (*ollamaBackend, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultOllamaURL
	}
	// The native API lives beside the OpenAI-compatible /v1 prefix.
	base = strings.TrimSuffix(strings.TrimSuffix(base, "/"), "/v1")

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", base, err)
	}
	return &ollamaBackend{client: api.NewClient(u, &http.Client{})}, nil
}

func (b *ollamaBackend) complete(ctx context.Context, model string, req Request) (string, usage, error) {
	stream := false
	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	chat := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Stream:  &stream,
		Options: options,
	}

	var last api.ChatResponse
	err := b.client.Chat(ctx, chat, func(r api.ChatResponse) error {
		last = r
		return nil
	})
	if err != nil {
		return "", usage{}, fmt.Errorf("ollama chat: %w", err)
	}
	return last.Message.Content, usage{PromptTokens: last.PromptEvalCount, CompletionTokens: last.EvalCount}, nil
}
