// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// --- fake backend ---

type fakeBackend struct {
	text        string
	err         error
	block       bool
	hadDeadline bool
	deadline    time.Time
}

func (f *fakeBackend) complete(ctx context.Context, _ string, _ Request) (string, usage, error) {
	f.deadline, f.hadDeadline = ctx.Deadline()
	if f.block {
		<-ctx.Done()
		return "", usage{}, ctx.Err()
	}
	return f.text, usage{PromptTokens: 3, CompletionTokens: 2}, f.err
}

func testClient(b backend, timeout time.Duration) *Client {
	return &Client{provider: "fake", model: "m", timeout: timeout, backend: b, logger: zap.NewNop()}
}

var draftReq = Request{System: "sys", User: "paper text", Temperature: 0.3, MaxTokens: 1500}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.LLMConfig
		wantErr string
	}{
		{"unknown provider", types.LLMConfig{Provider: "bard", Model: "m"}, "unknown provider"},
		{"missing model", types.LLMConfig{Provider: "openai", APIKey: "k"}, "model is required"},
		{"openai without key", types.LLMConfig{Provider: "openai", Model: "m"}, "api key is required"},
		{"anthropic without key", types.LLMConfig{Provider: "anthropic", Model: "m"}, "api key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	c, err := New(types.LLMConfig{Model: "gpt-4-turbo", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, c.Provider())
	assert.Equal(t, DefaultTimeout, c.timeout)

	c, err = New(types.LLMConfig{Provider: "Ollama", Model: "llama3", Timeout: time.Second}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, c.Provider())
	assert.Equal(t, time.Second, c.timeout)
}

func TestComplete_AppliesTimeoutWithoutDeadline(t *testing.T) {
	fb := &fakeBackend{text: "ok"}
	c := testClient(fb, time.Minute)

	_, err := c.Complete(context.Background(), draftReq)
	require.NoError(t, err)
	assert.True(t, fb.hadDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Minute), fb.deadline, 5*time.Second)
}

func TestComplete_KeepsCallerDeadline(t *testing.T) {
	fb := &fakeBackend{text: "ok"}
	c := testClient(fb, time.Minute)

	want := time.Now().Add(time.Hour)
	ctx, cancel := context.WithDeadline(context.Background(), want)
	defer cancel()

	_, err := c.Complete(ctx, draftReq)
	require.NoError(t, err)
	assert.True(t, want.Equal(fb.deadline))
}

func TestComplete_DeadlineExceeded(t *testing.T) {
	c := testClient(&fakeBackend{block: true}, 10*time.Millisecond)

	_, err := c.Complete(context.Background(), draftReq)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var gerr *GenerationError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "fake", gerr.Provider)
	assert.Equal(t, "m", gerr.Model)
}

func TestComplete_BackendErrorAndEmptyText(t *testing.T) {
	cause := errors.New("quota exceeded")
	_, err := testClient(&fakeBackend{err: cause}, time.Second).Complete(context.Background(), draftReq)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, cause)

	_, err = testClient(&fakeBackend{text: "  \n"}, time.Second).Complete(context.Background(), draftReq)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "empty completion")
}

func TestOpenAIBackend(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body.Model)
		assert.InDelta(t, 0.3, body.Temperature, 1e-9)
		assert.Equal(t, 1500, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "sys", body.Messages[0].Content)
		assert.Equal(t, "user", body.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"draft text"}}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer ts.Close()

	c, err := New(types.LLMConfig{Provider: "openai", Model: "gpt-test", APIKey: "sk-test", BaseURL: ts.URL + "/v1"}, nil)
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), draftReq)
	require.NoError(t, err)
	assert.Equal(t, "draft text", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIBackend_ServerErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer ts.Close()

	c, err := New(types.LLMConfig{Provider: "openai", Model: "gpt-test", APIKey: "sk-test", BaseURL: ts.URL + "/v1"}, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), draftReq)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOllamaBackend(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body struct {
			Model    string         `json:"model"`
			Stream   *bool          `json:"stream"`
			Options  map[string]any `json:"options"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3", body.Model)
		require.NotNil(t, body.Stream)
		assert.False(t, *body.Stream)
		assert.InDelta(t, 0.3, body.Options["temperature"], 1e-9)
		assert.EqualValues(t, 1500, body.Options["num_predict"])
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"local draft"},"done":true,"prompt_eval_count":7,"eval_count":4}` + "\n"))
	}))
	defer ts.Close()

	c, err := New(types.LLMConfig{Provider: "ollama", Model: "llama3", BaseURL: ts.URL + "/v1/"}, nil)
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), draftReq)
	require.NoError(t, err)
	assert.Equal(t, "local draft", got)
}

func TestAnthropicBackend(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var body anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sys", body.System)
		assert.Equal(t, 1500, body.MaxTokens)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "paper text", body.Messages[0].Content)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"claude draft"}],"usage":{"input_tokens":9,"output_tokens":3}}`))
	}))
	defer ts.Close()

	orig := anthropicAPIURL
	anthropicAPIURL = ts.URL
	defer func() { anthropicAPIURL = orig }()

	c, err := New(types.LLMConfig{Provider: "anthropic", Model: "claude-test", APIKey: "ak-test"}, nil)
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), draftReq)
	require.NoError(t, err)
	assert.Equal(t, "claude draft", got)
}

func TestAnthropicBackend_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error"}}`))
	}))
	defer ts.Close()

	c, err := New(types.LLMConfig{Provider: "anthropic", Model: "claude-test", APIKey: "bad", BaseURL: ts.URL}, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), draftReq)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "401")
}
