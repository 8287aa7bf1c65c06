// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize implements the two model-backed stages that turn paper
// text into a summary: the Writer drafts a narrative and extracts structured
// fields from it, and the Reviewer tightens the draft into a short
// plain-text summary.
//
// Both stages make exactly one model call and never retry. Model failures
// come back unchanged from the llm package, so callers can test them with
// errors.Is(err, llm.ErrGenerationFailed).
package summarize

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/extract"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Sampling parameters for each stage.
const (
	Temperature     = 0.3
	DraftMaxTokens  = 1500
	ReviewMaxTokens = 1000

	// DefaultMaxInputChars caps how much paper text is embedded in a prompt.
	DefaultMaxInputChars = 5000
)

// Options configures both stages.
type Options struct {
	// MaxInputChars caps the paper text sent to the model. Zero means
	// DefaultMaxInputChars.
	MaxInputChars int

	// Extractor derives the draft's structured fields. Nil means the
	// default policy.
	Extractor extract.Extractor

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxInputChars <= 0 {
		o.MaxInputChars = DefaultMaxInputChars
	}
	if o.Extractor == nil {
		o.Extractor, _ = extract.New(extract.DefaultPolicy)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Writer is the draft stage.
type Writer struct {
	llm  llm.Completer
	opts Options
}

// NewWriter returns a draft stage that calls c.
func NewWriter(c llm.Completer, opts Options) *Writer {
	return &Writer{llm: c, opts: opts.withDefaults()}
}

// GenerateDraft asks the model for a narrative summary of the opening of
// fullText and extracts structured fields from the reply.
func (w *Writer) GenerateDraft(ctx context.Context, fullText string) (types.StructuredSummary, error) {
	user, err := render(draftPromptTmpl, draftPromptData{Paper: truncate(fullText, w.opts.MaxInputChars)})
	if err != nil {
		return types.StructuredSummary{}, fmt.Errorf("rendering draft prompt: %w", err)
	}

	text, err := w.llm.Complete(ctx, llm.Request{
		System:      draftSystemPrompt,
		User:        user,
		Temperature: Temperature,
		MaxTokens:   DraftMaxTokens,
	})
	if err != nil {
		return types.StructuredSummary{}, err
	}

	draft := w.opts.Extractor.Extract(text)
	w.opts.Logger.Debug("draft generated",
		zap.Int("chars", len(text)),
		zap.Int("key_findings", len(draft.KeyFindings)),
		zap.Int("citations", len(draft.Citations)))
	return draft, nil
}

// Reviewer is the review stage.
type Reviewer struct {
	llm  llm.Completer
	opts Options
}

// NewReviewer returns a review stage that calls c.
func NewReviewer(c llm.Completer, opts Options) *Reviewer {
	return &Reviewer{llm: c, opts: opts.withDefaults()}
}

// Review rewrites draft into the final summary. Key findings carry over from
// the draft; methodology and implications are folded into the summary text.
func (r *Reviewer) Review(ctx context.Context, draft types.StructuredSummary, fullText string) (types.StructuredSummary, error) {
	user, err := render(reviewPromptTmpl, reviewPromptData{
		Summary:     draft.Summary,
		Findings:    joinFindings(draft.KeyFindings),
		Methodology: draft.Methodology,
		Paper:       truncate(fullText, r.opts.MaxInputChars),
	})
	if err != nil {
		return types.StructuredSummary{}, fmt.Errorf("rendering review prompt: %w", err)
	}

	text, err := r.llm.Complete(ctx, llm.Request{
		System:      reviewSystemPrompt,
		User:        user,
		Temperature: Temperature,
		MaxTokens:   ReviewMaxTokens,
	})
	if err != nil {
		return types.StructuredSummary{}, err
	}

	findings := make([]string, len(draft.KeyFindings))
	copy(findings, draft.KeyFindings)

	final := types.StructuredSummary{
		Summary:      strings.TrimSpace(text),
		KeyFindings:  findings,
		Methodology:  types.IncludedInSummary,
		Implications: types.IncludedInSummary,
		Citations:    []string{},
	}
	r.opts.Logger.Debug("review complete", zap.Int("chars", len(final.Summary)))
	return final, nil
}
