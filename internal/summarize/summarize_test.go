// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/internal/extract"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// --- fake completer ---

type fakeCompleter struct {
	replies []string
	err     error
	reqs    []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	out := f.replies[0]
	f.replies = f.replies[1:]
	return out, nil
}

const draftReply = "Abstract... Methodology: We use a transformer. " +
	"Results: We find that X improves Y by 10%. Implications: ..."

func TestGenerateDraft(t *testing.T) {
	fc := &fakeCompleter{replies: []string{draftReply}}
	w := NewWriter(fc, Options{})

	paper := strings.Repeat("a", 6000) + "TAIL"
	draft, err := w.GenerateDraft(context.Background(), paper)
	require.NoError(t, err)

	require.Len(t, fc.reqs, 1)
	req := fc.reqs[0]
	assert.Equal(t, draftSystemPrompt, req.System)
	assert.InDelta(t, 0.3, req.Temperature, 1e-9)
	assert.Equal(t, 1500, req.MaxTokens)
	assert.Contains(t, req.User, strings.Repeat("a", 5000))
	assert.NotContains(t, req.User, strings.Repeat("a", 5001))
	assert.NotContains(t, req.User, "TAIL")

	assert.Equal(t, draftReply, draft.Summary)
	assert.Equal(t, []string{"Results: We find that X improves Y by 10%."}, draft.KeyFindings)
	assert.Contains(t, draft.Methodology, "transformer")
	assert.Empty(t, draft.Citations)
}

func TestGenerateDraft_ShortPaperSentWhole(t *testing.T) {
	fc := &fakeCompleter{replies: []string{"A draft about a small paper with nothing special."}}
	w := NewWriter(fc, Options{})

	_, err := w.GenerateDraft(context.Background(), "tiny paper")
	require.NoError(t, err)
	assert.Contains(t, fc.reqs[0].User, "tiny paper")
}

func TestGenerateDraft_Policy(t *testing.T) {
	ex, err := extract.New(extract.PolicyIndicator)
	require.NoError(t, err)
	fc := &fakeCompleter{replies: []string{"We propose a new algorithm for parsing. Results show a 5% gain in accuracy."}}
	w := NewWriter(fc, Options{Extractor: ex})

	draft, err := w.GenerateDraft(context.Background(), "paper")
	require.NoError(t, err)
	assert.Equal(t, "We propose a new algorithm for parsing.", draft.Methodology)
}

func TestGenerateDraft_GenerationError(t *testing.T) {
	cause := &llm.GenerationError{Provider: "openai", Model: "m", Err: errors.New("rate limited")}
	w := NewWriter(&fakeCompleter{err: cause}, Options{})

	_, err := w.GenerateDraft(context.Background(), "paper")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrGenerationFailed)
	assert.Same(t, cause, err)
}

func TestReview(t *testing.T) {
	draft := types.StructuredSummary{
		Summary:      "Draft narrative.",
		KeyFindings:  []string{"Finding number one is long", "Finding number two is long"},
		Methodology:  "Methodology: surveys",
		Implications: "Implications: many",
		Citations:    []string{"quoted"},
	}
	fc := &fakeCompleter{replies: []string{"\n  Final plain summary.\n\nSecond paragraph.  \n"}}
	r := NewReviewer(fc, Options{})

	final, err := r.Review(context.Background(), draft, "Paper body text")
	require.NoError(t, err)

	require.Len(t, fc.reqs, 1)
	req := fc.reqs[0]
	assert.Equal(t, reviewSystemPrompt, req.System)
	assert.InDelta(t, 0.3, req.Temperature, 1e-9)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.Contains(t, req.User, "Draft narrative.")
	assert.Contains(t, req.User, "Finding number one is long, Finding number two is long")
	assert.Contains(t, req.User, "Methodology: surveys")
	assert.Contains(t, req.User, "Paper body text")

	assert.Equal(t, "Final plain summary.\n\nSecond paragraph.", final.Summary)
	assert.Equal(t, draft.KeyFindings, final.KeyFindings)
	assert.Equal(t, types.IncludedInSummary, final.Methodology)
	assert.Equal(t, types.IncludedInSummary, final.Implications)
	require.NotNil(t, final.Citations)
	assert.Empty(t, final.Citations)

	// The final findings must not alias the draft's backing array.
	final.KeyFindings[0] = "changed"
	assert.Equal(t, "Finding number one is long", draft.KeyFindings[0])
}

func TestReview_EmptyDraftFindings(t *testing.T) {
	fc := &fakeCompleter{replies: []string{"Final."}}
	r := NewReviewer(fc, Options{})

	final, err := r.Review(context.Background(), types.StructuredSummary{Summary: "d"}, "paper")
	require.NoError(t, err)
	require.NotNil(t, final.KeyFindings)
	assert.Empty(t, final.KeyFindings)
}

func TestReview_GenerationError(t *testing.T) {
	cause := &llm.GenerationError{Provider: "openai", Model: "m", Err: context.DeadlineExceeded}
	r := NewReviewer(&fakeCompleter{err: cause}, Options{})

	_, err := r.Review(context.Background(), types.StructuredSummary{}, "paper")
	assert.ErrorIs(t, err, llm.ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo wörld", 4, "héll"},
		{"日本語テキスト", 3, "日本語"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got)
		assert.True(t, utf8.ValidString(got))
	}
}
