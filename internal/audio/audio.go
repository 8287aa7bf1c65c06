// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audio narrates summaries with a text-to-speech service.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/extract"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrEmptyText is returned when there is nothing to narrate.
var ErrEmptyText = errors.New("audio: empty text")

// maxInputChars is the per-request input limit of the speech endpoint.
const maxInputChars = 4096

// Synthesizer writes narrated audio for text to w.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, w io.Writer) error
}

// OpenAI synthesizes MP3 audio with the OpenAI speech endpoint. Long text is
// split at sentence boundaries and the MP3 streams are concatenated.
type OpenAI struct {
	client openai.Client
	model  string
	voice  string
	logger *zap.Logger
}

// NewOpenAI builds a synthesizer from cfg. baseURL is optional.
func NewOpenAI(cfg types.AudioConfig, baseURL string, logger *zap.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("audio: api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	model, voice := cfg.Model, cfg.Voice
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	return &OpenAI{client: openai.NewClient(opts...), model: model, voice: voice, logger: logger}, nil
}

func (s *OpenAI) Synthesize(ctx context.Context, text string, w io.Writer) error {
	chunks := chunkText(text, maxInputChars)
	if len(chunks) == 0 {
		return ErrEmptyText
	}
	for i, chunk := range chunks {
		if err := s.speak(ctx, chunk, w); err != nil {
			return fmt.Errorf("synthesizing chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	s.logger.Debug("audio synthesized", zap.Int("chunks", len(chunks)), zap.Int("chars", len(text)))
	return nil
}

func (s *OpenAI) speak(ctx context.Context, text string, w io.Writer) error {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speech endpoint returned %d", resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}
	return nil
}

// chunkText groups sentences into pieces of at most limit characters. A
// single sentence longer than limit is split on rune boundaries.
func chunkText(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		n      int
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, sentence := range extract.SplitSentences(text) {
		for _, piece := range splitRunes(sentence, limit) {
			size := len([]rune(piece))
			if n > 0 && n+1+size > limit {
				flush()
			}
			if n > 0 {
				cur.WriteByte(' ')
				n++
			}
			cur.WriteString(piece)
			n += size
		}
	}
	flush()
	return chunks
}

func splitRunes(s string, limit int) []string {
	r := []rune(s)
	if len(r) <= limit {
		return []string{s}
	}
	var out []string
	for len(r) > limit {
		out = append(out, string(r[:limit]))
		r = r[limit:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}
