// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/acquire"
	"github.com/pdiddy/paper-digest/internal/artifact"
	"github.com/pdiddy/paper-digest/internal/audio"
	"github.com/pdiddy/paper-digest/internal/convert"
	"github.com/pdiddy/paper-digest/internal/extract"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/internal/summarize"
)

// newExtractor returns the configured field extraction policy.
func newExtractor() (extract.Extractor, error) {
	policy, err := extract.ParsePolicy(cfg.Summarize.Policy)
	if err != nil {
		return nil, err
	}
	return extract.New(policy)
}

// newSynthesizer returns nil when audio is disabled or cannot be set up;
// summaries are then produced without narration.
func newSynthesizer() audio.Synthesizer {
	if !cfg.Audio.Enabled {
		return nil
	}
	s, err := audio.NewOpenAI(cfg.Audio, "", logger)
	if err != nil {
		logger.Warn("audio disabled", zap.Error(err))
		return nil
	}
	return s
}

// newPipeline wires every stage from cfg.
func newPipeline(st store.Store, arts artifact.Store) (*pipeline.Pipeline, error) {
	completer, err := llm.New(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	fields, err := newExtractor()
	if err != nil {
		return nil, err
	}
	text, err := convert.New(cfg.Conversion)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Config{
		Completer: completer,
		Summarize: summarize.Options{
			MaxInputChars: cfg.Summarize.MaxInputChars,
			Extractor:     fields,
			Logger:        logger,
		},
		Extractor:   text,
		Acquirer:    acquire.New(nil, cfg.Acquisition, logger),
		Artifacts:   arts,
		Store:       st,
		Synthesizer: newSynthesizer(),
		Logger:      logger,
	})
}

// openStores opens the task store and the artifact store. release closes
// both.
func openStores(ctx context.Context) (st store.Store, arts artifact.Store, release func(), err error) {
	st, err = store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	arts, err = artifact.Open(ctx, cfg.Artifacts)
	if err != nil {
		st.Close()
		return nil, nil, nil, fmt.Errorf("opening %s artifact store: %w", cfg.Artifacts.Backend, err)
	}
	release = func() {
		if err := arts.Close(); err != nil {
			logger.Warn("closing artifact store", zap.Error(err))
		}
		if err := st.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}
	return st, arts, release, nil
}
