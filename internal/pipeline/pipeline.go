// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline turns a submitted paper into a reviewed summary: it
// resolves the input to a local PDF, extracts its text, runs the draft and
// review stages, narrates the result, and records every stage transition
// of the task in the store.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/acquire"
	"github.com/pdiddy/paper-digest/internal/artifact"
	"github.com/pdiddy/paper-digest/internal/audio"
	"github.com/pdiddy/paper-digest/internal/classify"
	"github.com/pdiddy/paper-digest/internal/convert"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// ErrEmptyText is returned when a PDF yields no text.
var ErrEmptyText = errors.New("could not extract text from the PDF")

// Input describes what to summarize.
type Input struct {
	// Source selects how Ref is interpreted.
	Source types.PaperSource

	// Ref is an artifact key for uploads, otherwise a URL, DOI, or arXiv ID.
	Ref string

	// Path, when set, names a PDF on the local filesystem and takes
	// precedence over Ref. Used by the CLI.
	Path string

	// Topics are candidate topics matched against the paper text.
	Topics []string
}

// InputFor interprets a CLI argument: an existing file, then an arXiv ID,
// DOI, or URL.
func InputFor(ref string, topics []string) (Input, error) {
	if fi, err := os.Stat(ref); err == nil && !fi.IsDir() {
		return Input{Source: types.SourceUpload, Ref: ref, Path: ref, Topics: topics}, nil
	}
	idType, normalized := acquire.Classify(ref)
	if idType == acquire.TypeUnknown {
		return Input{}, fmt.Errorf("unrecognized input %q: not a file, arXiv ID, DOI, or URL", ref)
	}
	return Input{Source: idType.Source(), Ref: normalized, Topics: topics}, nil
}

// Acquirer downloads a paper by arXiv ID, DOI, or URL.
type Acquirer interface {
	Acquire(ctx context.Context, identifier string, w io.Writer) (*types.Paper, bool, error)
}

// Config wires a Pipeline. Completer, Extractor, and Store are required.
type Config struct {
	Completer llm.Completer
	Summarize summarize.Options

	Extractor convert.TextExtractor
	Acquirer  Acquirer
	Artifacts artifact.Store
	Store     store.Store

	// Synthesizer narrates finished summaries. Nil disables audio.
	Synthesizer audio.Synthesizer

	Logger *zap.Logger
}

// Pipeline runs papers through extraction, drafting, review, and narration.
type Pipeline struct {
	writer    *summarize.Writer
	reviewer  *summarize.Reviewer
	extractor convert.TextExtractor
	acquirer  Acquirer
	artifacts artifact.Store
	store     store.Store
	synth     audio.Synthesizer
	logger    *zap.Logger
	now       func() time.Time
}

// New validates cfg and returns a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Completer == nil {
		return nil, errors.New("pipeline: completer is required")
	}
	if cfg.Extractor == nil {
		return nil, errors.New("pipeline: text extractor is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Summarize.Logger == nil {
		cfg.Summarize.Logger = cfg.Logger
	}
	return &Pipeline{
		writer:    summarize.NewWriter(cfg.Completer, cfg.Summarize),
		reviewer:  summarize.NewReviewer(cfg.Completer, cfg.Summarize),
		extractor: cfg.Extractor,
		acquirer:  cfg.Acquirer,
		artifacts: cfg.Artifacts,
		store:     cfg.Store,
		synth:     cfg.Synthesizer,
		logger:    cfg.Logger,
		now:       time.Now,
	}, nil
}

// Summarize runs the draft stage then the review stage on text and returns
// the reviewed summary. The draft is not returned.
func (p *Pipeline) Summarize(ctx context.Context, text string) (types.StructuredSummary, error) {
	return p.summarize(ctx, text, func(types.Stage) error { return nil })
}

func (p *Pipeline) summarize(ctx context.Context, text string, enter func(types.Stage) error) (types.StructuredSummary, error) {
	if err := enter(types.StageDrafting); err != nil {
		return types.StructuredSummary{}, err
	}
	start := time.Now()
	draft, err := p.writer.GenerateDraft(ctx, text)
	stageDuration.WithLabelValues(string(types.StageDrafting)).Observe(time.Since(start).Seconds())
	if err != nil {
		return types.StructuredSummary{}, fmt.Errorf("generating draft: %w", err)
	}

	if err := enter(types.StageReviewing); err != nil {
		return types.StructuredSummary{}, err
	}
	start = time.Now()
	final, err := p.reviewer.Review(ctx, draft, text)
	stageDuration.WithLabelValues(string(types.StageReviewing)).Observe(time.Since(start).Seconds())
	if err != nil {
		return types.StructuredSummary{}, fmt.Errorf("reviewing draft: %w", err)
	}
	return final, nil
}

// Process runs task taskID to completion. The task is created if the store
// does not have it. On failure the task is marked failed with the error
// message and the error is returned.
func (p *Pipeline) Process(ctx context.Context, taskID string, in Input) (*types.PaperSummary, error) {
	task, err := p.store.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		now := p.now().UTC()
		task = &types.Task{ID: taskID, Source: in.Source, Input: in.Ref, Topics: in.Topics, CreatedAt: now}
	} else if err != nil {
		return nil, fmt.Errorf("loading task %s: %w", taskID, err)
	}

	task.Status = types.TaskProcessing
	if err := p.transition(ctx, task, types.StageReceived); err != nil {
		return nil, err
	}

	summary, err := p.run(ctx, task, in)
	if err != nil {
		p.fail(task, err)
		return nil, err
	}

	task.Status = types.TaskCompleted
	task.SummaryID = summary.ID
	if err := p.transition(ctx, task, types.StageDone); err != nil {
		return nil, err
	}
	tasksTotal.WithLabelValues(string(types.TaskCompleted)).Inc()
	p.logger.Info("task completed",
		zap.String("task_id", task.ID),
		zap.String("summary_id", summary.ID),
		zap.Int("warnings", len(summary.Warnings)))
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, task *types.Task, in Input) (*types.PaperSummary, error) {
	start := time.Now()
	pdfPath, meta, cleanup, err := p.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	text, err := p.extractor.ExtractText(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	stageDuration.WithLabelValues(string(types.StageReceived)).Observe(time.Since(start).Seconds())

	if meta == nil {
		m := convert.Metadata(pdfPath, text)
		m.Source = in.Source
		meta = &m
	} else {
		fillFromPDF(meta, pdfPath, text)
	}
	meta.Topics = classify.Topics(text, in.Topics)

	final, err := p.summarize(ctx, text, func(s types.Stage) error {
		return p.transition(ctx, task, s)
	})
	if err != nil {
		return nil, err
	}

	summary := &types.PaperSummary{
		ID:                uuid.NewString(),
		PaperID:           task.ID,
		Metadata:          *meta,
		StructuredSummary: final,
		CreatedAt:         p.now().UTC(),
	}
	p.narrate(ctx, summary)

	if err := p.store.PutSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("saving summary: %w", err)
	}
	return summary, nil
}

// resolve returns a local PDF path for in, metadata when the source
// provides it, and a cleanup func that is always non-nil on success.
func (p *Pipeline) resolve(ctx context.Context, in Input) (string, *types.PaperMetadata, func(), error) {
	noop := func() {}
	if in.Path != "" {
		return in.Path, nil, noop, nil
	}

	switch in.Source {
	case types.SourceUpload:
		if p.artifacts == nil {
			return "", nil, nil, errors.New("no artifact store configured for uploads")
		}
		path, cleanup, err := artifact.LocalPath(ctx, p.artifacts, in.Ref)
		if err != nil {
			return "", nil, nil, fmt.Errorf("opening upload %s: %w", in.Ref, err)
		}
		return path, nil, cleanup, nil

	case types.SourceURL, types.SourceDOI, types.SourceArxiv:
		if p.acquirer == nil {
			return "", nil, nil, errors.New("no acquirer configured")
		}
		ref := in.Ref
		if in.Source == types.SourceDOI {
			doi, ok := acquire.NormalizeDOI(ref)
			if !ok {
				return "", nil, nil, fmt.Errorf("invalid DOI %q", in.Ref)
			}
			ref = doi
		}
		paper, _, err := p.acquirer.Acquire(ctx, ref, io.Discard)
		if err != nil {
			return "", nil, nil, fmt.Errorf("acquiring %s: %w", in.Ref, err)
		}
		meta := paper.Metadata(nil)
		if meta.Source == "" {
			meta.Source = in.Source
		}
		return paper.PDFPath, &meta, noop, nil

	default:
		return "", nil, nil, fmt.Errorf("unsupported source %q", in.Source)
	}
}

// fillFromPDF completes metadata the acquisition source left blank.
func fillFromPDF(meta *types.PaperMetadata, pdfPath, text string) {
	if meta.Title != "" && meta.Abstract != "" && len(meta.Authors) > 0 {
		return
	}
	fromPDF := convert.Metadata(pdfPath, text)
	if meta.Title == "" {
		meta.Title = fromPDF.Title
	}
	if meta.Abstract == "" {
		meta.Abstract = fromPDF.Abstract
	}
	if len(meta.Authors) == 0 {
		meta.Authors = fromPDF.Authors
	}
	if meta.PublicationDate == nil {
		meta.PublicationDate = fromPDF.PublicationDate
	}
}

// narrate synthesizes audio for the summary. Failures become warnings.
func (p *Pipeline) narrate(ctx context.Context, summary *types.PaperSummary) {
	if p.synth == nil || p.artifacts == nil {
		return
	}
	var buf bytes.Buffer
	if err := p.synth.Synthesize(ctx, summary.Summary, &buf); err != nil {
		p.warn(summary, "audio synthesis failed", err)
		return
	}
	key := artifact.AudioKey(summary.ID)
	if err := p.artifacts.Put(ctx, key, &buf); err != nil {
		p.warn(summary, "saving audio failed", err)
		return
	}
	summary.AudioPath = key
}

func (p *Pipeline) warn(summary *types.PaperSummary, msg string, err error) {
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: %v", msg, err))
	p.logger.Warn(msg, zap.String("summary_id", summary.ID), zap.Error(err))
}

func (p *Pipeline) transition(ctx context.Context, task *types.Task, stage types.Stage) error {
	task.Stage = stage
	task.UpdatedAt = p.now().UTC()
	if err := p.store.PutTask(ctx, task); err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	p.logger.Debug("task stage", zap.String("task_id", task.ID), zap.String("stage", string(stage)))
	return nil
}

// fail records err on the task. It uses a fresh context so that a
// cancelled run is still recorded.
func (p *Pipeline) fail(task *types.Task, err error) {
	tasksTotal.WithLabelValues(string(types.TaskFailed)).Inc()
	task.Status = types.TaskFailed
	task.Message = err.Error()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if putErr := p.transition(ctx, task, types.StageFailed); putErr != nil {
		p.logger.Error("recording task failure", zap.String("task_id", task.ID), zap.Error(putErr))
	}
	p.logger.Warn("task failed", zap.String("task_id", task.ID), zap.Error(err))
}
