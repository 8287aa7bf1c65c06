// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-digest/internal/classify"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [inputs...]",
	Short: "Summarize PDFs, URLs, DOIs, or arXiv IDs",
	Long: `Summarize runs the full pipeline on each input: local PDF files are read
in place, while URLs, DOIs, and arXiv IDs are downloaded first. Each paper
gets a draft summary that a second model pass reviews and tightens. Audio
narration is written to the artifact store unless --no-audio is set.

Papers are processed concurrently, up to --concurrency at a time.

With --text the inputs are plain text files, such as the output of convert.
Only the draft and review stages run and nothing is stored.`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("topics", "", "comma-separated topics to match against each paper")
	summarizeCmd.Flags().Int("concurrency", 2, "number of papers processed at once")
	summarizeCmd.Flags().String("format", "text", "output format: text, json, or yaml")
	summarizeCmd.Flags().Bool("no-audio", false, "skip audio narration")
	summarizeCmd.Flags().Bool("text", false, "inputs are plain text files; run only the draft and review stages")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files, URLs, DOIs, or arXiv IDs")
	}
	topicsFlag, _ := cmd.Flags().GetString("topics")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	format, _ := cmd.Flags().GetString("format")
	noAudio, _ := cmd.Flags().GetBool("no-audio")
	textOnly, _ := cmd.Flags().GetBool("text")

	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q: use text, json, or yaml", format)
	}
	if noAudio || textOnly {
		cfg.Audio.Enabled = false
	}

	if textOnly {
		return runSummarizeText(cmd.Context(), args, concurrency, format)
	}

	topics := classify.ParseList(topicsFlag)
	inputs := make([]pipeline.Input, len(args))
	for i, arg := range args {
		in, err := pipeline.InputFor(arg, topics)
		if err != nil {
			return err
		}
		inputs[i] = in
	}

	ctx := cmd.Context()
	st, arts, closeStores, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	p, err := newPipeline(st, arts)
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		failed  int
		results = make([]*types.PaperSummary, len(inputs))
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, in := range inputs {
		g.Go(func() error {
			summary, err := p.Process(gCtx, uuid.NewString(), in)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", args[i], err)
				return nil
			}
			results[i] = summary
			fmt.Fprintf(os.Stderr, "summarized: %s (%s)\n", args[i], summary.ID)
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(os.Stderr, "\nBatch summary: %d summarized, %d failed (total: %d)\n",
		len(inputs)-failed, failed, len(inputs))

	var done []*types.PaperSummary
	for _, s := range results {
		if s != nil {
			done = append(done, s)
		}
	}
	if err := writeSummaries(os.Stdout, done, format); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed summarization", failed)
	}
	return nil
}

// textSummarizer runs the draft and review stages on extracted text.
type textSummarizer interface {
	Summarize(ctx context.Context, text string) (types.StructuredSummary, error)
}

func runSummarizeText(ctx context.Context, paths []string, concurrency int, format string) error {
	st, arts, closeStores, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores()

	p, err := newPipeline(st, arts)
	if err != nil {
		return err
	}

	out, failed := summarizeTexts(ctx, p, paths, concurrency, os.Stderr)
	if err := writeExtractions(os.Stdout, out, format); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed summarization", failed)
	}
	return nil
}

// summarizeTexts summarizes each text file, printing per-file status to
// progress. Results keep input order; failed files are left out.
func summarizeTexts(ctx context.Context, s textSummarizer, paths []string, concurrency int, progress io.Writer) ([]extraction, int) {
	var (
		mu      sync.Mutex
		failed  int
		results = make([]*extraction, len(paths))
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, path := range paths {
		g.Go(func() error {
			text, err := readText(path)
			if err == nil && text == "" {
				err = errors.New("no text")
			}
			var fields types.StructuredSummary
			if err == nil {
				fields, err = s.Summarize(gCtx, text)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				fmt.Fprintf(progress, "failed:  %s (%v)\n", path, err)
				return nil
			}
			results[i] = &extraction{File: filepath.Base(path), Fields: fields}
			fmt.Fprintf(progress, "summarized: %s\n", path)
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(progress, "\nBatch summary: %d summarized, %d failed (total: %d)\n",
		len(paths)-failed, failed, len(paths))

	out := make([]extraction, 0, len(paths))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, failed
}

func writeExtractions(w io.Writer, out []extraction, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	}
	for i, e := range out {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "# %s\n\n%s\n", e.File, e.Fields.Summary)
		if len(e.Fields.KeyFindings) > 0 {
			fmt.Fprintln(w, "\nKey findings:")
			for _, f := range e.Fields.KeyFindings {
				fmt.Fprintf(w, "  - %s\n", f)
			}
		}
	}
	return nil
}

func writeSummaries(w io.Writer, summaries []*types.PaperSummary, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summaries); err != nil {
			return err
		}
		return enc.Close()
	}
	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeSummaryText(w, s)
	}
	return nil
}

func writeSummaryText(w io.Writer, s *types.PaperSummary) {
	fmt.Fprintf(w, "# %s\n", s.Metadata.Title)
	if len(s.Metadata.Authors) > 0 {
		fmt.Fprintf(w, "%s\n", strings.Join(s.Metadata.Authors, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", s.Summary)
	if len(s.KeyFindings) > 0 {
		fmt.Fprintln(w, "\nKey findings:")
		for _, f := range s.KeyFindings {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if len(s.Metadata.Topics) > 0 {
		fmt.Fprintf(w, "\nTopics: %s\n", strings.Join(s.Metadata.Topics, ", "))
	}
	if s.AudioPath != "" {
		fmt.Fprintf(w, "Audio: %s\n", s.AudioPath)
	}
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	fmt.Fprintf(w, "Summary ID: %s\n", s.ID)
}
