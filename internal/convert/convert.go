// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert extracts plain text from PDF files with pluggable
// backends: an in-process parser, poppler's pdftotext, and the markitdown
// container image.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-digest/internal/container"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// textDir is the subdirectory under the papers base for extracted text.
const textDir = "text"

// pageSeparator joins the text of consecutive pages.
const pageSeparator = "\n\n"

// TextExtractor turns a PDF file into plain text. An unreadable PDF is an
// error; a readable PDF without text yields an empty string.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// New returns the extractor selected by cfg.Backend. The empty backend
// selects the native parser.
func New(cfg types.ConversionConfig) (TextExtractor, error) {
	switch cfg.Backend {
	case types.BackendNative, "":
		return Native{}, nil
	case types.BackendPdftotext:
		return NewPdftotext("")
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewMarkitdownConverter(rt)
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", cfg.Backend)
	}
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of papers processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any papers failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertPaths extracts each PDF into <papersDir>/text/<name>.txt, printing
// per-file status to w. Existing outputs are skipped. Empty extractions
// count as failures.
func ConvertPaths(ctx context.Context, x TextExtractor, pdfPaths []string, papersDir string, w io.Writer) BatchResult {
	var result BatchResult
	outDir := filepath.Join(papersDir, textDir)

	for _, p := range pdfPaths {
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		outPath := filepath.Join(outDir, base+".txt")

		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
			result.Skipped++
			continue
		}
		if err := convertOne(ctx, x, p, outPath); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "converted: %s\n", base)
		result.Converted++
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

func convertOne(ctx context.Context, x TextExtractor, pdfPath, outPath string) error {
	text, err := x.ExtractText(ctx, pdfPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text extracted")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(text), 0o644)
}

// joinPages trims each page and joins the non-empty ones.
func joinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, pageSeparator)
}
