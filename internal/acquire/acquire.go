// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads papers by arXiv ID, DOI, or URL and records
// their metadata. DOIs are resolved through OpenAlex and CrossRef; landing
// pages are followed once through their citation_pdf_url meta tag.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/search"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Subdirectories of PapersDir.
const (
	RawDir      = "raw"
	MetadataDir = "metadata"
)

// Acquirer downloads papers into cfg.PapersDir.
type Acquirer struct {
	client *http.Client
	cfg    types.AcquisitionConfig
	logger *zap.Logger
}

// New returns an Acquirer. A nil client gets one with cfg.Timeout; a nil
// logger discards output.
func New(client *http.Client, cfg types.AcquisitionConfig, logger *zap.Logger) *Acquirer {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acquirer{client: client, cfg: cfg, logger: logger}
}

// BatchResult holds the outcome of a batch acquisition run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Papers     []*types.Paper
}

// Total returns the total number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any papers failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Acquire resolves a single identifier, downloads the PDF, and writes
// metadata. If the PDF already exists on disk, it skips the download.
// The skipped return value indicates whether the download was skipped.
func (a *Acquirer) Acquire(ctx context.Context, identifier string, w io.Writer) (paper *types.Paper, skipped bool, err error) {
	if w == nil {
		w = io.Discard
	}
	idType, normalized := Classify(identifier)
	if idType == TypeUnknown {
		return nil, false, fmt.Errorf("unrecognized identifier format: %q", identifier)
	}

	slug := Slug(idType, normalized)
	pdfPath := filepath.Join(a.cfg.PapersDir, RawDir, slug+".pdf")
	metaPath := filepath.Join(a.cfg.PapersDir, MetadataDir, slug+".yaml")

	if _, err := os.Stat(pdfPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		p, readErr := readMetadata(metaPath)
		if readErr != nil {
			p = &types.Paper{ID: slug, PDFPath: pdfPath, Source: idType.Source()}
		}
		return p, true, nil
	}

	for _, dir := range []string{
		filepath.Join(a.cfg.PapersDir, RawDir),
		filepath.Join(a.cfg.PapersDir, MetadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	p := &types.Paper{
		ID:      slug,
		PDFPath: pdfPath,
		Source:  idType.Source(),
		Authors: []string{},
	}
	candidates := a.resolve(ctx, idType, normalized, p, w)

	fmt.Fprintf(w, "downloading: %s (%s)\n", slug, idType)

	var errs []error
	for _, u := range candidates {
		final, err := a.download(ctx, u, pdfPath, true)
		if err == nil {
			p.SourceURL = final
			break
		}
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		a.logger.Debug("download candidate failed", zap.String("url", u), zap.Error(err))
		errs = append(errs, err)
	}
	if p.SourceURL == "" {
		return nil, false, fmt.Errorf("downloading %s: %w", slug, errors.Join(errs...))
	}

	if err := writeMetadata(p, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}
	return p, false, nil
}

// resolve fills paper metadata and returns the download URLs to try in
// order. Metadata failures are reported to w and do not stop acquisition.
func (a *Acquirer) resolve(ctx context.Context, idType IdentifierType, normalized string, p *types.Paper, w io.Writer) []string {
	var candidates []string
	add := func(u string) {
		if u == "" {
			return
		}
		for _, c := range candidates {
			if c == u {
				return
			}
		}
		candidates = append(candidates, u)
	}

	switch idType {
	case TypeArxiv:
		if err := a.fetchArxivMetadata(ctx, normalized, p); err != nil {
			fmt.Fprintf(w, "  warning: arXiv metadata fetch failed: %v\n", err)
		}
		add(PDFURL(idType, normalized))

	case TypeDOI:
		p.DOI = normalized
		if oaURL, err := a.resolveOpenAlex(ctx, normalized); err != nil {
			a.logger.Debug("openalex lookup failed", zap.String("doi", normalized), zap.Error(err))
		} else {
			add(oaURL)
		}
		if work, err := a.fetchCrossRef(ctx, normalized); err != nil {
			fmt.Fprintf(w, "  warning: CrossRef metadata fetch failed: %v\n", err)
		} else {
			work.apply(p)
			add(work.pdfURL())
		}
		add(PDFURL(idType, normalized))

	case TypeURL:
		if u, err := url.Parse(normalized); err == nil {
			p.Title = filepath.Base(u.Path)
		}
		add(normalized)
	}
	return candidates
}

// AcquireBatch processes multiple identifiers, printing per-item status
// and returning a summary. It continues after individual failures.
func (a *Acquirer) AcquireBatch(ctx context.Context, identifiers []string, w io.Writer) BatchResult {
	var result BatchResult
	for _, id := range identifiers {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, ctx.Err())
			result.Failed++
			continue
		}
		paper, wasSkipped, err := a.Acquire(ctx, id, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Papers = append(result.Papers, paper)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// fetchArxivMetadata retrieves metadata from the arXiv API.
func (a *Acquirer) fetchArxivMetadata(ctx context.Context, arxivID string, paper *types.Paper) error {
	apiURL := fmt.Sprintf("%s?id_list=%s", arxivAPIBase, url.QueryEscape(arxivID))

	req, err := httputil.NewRequest(ctx, apiURL, a.cfg.UserAgent, "application/atom+xml")
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, a.client, req, a.cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	entries, err := search.ParseFeed(resp.Body)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no entries found for arXiv ID %s", arxivID)
	}

	e := entries[0]
	paper.Title = e.Title
	paper.Abstract = e.Abstract
	paper.Authors = e.Authors
	paper.Date = e.Date
	paper.DOI = e.DOI
	return nil
}

// writeMetadata writes a Paper record to a YAML file.
func writeMetadata(paper *types.Paper, path string) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readMetadata reads a Paper record from a YAML file.
func readMetadata(path string) (*types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var paper types.Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return nil, err
	}
	return &paper, nil
}
