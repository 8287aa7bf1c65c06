// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-digest/internal/httputil"
)

// ErrNotPDF is returned when a download is neither served as application/pdf
// nor starts with the PDF magic bytes.
var ErrNotPDF = errors.New("response is not a PDF")

const (
	pdfMagic     = "%PDF"
	acceptHeader = "application/pdf, text/html;q=0.9, */*;q=0.8"
)

// download fetches rawURL to destPath using a temporary file and returns the
// final URL after redirects. When followLanding is set and the server answers
// with an HTML page carrying a citation_pdf_url meta tag, that link is
// downloaded instead.
func (a *Acquirer) download(ctx context.Context, rawURL, destPath string, followLanding bool) (string, error) {
	req, err := httputil.NewRequest(ctx, rawURL, a.cfg.UserAgent, acceptHeader)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, a.client, req, a.cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	ctype := strings.ToLower(resp.Header.Get("Content-Type"))
	br := bufio.NewReader(resp.Body)
	head, _ := br.Peek(len(pdfMagic))

	if bytes.HasPrefix(head, []byte(pdfMagic)) || strings.Contains(ctype, "application/pdf") {
		if err := writeAtomic(destPath, br); err != nil {
			return "", err
		}
		return finalURL, nil
	}

	if followLanding && strings.Contains(ctype, "text/html") {
		link, err := landingPDFLink(br, finalURL)
		if err != nil {
			return "", err
		}
		return a.download(ctx, link, destPath, false)
	}

	return "", fmt.Errorf("%s: %w", finalURL, ErrNotPDF)
}

// landingPDFLink reads an HTML landing page and returns the absolute URL of
// its citation_pdf_url meta tag.
func landingPDFLink(r io.Reader, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing landing page: %w", err)
	}

	href, ok := doc.Find(`meta[name="citation_pdf_url"]`).First().Attr("content")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", fmt.Errorf("%s: landing page has no PDF link: %w", pageURL, ErrNotPDF)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return href, nil
	}
	ref, err := base.Parse(href)
	if err != nil {
		return "", fmt.Errorf("resolving PDF link %q: %w", href, err)
	}
	return ref.String(), nil
}

// writeAtomic copies r to destPath through a temporary file in the same
// directory, renaming on success.
func writeAtomic(destPath string, r io.Reader) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
