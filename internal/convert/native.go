// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Native extracts text in process with github.com/ledongthuc/pdf.
type Native struct{}

// ExtractText reads every page of the PDF at path.
func (Native) ExtractText(ctx context.Context, path string) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		pages = append(pages, t)
	}
	return joinPages(pages), nil
}

// Metadata reads the PDF document information dictionary and sniffs the
// abstract from text. Title defaults to "Unknown Title"; unreadable
// metadata leaves the remaining fields empty.
func Metadata(path, text string) (m types.PaperMetadata) {
	m = types.PaperMetadata{
		Title:    "Unknown Title",
		Authors:  []string{},
		Abstract: Abstract(text),
		Topics:   []string{},
	}

	defer func() {
		_ = recover()
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return m
	}
	defer f.Close()

	info := r.Trailer().Key("Info")
	if title := strings.TrimSpace(info.Key("Title").Text()); title != "" {
		m.Title = title
	}
	if author := strings.TrimSpace(info.Key("Author").Text()); author != "" {
		for _, a := range strings.Split(author, ",") {
			if a = strings.TrimSpace(a); a != "" {
				m.Authors = append(m.Authors, a)
			}
		}
	}
	if d, ok := parsePDFDate(info.Key("CreationDate").Text()); ok {
		m.PublicationDate = &d
	}
	return m
}

// parsePDFDate parses the date portion of a PDF date string
// ("D:YYYYMMDDHHmmSS..."). Missing month and day default to the first.
func parsePDFDate(s string) (time.Time, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "D:")
	for _, layout := range []string{"20060102150405", "20060102", "200601", "2006"} {
		if len(s) < len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s[:len(layout)]); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Abstract start and end markers, matched case-sensitively in order.
var (
	abstractStart = []string{"Abstract", "ABSTRACT", "Summary", "SUMMARY"}
	abstractEnd   = []string{"Introduction", "INTRODUCTION", "Keywords", "KEYWORDS"}
)

// Abstract returns the text between the first abstract marker and the
// nearest following end marker, trimmed of whitespace and leading
// punctuation. It returns "" when no start marker appears.
func Abstract(text string) string {
	for _, marker := range abstractStart {
		idx := strings.Index(text, marker)
		if idx < 0 {
			continue
		}
		start := idx + len(marker)
		end := len(text)
		for _, em := range abstractEnd {
			if j := strings.Index(text[start:], em); j >= 0 && start+j < end {
				end = start + j
			}
		}
		return strings.TrimSpace(strings.TrimLeft(text[start:end], ":.-\u2013\u2014 \t\r\n"))
	}
	return ""
}
