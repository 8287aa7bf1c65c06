// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// unknownTitle is used when CrossRef returns a work without a title.
const unknownTitle = "Unknown Title"

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI       string           `json:"DOI"`
	URL       string           `json:"URL"`
	Title     []string         `json:"title"`
	Abstract  string           `json:"abstract"`
	Author    []crossrefAuthor `json:"author"`
	Published crossrefDate     `json:"published"`
	Created   crossrefDate     `json:"created"`
	Link      []crossrefLink   `json:"link"`
	Resource  struct {
		Primary struct {
			URL string `json:"URL"`
		} `json:"primary"`
	} `json:"resource"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}

// fetchCrossRef retrieves the CrossRef work record for a DOI.
func (a *Acquirer) fetchCrossRef(ctx context.Context, doi string) (*crossrefWork, error) {
	apiURL := crossrefAPIBase + doi
	if a.cfg.Mailto != "" {
		apiURL += "?mailto=" + url.QueryEscape(a.cfg.Mailto)
	}

	req, err := httputil.NewRequest(ctx, apiURL, a.cfg.UserAgent, "application/json")
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, a.client, req, a.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return &cr.Message, nil
}

// pdfURL picks the most direct PDF location: a link declared as
// application/pdf, then a primary resource ending in .pdf, then the
// work's landing URL.
func (w *crossrefWork) pdfURL() string {
	for _, l := range w.Link {
		if strings.EqualFold(strings.TrimSpace(l.ContentType), "application/pdf") && l.URL != "" {
			return l.URL
		}
	}
	if p := w.Resource.Primary.URL; strings.HasSuffix(strings.ToLower(p), ".pdf") {
		return p
	}
	return w.URL
}

// apply copies the work's metadata onto paper.
func (w *crossrefWork) apply(paper *types.Paper) {
	paper.Title = unknownTitle
	if len(w.Title) > 0 && strings.TrimSpace(w.Title[0]) != "" {
		paper.Title = strings.TrimSpace(w.Title[0])
	}
	paper.Abstract = strings.TrimSpace(w.Abstract)
	if w.DOI != "" {
		paper.DOI = w.DOI
	}

	paper.Authors = paper.Authors[:0]
	for _, au := range w.Author {
		name := strings.TrimSpace(au.Given + " " + au.Family)
		if name != "" {
			paper.Authors = append(paper.Authors, name)
		}
	}

	if d, ok := w.Published.time(); ok {
		paper.Date = d
	} else if d, ok := w.Created.time(); ok {
		paper.Date = d
	}
}

// time converts the first date-parts entry. Missing month or day default
// to January and the first.
func (d crossrefDate) time() (time.Time, bool) {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return time.Time{}, false
	}
	parts := d.DateParts[0]
	month, day := 1, 1
	if len(parts) > 1 {
		month = parts[1]
	}
	if len(parts) > 2 {
		day = parts[2]
	}
	return time.Date(parts[0], time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
