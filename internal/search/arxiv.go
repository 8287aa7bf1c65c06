// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const arxivPDFBase = "https://arxiv.org/pdf/"

// ErrNotFound is returned by Lookup when arXiv has no entry for an ID.
var ErrNotFound = errors.New("arXiv entry not found")

// Client queries the arXiv API.
type Client struct {
	http *http.Client
	cfg  types.SearchConfig
}

// NewClient returns a client using hc for requests.
func NewClient(hc *http.Client, cfg types.SearchConfig) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{http: hc, cfg: cfg}
}

// Search runs q against arXiv and returns results in the API's order.
func (c *Client) Search(ctx context.Context, q Query) ([]types.SearchResult, error) {
	if q.IsEmpty() {
		return nil, fmt.Errorf("query is empty")
	}
	q = q.normalized(c.cfg.MaxResults)

	params := url.Values{}
	params.Set("search_query", q.searchQuery())
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(q.MaxResults))
	params.Set("sortBy", q.SortBy)
	params.Set("sortOrder", q.SortOrder)

	return c.fetch(ctx, params)
}

// Lookup fetches the entry for a single arXiv ID.
func (c *Client) Lookup(ctx context.Context, id string) (*types.SearchResult, error) {
	params := url.Values{}
	params.Set("id_list", id)
	params.Set("max_results", "1")

	results, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return &results[0], nil
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]types.SearchResult, error) {
	req, err := httputil.NewRequest(ctx, arxivAPIBase+"?"+params.Encode(), c.cfg.UserAgent, "application/atom+xml")
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}
	return ParseFeed(resp.Body)
}

// ParseFeed converts an arXiv Atom feed into search results. Entries without
// an arXiv abstract URL (such as API error entries) are skipped.
func ParseFeed(r io.Reader) ([]types.SearchResult, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(feed.Items))
	for _, item := range feed.Items {
		id := extractArxivID(item.GUID)
		if id == "" {
			continue
		}

		res := types.SearchResult{
			Identifier: id,
			Title:      collapseSpace(item.Title),
			Abstract:   collapseSpace(item.Description),
			URL:        item.Link,
			PDFURL:     arxivPDFBase + id,
			DOI:        extensionValue(item, "arxiv", "doi"),
			Source:     types.SourceArxiv,
			Authors:    []string{},
		}
		if res.URL == "" {
			res.URL = item.GUID
		}
		for _, a := range item.Authors {
			if a != nil && strings.TrimSpace(a.Name) != "" {
				res.Authors = append(res.Authors, strings.TrimSpace(a.Name))
			}
		}
		if item.PublishedParsed != nil {
			res.Date = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			res.Date = item.UpdatedParsed.UTC()
		}
		results = append(results, res)
	}
	return results, nil
}

func extensionValue(item *gofeed.Item, ns, name string) string {
	if item.Extensions == nil {
		return ""
	}
	for _, e := range item.Extensions[ns][name] {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

// collapseSpace folds the line breaks arXiv leaves in titles and abstracts.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractArxivID pulls the arXiv ID from an entry URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
