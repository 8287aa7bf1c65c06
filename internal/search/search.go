// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the arXiv API and returns candidate papers.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Sort criteria accepted by the arXiv API.
const (
	SortRelevance       = "relevance"
	SortLastUpdatedDate = "lastUpdatedDate"
	SortSubmittedDate   = "submittedDate"
)

// Sort orders accepted by the arXiv API.
const (
	OrderAscending  = "ascending"
	OrderDescending = "descending"
)

// DefaultMaxResults is used when a query does not set MaxResults.
const DefaultMaxResults = 10

// Query holds the search parameters. Zero years disable the date filter.
type Query struct {
	Text       string
	MaxResults int
	SortBy     string
	SortOrder  string
	YearFrom   int
	YearTo     int
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == ""
}

// normalized fills defaults and replaces unknown sort values with the
// relevance/descending defaults.
func (q Query) normalized(defaultMax int) Query {
	if q.MaxResults <= 0 {
		q.MaxResults = defaultMax
	}
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultMaxResults
	}
	switch q.SortBy {
	case SortRelevance, SortLastUpdatedDate, SortSubmittedDate:
	default:
		q.SortBy = SortRelevance
	}
	switch q.SortOrder {
	case OrderAscending, OrderDescending:
	default:
		q.SortOrder = OrderDescending
	}
	return q
}

// searchQuery builds the search_query value: the free text plus an
// optional submittedDate range.
func (q Query) searchQuery() string {
	text := strings.TrimSpace(q.Text)
	switch {
	case q.YearFrom > 0 && q.YearTo > 0:
		return fmt.Sprintf("%s AND submittedDate:[%04d0101 TO %04d1231]", text, q.YearFrom, q.YearTo)
	case q.YearFrom > 0:
		return fmt.Sprintf("%s AND submittedDate:[%04d0101 TO 99991231]", text, q.YearFrom)
	case q.YearTo > 0:
		return fmt.Sprintf("%s AND submittedDate:[00010101 TO %04d1231]", text, q.YearTo)
	default:
		return text
	}
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.SearchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-12s  %-60s  %-20s  %s\n", "ID", "Title", "Authors", "Year")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range results {
		year := ""
		if !r.Date.IsZero() {
			year = fmt.Sprintf("%d", r.Date.Year())
		}
		fmt.Fprintf(w, "%-12s  %-60s  %-20s  %s\n",
			r.Identifier, truncate(r.Title, 60), formatAuthors(r.Authors), year)
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.SearchResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
