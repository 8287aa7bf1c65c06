// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SearchResult represents a candidate paper returned by an arXiv query.
type SearchResult struct {
	// Identifier is the arXiv ID without version suffix.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Date is the publication or preprint date.
	Date time.Time `json:"date" yaml:"date"`

	// URL is the abstract page link.
	URL string `json:"url" yaml:"url"`

	// PDFURL is the direct PDF link.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// DOI is the journal DOI when the authors registered one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Source identifies which backend found this result.
	Source PaperSource `json:"source" yaml:"source"`
}

// Metadata converts a search hit into summary metadata.
func (r SearchResult) Metadata() PaperMetadata {
	m := PaperMetadata{
		Title:    r.Title,
		Authors:  r.Authors,
		Abstract: r.Abstract,
		DOI:      r.DOI,
		URL:      r.URL,
		Topics:   []string{},
		Source:   r.Source,
	}
	if !r.Date.IsZero() {
		d := r.Date
		m.PublicationDate = &d
	}
	return m
}
