// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper holds metadata and file paths for an acquired paper: source URL,
// local PDF path, title, authors, date, and abstract.
type Paper struct {
	// ID is a slug derived from the paper identifier (e.g. "2301.07041").
	ID string `json:"id" yaml:"id"`

	// SourceURL is the URL from which the paper was downloaded.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Date is the publication or preprint date.
	Date time.Time `json:"date" yaml:"date"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// DOI is set for papers resolved through CrossRef.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Source identifies how the PDF was obtained.
	Source PaperSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// Metadata converts the acquisition record into summary metadata.
func (p *Paper) Metadata(topics []string) PaperMetadata {
	m := PaperMetadata{
		Title:    p.Title,
		Authors:  p.Authors,
		Abstract: p.Abstract,
		DOI:      p.DOI,
		URL:      p.SourceURL,
		Topics:   topics,
		Source:   p.Source,
	}
	if !p.Date.IsZero() {
		d := p.Date
		m.PublicationDate = &d
	}
	return m
}
