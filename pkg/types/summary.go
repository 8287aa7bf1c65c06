// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline:
// the structured summary threaded through the draft and review stages, the
// persisted paper summary, background tasks, and search results.
package types

import "time"

// Placeholder values used in the Methodology and Implications fields.
const (
	// NotExtracted marks a field no extraction heuristic could fill.
	NotExtracted = "Not specifically extracted"

	// IncludedInSummary marks a field whose content the review stage folded
	// into the narrative summary.
	IncludedInSummary = "Included in summary"
)

// StructuredSummary is the record produced by each summarization stage: the
// narrative text plus the fields derived from it.
type StructuredSummary struct {
	// Summary is the free-form narrative text.
	Summary string `json:"summary" yaml:"summary"`

	// KeyFindings lists short statements of the paper's findings in order.
	KeyFindings []string `json:"key_findings" yaml:"key_findings"`

	// Methodology is an extracted description, NotExtracted, or IncludedInSummary.
	Methodology string `json:"methodology" yaml:"methodology"`

	// Implications follows the same policy as Methodology.
	Implications string `json:"implications" yaml:"implications"`

	// Citations holds text quoted verbatim in Summary, in order of appearance.
	Citations []string `json:"citations" yaml:"citations"`
}

// PaperSource identifies how a paper entered the system.
type PaperSource string

const (
	SourceArxiv  PaperSource = "arxiv"
	SourceDOI    PaperSource = "doi"
	SourceUpload PaperSource = "upload"
	SourceURL    PaperSource = "url"
)

// PaperMetadata describes a paper independently of its summary.
type PaperMetadata struct {
	Title           string      `json:"title" yaml:"title"`
	Authors         []string    `json:"authors" yaml:"authors"`
	Abstract        string      `json:"abstract" yaml:"abstract"`
	PublicationDate *time.Time  `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	DOI             string      `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL             string      `json:"url,omitempty" yaml:"url,omitempty"`
	Topics          []string    `json:"topics" yaml:"topics"`
	Source          PaperSource `json:"source" yaml:"source"`
}

// PaperSummary is the persisted result of one completed pipeline run.
type PaperSummary struct {
	// ID is the summary identifier used by the summaries API.
	ID string `json:"id" yaml:"id"`

	// PaperID is the identifier of the task that produced the summary.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	Metadata PaperMetadata `json:"metadata" yaml:"metadata"`

	StructuredSummary `yaml:",inline"`

	// AudioPath is the artifact key of the narrated summary. Empty when audio
	// synthesis was skipped or failed.
	AudioPath string `json:"audio_file_path,omitempty" yaml:"audio_file_path,omitempty"`

	// Warnings lists non-fatal problems encountered during the run.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
