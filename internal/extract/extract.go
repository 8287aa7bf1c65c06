// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract derives structured fields (key findings, methodology,
// implications, citations) from the free-form text a language model returns.
//
// Model output has no fixed schema, so extraction is a layered set of
// heuristics: explicit section markers are trusted first, then sentences
// carrying indicator verbs, then the opening sentences. Extraction never
// fails; when nothing matches, fields hold types.NotExtracted or are empty.
// All functions are pure and safe for concurrent use.
package extract

import (
	"fmt"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Policy names an extraction strategy.
type Policy string

const (
	// PolicySectioned scans for explicit "Key Findings" style sections and
	// bullet lists, and captures methodology/implications as text blocks.
	// It is the default.
	PolicySectioned Policy = "sectioned"

	// PolicyIndicator works sentence by sentence: findings are sentences with
	// indicator verbs, methodology and implications are the concatenation of
	// sentences mentioning their trigger terms.
	PolicyIndicator Policy = "indicator"
)

// DefaultPolicy is used by Fields and when no policy is configured.
const DefaultPolicy = PolicySectioned

// MinFindingLength is the shortest sentence, in characters, accepted as a
// key finding. Items listed under a findings heading are exempt.
const MinFindingLength = 15

// maxFindings caps the indicator and fallback strategies.
const maxFindings = 3

// Extractor derives a StructuredSummary from narrative text. The returned
// Summary field is the input text unchanged.
type Extractor interface {
	Extract(text string) types.StructuredSummary
}

// ParsePolicy validates a policy name. The empty string selects DefaultPolicy.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case "":
		return DefaultPolicy, nil
	case PolicySectioned, PolicyIndicator:
		return Policy(name), nil
	default:
		return "", fmt.Errorf("unknown extraction policy %q", name)
	}
}

// New returns the Extractor for policy p.
func New(p Policy) (Extractor, error) {
	switch p {
	case PolicySectioned, "":
		return sectioned{}, nil
	case PolicyIndicator:
		return indicator{}, nil
	default:
		return nil, fmt.Errorf("unknown extraction policy %q", p)
	}
}

// Fields runs the default policy on text.
func Fields(text string) types.StructuredSummary {
	return sectioned{}.Extract(text)
}

type sectioned struct{}

// Extract implements Extractor. Findings: explicit markers, then indicator
// sentences, then the opening sentences longer than 20 characters. The
// sentence strategies never see a findings section.
func (sectioned) Extract(text string) types.StructuredSummary {
	findings, rest := findingsSection(text)
	sentences := SplitSentences(rest)
	if len(findings) == 0 {
		findings = indicatorFindings(sentences)
	}
	if len(findings) == 0 {
		findings = leadingSentences(sentences, func(n int) bool { return n > 20 })
	}

	return types.StructuredSummary{
		Summary:      text,
		KeyFindings:  findings,
		Methodology:  orPlaceholder(block(methodologyBlockRe, text)),
		Implications: orPlaceholder(block(implicationsBlockRe, text)),
		Citations:    Citations(text),
	}
}

type indicator struct{}

// Extract implements Extractor. Findings: indicator sentences, then the
// opening sentences of at least MinFindingLength characters. Findings
// headings and their list items are not candidates.
func (indicator) Extract(text string) types.StructuredSummary {
	sentences := SplitSentences(text)

	_, rest := findingsSection(text)
	candidates := SplitSentences(rest)
	findings := indicatorFindings(candidates)
	if len(findings) == 0 {
		findings = leadingSentences(candidates, func(n int) bool { return n >= MinFindingLength })
	}

	return types.StructuredSummary{
		Summary:      text,
		KeyFindings:  findings,
		Methodology:  orPlaceholder(joinMatching(sentences, methodologyTerms)),
		Implications: orPlaceholder(joinMatching(sentences, implicationTerms)),
		Citations:    Citations(text),
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return types.NotExtracted
	}
	return s
}
