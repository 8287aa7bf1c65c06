// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

var (
	methodologyBlockRe  = regexp.MustCompile(`(?i)methodology|methods|approach`)
	implicationsBlockRe = regexp.MustCompile(`(?i)implications|conclusion|impact|significance`)

	methodologyTerms = []string{"method", "approach", "technique", "procedure", "algorithm", "model"}
	implicationTerms = []string{"implication", "impact", "result", "outcome", "conclusion"}

	citationRe = regexp.MustCompile(`"([^"]+)"`)
)

// block returns the text from the first match of re up to the next blank
// line (or the end of text), trimmed. It returns "" when re does not match.
func block(re *regexp.Regexp, text string) string {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	end := len(text)
	if i := strings.Index(text[loc[1]:], "\n\n"); i >= 0 {
		end = loc[1] + i
	}
	return strings.TrimSpace(text[loc[0]:end])
}

// Citations returns every double-quoted span in text, in order of
// appearance, without the quotes. Duplicates are kept.
func Citations(text string) []string {
	out := []string{}
	for _, m := range citationRe.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}
