// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

var (
	findingsMarkers = []string{"key findings", "main findings", "contributions", "results"}
	methodMarkers   = []string{"methodology", "methods", "approach"}

	indicatorVerbs = []string{
		"find", "show", "reveal", "demonstrate", "conclude",
		"suggest", "indicate", "highlight", "discover",
	}
)

// bulletCutset is stripped from the front of a list item.
const bulletCutset = "-•0123456789.) \t"

// findingsSection collects the bullet and numbered items that follow a
// findings heading, in order. A methodology heading ends the section.
// Items are kept as written; only empty ones are dropped. rest is text
// with the headings that own items, and the items themselves, removed.
func findingsSection(text string) (items []string, rest string) {
	lines := strings.Split(text, "\n")
	owned := make([]bool, len(lines))
	heading := -1
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)

		if containsAny(lower, findingsMarkers) {
			heading = i
			continue
		}
		if containsAny(lower, methodMarkers) {
			heading = -1
		}
		if heading < 0 || !isListItem(line) {
			continue
		}

		owned[i], owned[heading] = true, true
		if item := strings.TrimSpace(strings.TrimLeft(line, bulletCutset)); item != "" {
			items = append(items, item)
		}
	}

	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if !owned[i] {
			kept = append(kept, line)
		}
	}
	return items, strings.Join(kept, "\n")
}

// isListItem reports whether line starts with "-", "•", "N. " or "N) ".
func isListItem(line string) bool {
	switch {
	case line == "":
		return false
	case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "•"):
		return true
	case len(line) >= 3 && line[0] >= '0' && line[0] <= '9':
		rest := line[1:3]
		return rest == ". " || rest == ") "
	}
	return false
}

// indicatorFindings returns up to maxFindings sentences containing an
// indicator verb.
func indicatorFindings(sentences []string) []string {
	var out []string
	for _, s := range sentences {
		if runeLen(s) < MinFindingLength {
			continue
		}
		if containsAny(strings.ToLower(s), indicatorVerbs) {
			out = append(out, s)
			if len(out) == maxFindings {
				break
			}
		}
	}
	return out
}
