// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences breaks text after '.', '!' or '?' when followed by
// whitespace. Sentences are trimmed; empty ones are dropped.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		next, size := utf8.DecodeRuneInString(text[i+1:])
		if size == 0 || !unicode.IsSpace(next) {
			continue
		}
		out = appendTrimmed(out, text[start:i+1])
		start = i + 1
	}
	return appendTrimmed(out, text[start:])
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// leadingSentences returns those of the first maxFindings sentences whose
// length satisfies keep.
func leadingSentences(sentences []string, keep func(n int) bool) []string {
	out := []string{}
	for i, s := range sentences {
		if i == maxFindings {
			break
		}
		if keep(runeLen(s)) {
			out = append(out, s)
		}
	}
	return out
}

// joinMatching concatenates, in order, the sentences mentioning any term.
func joinMatching(sentences []string, terms []string) string {
	var hits []string
	for _, s := range sentences {
		if containsAny(strings.ToLower(s), terms) {
			hits = append(hits, s)
		}
	}
	return strings.Join(hits, " ")
}
