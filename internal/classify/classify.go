// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify matches user-supplied topics against paper text.
package classify

import (
	"regexp"
	"strings"
)

// Topics returns the topics that occur in text as whole words, ignoring
// case, in the order given. Blank and repeated topics are skipped.
func Topics(text string, topics []string) []string {
	matched := []string{}
	if len(topics) == 0 {
		return matched
	}
	seen := make(map[string]bool, len(topics))
	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(topic) + `\b`)
		if re.MatchString(text) {
			matched = append(matched, topic)
		}
	}
	return matched
}

// ParseList splits a comma-separated topic list, trimming blanks.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
