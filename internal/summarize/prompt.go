// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"strings"
	"text/template"
)

// draftSystemPrompt steers the first pass toward the four fields the
// extractor looks for.
const draftSystemPrompt = `You summarize academic research papers. Write a clear, accurate and complete summary of the paper you are given. Cover:

1. The main findings and contributions
2. The methodology used
3. The implications of the research
4. Important quotes that illustrate key points

Be concise but thorough. Keep the language accessible without losing technical accuracy.`

var draftPromptTmpl = template.Must(template.New("draft").Parse(`Summarize the following research paper.

Paper content:
{{.Paper}}
`))

// reviewSystemPrompt asks for a short plain-text rewrite of the draft.
const reviewSystemPrompt = `You are an academic editor who reviews draft summaries of research papers and improves them.

1. Keep the summary brief and focused on the main findings and methods
2. Include every methodology the paper mentions
3. Capture the key ideas accurately
4. Write plain text only: no markdown, no bullet points, no formatting

Return a concise plain-text summary a researcher can read quickly to understand the paper's contributions and methods.`

var reviewPromptTmpl = template.Must(template.New("review").Parse(`Review this draft summary and write a brief, precise plain-text summary of the paper.

Draft summary:
{{.Summary}}

Key findings:
{{.Findings}}

Methodology:
{{.Methodology}}

Requirements:
1. Capture all methodologies and key ideas of the paper
2. Output plain text only, with no markdown or bullet points
3. At most 3-4 paragraphs
4. Use clear, direct language

Opening of the paper:
{{.Paper}}
`))

type draftPromptData struct {
	Paper string
}

type reviewPromptData struct {
	Summary     string
	Findings    string
	Methodology string
	Paper       string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// truncate returns at most n characters of s, never splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func joinFindings(findings []string) string {
	return strings.Join(findings, ", ")
}
