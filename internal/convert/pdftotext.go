// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const binPdftotext = "pdftotext"

// Pdftotext extracts text by running poppler's pdftotext binary.
type Pdftotext struct {
	bin string
}

// NewPdftotext locates bin (default "pdftotext") on PATH.
func NewPdftotext(bin string) (*Pdftotext, error) {
	if bin == "" {
		bin = binPdftotext
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", bin, err)
	}
	return &Pdftotext{bin: path}, nil
}

// ExtractText runs pdftotext with UTF-8 output to stdout. Form feeds that
// separate pages become blank lines.
func (p *Pdftotext) ExtractText(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.bin, "-enc", "UTF-8", "-layout", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("running pdftotext on %s: %w: %s", path, err, msg)
		}
		return "", fmt.Errorf("running pdftotext on %s: %w", path, err)
	}
	return joinPages(strings.Split(stdout.String(), "\f")), nil
}
