package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract runs the structured-field extractor over the converted texts
// under uploads/text.
func Extract() error {
	mg.Deps(Build)
	files, err := filepath.Glob(filepath.Join("uploads", "text", "*.txt"))
	if err != nil {
		return err
	}
	return sh.RunV(binPath(), append([]string{"extract"}, files...)...)
}
