package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert extracts text from every downloaded PDF under uploads/raw.
func Convert() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "convert", "--batch")
}
