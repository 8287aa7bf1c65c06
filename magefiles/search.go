package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search queries arXiv: mage search "graph neural networks".
func Search(query string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "search", "--query", query)
}

// Serve starts the HTTP API with console logging.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "serve", "--log-encoding", "console")
}
