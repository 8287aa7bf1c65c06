package main

import (
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Download acquires papers by arXiv ID, DOI, or PDF URL into uploads/.
// Pass identifiers separated by spaces: mage download "2301.07041 10.1145/3442188.3445922".
func Download(ids string) error {
	mg.Deps(Build)
	args := append([]string{"acquire"}, strings.Fields(ids)...)
	return sh.RunV(binPath(), args...)
}

func binPath() string {
	return "./" + binDir + "/" + binName
}
