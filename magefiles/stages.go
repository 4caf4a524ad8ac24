//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Stage groups the pipeline stage targets. Each builds the binary first and
// runs it against the default archive and configuration.
type Stage mg.Namespace

func runBinary(args ...string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Generate appends new theory ideas to the archive.
func (Stage) Generate() error {
	return runBinary("generate")
}

// Novelty checks unchecked ideas against the literature.
func (Stage) Novelty() error {
	return runBinary("novelty")
}

// Review refines novel ideas for scientific validity.
func (Stage) Review() error {
	return runBinary("review")
}

// All runs generation, novelty, and review in order.
func (Stage) All() error {
	return runBinary("run")
}

// Show prints the archive as a table.
func Show() error {
	return runBinary("show")
}
