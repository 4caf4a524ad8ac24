//go:build mage

// Package main contains Mage build targets for theory-engine developer tooling.
package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"neuroscientist",
	".secrets",
	".cache",
}

// Init creates the archive, secrets, and cache directories.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "theory-engine"
	cmdPkg  = "./cmd/theory-engine"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Clean removes the built binary.
func Clean() error {
	return os.RemoveAll(binDir)
}

// Stats prints Go production and test line counts for each top-level
// package directory, then totals.
func Stats() error {
	prod := map[string]int{}
	test := map[string]int{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != "." && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		group := statsGroup(path)
		if strings.HasSuffix(path, "_test.go") {
			test[group] += n
		} else {
			prod[group] += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	groups := make([]string, 0, len(prod))
	for g := range prod {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var totalProd, totalTest int
	for _, g := range groups {
		fmt.Printf("%-24s %6d prod %6d test\n", g, prod[g], test[g])
		totalProd += prod[g]
		totalTest += test[g]
	}
	fmt.Printf("%-24s %6d prod %6d test\n", "total", totalProd, totalTest)
	return nil
}

// statsGroup buckets a file under internal/<pkg>, cmd/<name>, or its
// top-level directory.
func statsGroup(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	switch {
	case len(parts) > 2 && (parts[0] == "internal" || parts[0] == "cmd" || parts[0] == "pkg"):
		return parts[0] + "/" + parts[1]
	case len(parts) > 1:
		return parts[0]
	default:
		return "."
	}
}

// countLines counts non-blank lines in a file.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}
