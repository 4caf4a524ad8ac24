// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search is the bibliographic search collaborator of the novelty
// stage: an OpenAlex backend, an optional SQLite query cache, the citation
// relevance filter, and the text rendering shown to the model.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pdiddy/theory-engine/internal/prompts"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// DefaultMinCitations is the relevance threshold: results with this many
// citations or fewer are never shown to the model.
const DefaultMinCitations = 50

// Searcher runs one bibliographic query.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error)
}

// FilterByCitations keeps results with strictly more than minCitations
// citations, preserving order.
func FilterByCitations(results []types.SearchResult, minCitations int) []types.SearchResult {
	var kept []types.SearchResult
	for _, r := range results {
		if r.CitationCount > minCitations {
			kept = append(kept, r)
		}
	}
	return kept
}

// Deduplicate drops results whose normalized title was already seen.
func Deduplicate(results []types.SearchResult) ([]types.SearchResult, int) {
	seen := make(map[string]bool)
	var out []types.SearchResult
	removed := 0
	for _, r := range results {
		key := normalizeTitle(r.Title)
		if key != "" && seen[key] {
			removed++
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out, removed
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FormatResults renders results for the novelty prompt. An empty slice
// renders as the no-results sentinel text.
func FormatResults(results []types.SearchResult) string {
	if len(results) == 0 {
		return prompts.NoResultsText
	}
	parts := make([]string, 0, len(results))
	for i, r := range results {
		year := "Unknown Year"
		if r.Year > 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		parts = append(parts, fmt.Sprintf("%d: %s (%s) - %s\nVenue: %s\nCitations: %d\nAbstract: %s\n",
			i+1, r.Title, year, strings.Join(r.Authors, ", "), r.Venue, r.CitationCount, r.Abstract))
	}
	return strings.Join(parts, "\n\n")
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.SearchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %s\n", "Rank", "Title", "Authors", "Year", "Citations")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	for i, r := range results {
		year := ""
		if r.Year > 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %d\n",
			i+1, truncate(r.Title, 60), formatAuthors(r.Authors), year, r.CitationCount)
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.SearchResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
