// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/theory-engine/internal/prompts"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// --- Citation filter ---

func TestFilterByCitations(t *testing.T) {
	results := []types.SearchResult{
		{Title: "A", CitationCount: 51},
		{Title: "B", CitationCount: 50},
		{Title: "C", CitationCount: 0},
		{Title: "D", CitationCount: 1200},
	}

	tests := []struct {
		name string
		min  int
		want []string
	}{
		{"default threshold is exclusive", DefaultMinCitations, []string{"A", "D"}},
		{"zero keeps cited papers", 0, []string{"A", "B", "D"}},
		{"high threshold", 1000, []string{"D"}},
		{"nothing survives", 5000, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range FilterByCitations(results, tt.min) {
				got = append(got, r.Title)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterByCitationsNeverForwardsThreshold(t *testing.T) {
	var results []types.SearchResult
	for c := 0; c <= 100; c++ {
		results = append(results, types.SearchResult{CitationCount: c})
	}
	for _, r := range FilterByCitations(results, DefaultMinCitations) {
		assert.Greater(t, r.CitationCount, DefaultMinCitations)
	}
}

// --- Deduplication ---

func TestDeduplicate(t *testing.T) {
	results := []types.SearchResult{
		{Title: "Grid Cells in Entorhinal Cortex", CitationCount: 300},
		{Title: "grid cells in entorhinal cortex!", CitationCount: 12},
		{Title: "Place Cells", CitationCount: 90},
	}

	out, removed := Deduplicate(results)
	assert.Equal(t, 1, removed)
	require.Len(t, out, 2)
	assert.Equal(t, 300, out[0].CitationCount, "first occurrence wins")
	assert.Equal(t, "Place Cells", out[1].Title)
}

func TestDeduplicateNoDuplicates(t *testing.T) {
	results := []types.SearchResult{{Title: "A"}, {Title: "B"}}
	out, removed := Deduplicate(results)
	assert.Equal(t, 0, removed)
	assert.Len(t, out, 2)
}

// --- Prompt formatting ---

func TestFormatResults(t *testing.T) {
	results := []types.SearchResult{
		{Title: "Paper A", Authors: []string{"Smith", "Jones"}, Year: 2019, Venue: "Neuron", Abstract: "Abstract A.", CitationCount: 120},
		{Title: "Paper B", Authors: []string{"Doe"}, Venue: "Unknown Venue", Abstract: "No abstract available", CitationCount: 77},
	}

	want := "1: Paper A (2019) - Smith, Jones\nVenue: Neuron\nCitations: 120\nAbstract: Abstract A.\n" +
		"\n\n" +
		"2: Paper B (Unknown Year) - Doe\nVenue: Unknown Venue\nCitations: 77\nAbstract: No abstract available\n"
	assert.Equal(t, want, FormatResults(results))
}

func TestFormatResultsEmpty(t *testing.T) {
	assert.Equal(t, prompts.NoResultsText, FormatResults(nil))
	assert.Equal(t, prompts.NoResultsText, FormatResults([]types.SearchResult{}))
}

// --- Output formatting ---

func TestFormatTable(t *testing.T) {
	results := []types.SearchResult{
		{Title: "Paper A", Authors: []string{"Smith"}, Year: 2023, CitationCount: 95},
		{Title: "Paper B", Authors: []string{"Jones", "Doe"}, Year: 2022, CitationCount: 80},
	}

	var buf bytes.Buffer
	FormatTable(results, &buf)
	s := buf.String()

	if !strings.Contains(s, "Paper A") {
		t.Error("table should contain 'Paper A'")
	}
	if !strings.Contains(s, "Jones et al.") {
		t.Error("table should abbreviate multiple authors")
	}
	if !strings.Contains(s, "2 results") {
		t.Error("table should report the result count")
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	if !strings.Contains(buf.String(), "No results") {
		t.Error("empty output should say 'No results'")
	}
}

func TestFormatJSON(t *testing.T) {
	results := []types.SearchResult{
		{Identifier: "10.1016/j.neuron.2012.10.038", Title: "Paper A", CitationCount: 2100},
	}

	var buf bytes.Buffer
	if err := FormatJSON(results, &buf); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}

	var parsed []types.SearchResult
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("len(parsed) = %d, want 1", len(parsed))
	}
	if parsed[0].Identifier != "10.1016/j.neuron.2012.10.038" {
		t.Errorf("Identifier = %q", parsed[0].Identifier)
	}
}

// --- Helper functions ---

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Attention Is All You Need", "attention is all you need"},
		{"attention is all you need!", "attention is all you need"},
		{"  BERT:  Pre-training  ", "bert pretraining"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := normalizeTitle(tt.input)
			if got != tt.want {
				t.Errorf("normalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééééééé...", truncate("éééééééééééé", 10))
	assert.Equal(t, "éééé", truncate("éééé", 5))
}
