// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchResult is one paper returned by the bibliographic search backend.
// Results are ephemeral: they live only inside one novelty round.
type SearchResult struct {
	// Identifier is the backend's ID for the work (OpenAlex URL or DOI).
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year" yaml:"year"`

	// Venue is the journal or conference of the first listed location.
	Venue string `json:"venue" yaml:"venue"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// CitationCount is the number of works citing this paper.
	CitationCount int `json:"citation_count" yaml:"citation_count"`
}
