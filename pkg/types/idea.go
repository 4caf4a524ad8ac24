// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the theory-engine pipeline.
// Implements: the Idea data model (three nested levels plus the novelty flag),
//
//	SearchResult, stage configuration, and the error taxonomy shared by
//	the generation, novelty, and review stages.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Level keys as they appear in ideas.json and in model responses.
const (
	KeyHighLevel = "High-Level"
	KeyMidLevel  = "Mid-Level"
	KeyLowLevel  = "Low-Level"
)

// LevelKeys lists the three level keys in generation order.
var LevelKeys = []string{KeyHighLevel, KeyMidLevel, KeyLowLevel}

// Required fields for each level. A parsed payload missing any of these is a
// structural violation.
var (
	HighLevelFields = []string{"Name", "Title", "Description", "Significance"}
	MidLevelFields  = []string{"Name", "Title", "Description", "Theoretical_Basis", "Relation_to_Theory", "Feasibility"}
	LowLevelFields  = []string{"Name", "Title", "Description", "Biological_Basis", "Relation_to_Model", "Testability"}
)

// Rating is an ordinal 1–10 score produced by the model. Ratings are not
// range-checked: the raw JSON value is kept as-is so that a structurally
// complete but out-of-range score round-trips unchanged.
type Rating struct {
	raw json.RawMessage
}

// NewRating returns a Rating holding the integer n.
func NewRating(n int) Rating {
	return Rating{raw: json.RawMessage(strconv.Itoa(n))}
}

// UnmarshalJSON keeps a copy of the raw value.
func (r *Rating) UnmarshalJSON(data []byte) error {
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the raw value back, or null when unset.
func (r Rating) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// MarshalYAML renders the rating as an int when possible.
func (r Rating) MarshalYAML() (any, error) {
	if n, ok := r.Int(); ok {
		return n, nil
	}
	return r.String(), nil
}

// Int returns the rating as an integer. Quoted numbers are accepted.
func (r Rating) Int() (int, bool) {
	s := string(bytes.Trim(bytes.TrimSpace(r.raw), `"`))
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, false
		}
		return int(f), true
	}
	return n, true
}

// String returns a printable form of the rating.
func (r Rating) String() string {
	if n, ok := r.Int(); ok {
		return strconv.Itoa(n)
	}
	if len(r.raw) == 0 {
		return "?"
	}
	return string(r.raw)
}

// HighLevelTheory is the broad, first-principles level of an Idea.
type HighLevelTheory struct {
	Name         string `json:"Name" yaml:"name"`
	Title        string `json:"Title" yaml:"title"`
	Description  string `json:"Description" yaml:"description"`
	Significance Rating `json:"Significance" yaml:"significance"`
}

// MidLevelModel is the computational framework implementing the theory.
type MidLevelModel struct {
	Name             string `json:"Name" yaml:"name"`
	Title            string `json:"Title" yaml:"title"`
	Description      string `json:"Description" yaml:"description"`
	TheoreticalBasis string `json:"Theoretical_Basis" yaml:"theoretical_basis"`
	RelationToTheory string `json:"Relation_to_Theory" yaml:"relation_to_theory"`
	Feasibility      Rating `json:"Feasibility" yaml:"feasibility"`
}

// LowLevelMechanism is the biological mechanism implementing the model.
type LowLevelMechanism struct {
	Name            string `json:"Name" yaml:"name"`
	Title           string `json:"Title" yaml:"title"`
	Description     string `json:"Description" yaml:"description"`
	BiologicalBasis string `json:"Biological_Basis" yaml:"biological_basis"`
	RelationToModel string `json:"Relation_to_Model" yaml:"relation_to_model"`
	Testability     Rating `json:"Testability" yaml:"testability"`
}

// Levels is the three-level body of an Idea. Refinement always replaces all
// three values together.
type Levels struct {
	High HighLevelTheory   `json:"High-Level" yaml:"high_level"`
	Mid  MidLevelModel     `json:"Mid-Level" yaml:"mid_level"`
	Low  LowLevelMechanism `json:"Low-Level" yaml:"low_level"`
}

// Idea is the unit of work: three levels plus the novelty flag. Novel is nil
// until a novelty check reaches a decision, and is never overwritten after.
type Idea struct {
	High  HighLevelTheory   `json:"High-Level" yaml:"high_level"`
	Mid   MidLevelModel     `json:"Mid-Level" yaml:"mid_level"`
	Low   LowLevelMechanism `json:"Low-Level" yaml:"low_level"`
	Novel *bool             `json:"novel,omitempty" yaml:"novel,omitempty"`
}

// NewIdea builds an unchecked Idea from its levels.
func NewIdea(l Levels) Idea {
	return Idea{High: l.High, Mid: l.Mid, Low: l.Low}
}

// Levels returns the three-level body of the idea.
func (i Idea) Levels() Levels {
	return Levels{High: i.High, Mid: i.Mid, Low: i.Low}
}

// SetLevels replaces all three levels, leaving the novelty flag untouched.
func (i *Idea) SetLevels(l Levels) {
	i.High, i.Mid, i.Low = l.High, l.Mid, l.Low
}

// Checked reports whether a novelty decision has been recorded.
func (i Idea) Checked() bool {
	return i.Novel != nil
}

// IsNovel reports whether the idea was explicitly decided novel. An unchecked
// idea is not novel.
func (i Idea) IsNovel() bool {
	return i.Novel != nil && *i.Novel
}

// MarkNovel records a novelty decision. It is a no-op when a decision is
// already present.
func (i *Idea) MarkNovel(novel bool) bool {
	if i.Novel != nil {
		return false
	}
	v := novel
	i.Novel = &v
	return true
}

// NoveltyLabel returns "novel", "not novel", or "unchecked".
func (i Idea) NoveltyLabel() string {
	switch {
	case i.Novel == nil:
		return "unchecked"
	case *i.Novel:
		return "novel"
	default:
		return "not novel"
	}
}

// String returns a one-line summary for logs.
func (i Idea) String() string {
	return fmt.Sprintf("%s / %s / %s", i.High.Title, i.Mid.Title, i.Low.Title)
}
