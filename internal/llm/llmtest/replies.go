// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llmtest

import (
	"encoding/json"

	"github.com/pdiddy/theory-engine/internal/prompts"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// Fenced renders v as a model response: a THOUGHT section, an optional
// extra line, then v as a fenced JSON block.
func Fenced(v any, extra string) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	text := "THOUGHT:\nConsidering the idea.\n"
	if extra != "" {
		text += extra + "\n"
	}
	return text + "\n```json\n" + string(data) + "\n```\n"
}

// LevelsReply is a refinement response carrying l, with the termination
// sentinel when done is true.
func LevelsReply(l types.Levels, done bool) string {
	extra := ""
	if done {
		extra = prompts.DoneSentinel
	}
	return Fenced(l, extra)
}

// QueryReply is a novelty response that searches for query, with an
// optional decision line.
func QueryReply(query, decision string) string {
	return Fenced(map[string]string{"Query": query}, decision)
}

// SampleLevels returns a complete idea whose titles carry tag.
func SampleLevels(tag string) types.Levels {
	return types.Levels{
		High: types.HighLevelTheory{
			Name:         "theory_" + tag,
			Title:        "Theory " + tag,
			Description:  "High-level description " + tag + ".",
			Significance: types.NewRating(8),
		},
		Mid: types.MidLevelModel{
			Name:             "model_" + tag,
			Title:            "Model " + tag,
			Description:      "Mid-level description " + tag + ".",
			TheoreticalBasis: "Basis " + tag + ".",
			RelationToTheory: "Implements theory " + tag + ".",
			Feasibility:      types.NewRating(7),
		},
		Low: types.LowLevelMechanism{
			Name:            "mechanism_" + tag,
			Title:           "Mechanism " + tag,
			Description:     "Low-level description " + tag + ".",
			BiologicalBasis: "Biology " + tag + ".",
			RelationToModel: "Implements model " + tag + ".",
			Testability:     types.NewRating(6),
		},
	}
}
