// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/theory-engine/pkg/types"
)

// Depth selects how many levels of each prior idea a summary shows.
type Depth int

const (
	DepthHigh Depth = iota + 1
	DepthMid
	DepthLow
)

// Summarize renders prior ideas as a numbered list for anti-duplication
// context. DepthHigh shows "N. Title: Description"; deeper summaries add
// one indented line per level.
func Summarize(ideas []types.Idea, depth Depth) string {
	lines := make([]string, 0, len(ideas))
	for i, idea := range ideas {
		if depth <= DepthHigh {
			lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, idea.High.Title, idea.High.Description))
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%d. High-Level: %s - %s\n", i+1, idea.High.Title, idea.High.Description)
		fmt.Fprintf(&b, "   Mid-Level: %s - %s", idea.Mid.Title, idea.Mid.Description)
		if depth >= DepthLow {
			fmt.Fprintf(&b, "\n   Low-Level: %s - %s", idea.Low.Title, idea.Low.Description)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
