// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/theory-engine/pkg/types"
)

// FormatTable writes ideas as a human-readable table to w.
func FormatTable(w io.Writer, ideas []types.Idea) {
	if len(ideas) == 0 {
		fmt.Fprintln(w, "No ideas in archive.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-10s  %-40s  %-3s  %-3s  %-3s\n", "#", "Novelty", "Theory", "Sig", "Fea", "Tst")
	fmt.Fprintln(w, strings.Repeat("-", 74))

	var novel int
	for i, idea := range ideas {
		if idea.IsNovel() {
			novel++
		}
		fmt.Fprintf(w, "%-4d  %-10s  %-40s  %-3s  %-3s  %-3s\n",
			i+1, idea.NoveltyLabel(), truncate(idea.High.Title, 40),
			idea.High.Significance, idea.Mid.Feasibility, idea.Low.Testability)
	}
	fmt.Fprintf(w, "\n%d ideas, %d novel\n", len(ideas), novel)
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
