// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package novelty

import (
	"context"

	"github.com/pdiddy/theory-engine/pkg/types"
)

// Result pairs an idea's index with its verification outcome.
type Result struct {
	Index   int
	Outcome Outcome
	Err     error
}

// Summary counts the outcomes of a stage run.
type Summary struct {
	Novel        int
	NotNovel     int
	Undetermined int
	Skipped      int
	Failed       int
	Results      []Result
}

// Total returns the number of ideas visited.
func (s Summary) Total() int {
	return s.Novel + s.NotNovel + s.Undetermined + s.Skipped + s.Failed
}

// HasFailures reports whether any idea's verification aborted.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// CheckAll verifies every unchecked idea in order and records decisions in
// place. A failed or undetermined idea keeps its novel flag unset.
func (v *Verifier) CheckAll(ctx context.Context, ideas []types.Idea) Summary {
	var s Summary
	for i := range ideas {
		out, err := v.Verify(ctx, ideas[i])
		s.Results = append(s.Results, Result{Index: i, Outcome: out, Err: err})

		switch {
		case out.Skipped:
			v.logger.Info("skipping idea, already checked", "idea", i, "novel", ideas[i].NoveltyLabel())
			s.Skipped++
		case err != nil:
			v.logger.Error("novelty check failed", "idea", i, "invocations", out.Invocations, "err", err)
			s.Failed++
		case out.Decision == Undetermined:
			v.logger.Warn("no novelty decision within round limit", "idea", i, "rounds", v.cfg.Rounds)
			s.Undetermined++
		default:
			ideas[i].MarkNovel(out.Decision == Novel)
			v.logger.Info("novelty decided", "idea", i, "decision", out.Decision, "invocations", out.Invocations)
			if out.Decision == Novel {
				s.Novel++
			} else {
				s.NotNovel++
			}
		}
	}
	return s
}
