// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review runs the scientific-validity refinement over ideas the
// novelty stage marked novel.
package review

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/theory-engine/internal/archive"
	"github.com/pdiddy/theory-engine/internal/refine"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// Reviewer refines novel ideas with the validity loop.
type Reviewer struct {
	validity *refine.Loop
	logger   *log.Logger
}

// NewReviewer returns a Reviewer around a validity loop.
func NewReviewer(validity *refine.Loop, logger *log.Logger) *Reviewer {
	if logger == nil {
		logger = log.Default()
	}
	return &Reviewer{validity: validity, logger: logger}
}

// Outcome is the result for one novel idea.
type Outcome struct {
	Index       int
	Invocations int
	Converged   bool
	Err         error
}

// Summary counts the outcomes of a review pass.
type Summary struct {
	Refined  int
	Failed   int
	Excluded int
	Results  []Outcome
}

// HasFailures reports whether any refinement aborted.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// ReviewAll refines every idea marked novel, in place. Ideas not marked
// novel are left untouched. With no novel idea at all the pass fails before
// any model call with types.ErrPrecondition. A failed refinement leaves its
// idea unchanged.
func (r *Reviewer) ReviewAll(ctx context.Context, ideas []types.Idea) (Summary, error) {
	var s Summary
	if err := archive.RequireNovel(ideas); err != nil {
		return s, err
	}

	for i := range ideas {
		if !ideas[i].IsNovel() {
			s.Excluded++
			continue
		}

		res, err := r.validity.Run(ctx, ideas[i].Levels(), "", nil)
		s.Results = append(s.Results, Outcome{Index: i, Invocations: res.Invocations, Converged: res.Converged, Err: err})
		if err != nil {
			r.logger.Error("validity review failed", "idea", i, "title", ideas[i].High.Title, "err", err)
			s.Failed++
			continue
		}

		ideas[i].SetLevels(res.Levels)
		r.logger.Info("reviewed idea", "idea", i, "title", res.Levels.High.Title,
			"invocations", res.Invocations, "converged", res.Converged)
		s.Refined++
	}
	return s, nil
}
