// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the generation, novelty, and review stages against
// the idea archive. Each stage reads the archive once at start and rewrites
// it wholesale at the end.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/theory-engine/internal/archive"
	"github.com/pdiddy/theory-engine/internal/generate"
	"github.com/pdiddy/theory-engine/internal/novelty"
	"github.com/pdiddy/theory-engine/internal/review"
)

// Pipeline wires the stages to one archive. A stage whose component is nil
// cannot be run.
type Pipeline struct {
	Archive   *archive.Archive
	Generator *generate.Orchestrator
	Verifier  *novelty.Verifier
	Reviewer  *review.Reviewer
	NumIdeas  int
	Out       io.Writer
	Logger    *log.Logger
}

// Report collects the per-stage summaries of a full run.
type Report struct {
	Generation generate.Batch
	Novelty    novelty.Summary
	Review     review.Summary
}

// HasFailures reports whether any stage recorded a failed idea.
func (r Report) HasFailures() bool {
	return r.Generation.HasFailures() || r.Novelty.HasFailures() || r.Review.HasFailures()
}

var errMissingStage = errors.New("stage not configured")

// Generate appends a batch of new ideas to the archive. An absent archive
// starts empty.
func (p *Pipeline) Generate(ctx context.Context) (generate.Batch, error) {
	if p.Generator == nil {
		return generate.Batch{}, fmt.Errorf("generate: %w", errMissingStage)
	}
	ideas, err := p.Archive.LoadOrEmpty()
	if err != nil {
		return generate.Batch{}, err
	}
	p.logger().Info("starting generation", "archive", p.Archive.Path(), "existing", len(ideas), "attempts", p.NumIdeas)

	batch := p.Generator.Generate(ctx, p.NumIdeas, ideas)
	ideas = append(ideas, batch.Ideas...)
	if err := p.Archive.Save(ideas); err != nil {
		return batch, err
	}

	p.printf("Generation complete: %d generated, %d failed, %d in archive\n",
		batch.Generated(), batch.Failed(), len(ideas))
	return batch, nil
}

// Novelty checks every unchecked idea in the archive.
func (p *Pipeline) Novelty(ctx context.Context) (novelty.Summary, error) {
	if p.Verifier == nil {
		return novelty.Summary{}, fmt.Errorf("novelty: %w", errMissingStage)
	}
	ideas, err := p.Archive.Load()
	if err != nil {
		return novelty.Summary{}, err
	}
	p.logger().Info("starting novelty check", "archive", p.Archive.Path(), "ideas", len(ideas))

	s := p.Verifier.CheckAll(ctx, ideas)
	if err := p.Archive.Save(ideas); err != nil {
		return s, err
	}

	p.printf("Novelty check complete: %d novel, %d not novel, %d undetermined, %d skipped, %d failed\n",
		s.Novel, s.NotNovel, s.Undetermined, s.Skipped, s.Failed)
	return s, nil
}

// Review refines the archive's novel ideas for scientific validity. It fails
// with types.ErrPrecondition, leaving the archive untouched, when no idea is
// marked novel.
func (p *Pipeline) Review(ctx context.Context) (review.Summary, error) {
	if p.Reviewer == nil {
		return review.Summary{}, fmt.Errorf("review: %w", errMissingStage)
	}
	ideas, err := p.Archive.Load()
	if err != nil {
		return review.Summary{}, err
	}
	p.logger().Info("starting validity review", "archive", p.Archive.Path(), "ideas", len(ideas))

	s, err := p.Reviewer.ReviewAll(ctx, ideas)
	if err != nil {
		return s, fmt.Errorf("review: %w", err)
	}
	if err := p.Archive.Save(ideas); err != nil {
		return s, err
	}

	p.printf("Validity review complete: %d refined, %d failed, %d not novel\n", s.Refined, s.Failed, s.Excluded)
	return s, nil
}

// Run executes generation, novelty, and review in order, stopping at the
// first stage error. Each completed stage has already saved the archive.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	var r Report
	var err error

	if r.Generation, err = p.Generate(ctx); err != nil {
		return r, err
	}
	if r.Novelty, err = p.Novelty(ctx); err != nil {
		return r, err
	}
	r.Review, err = p.Review(ctx)
	return r, err
}

func (p *Pipeline) printf(format string, args ...any) {
	if p.Out != nil {
		fmt.Fprintf(p.Out, format, args...)
	}
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}
