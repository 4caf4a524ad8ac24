// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/pdiddy/theory-engine/internal/archive"
	"github.com/pdiddy/theory-engine/internal/generate"
	"github.com/pdiddy/theory-engine/internal/llm"
	"github.com/pdiddy/theory-engine/internal/novelty"
	"github.com/pdiddy/theory-engine/internal/pipeline"
	"github.com/pdiddy/theory-engine/internal/prompts"
	"github.com/pdiddy/theory-engine/internal/refine"
	"github.com/pdiddy/theory-engine/internal/review"
	"github.com/pdiddy/theory-engine/internal/search"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// stages selects which pipeline components buildPipeline constructs.
type stages struct {
	generate, novelty, review bool
}

// loadTemplates compiles the built-in prompts, merged with the override
// file when one is configured.
func loadTemplates(cfg types.PipelineConfig) (*prompts.Templates, error) {
	set := prompts.Default()
	if cfg.PromptsFile != "" {
		var err error
		if set, err = prompts.Load(cfg.PromptsFile); err != nil {
			return nil, err
		}
		logger.Info("using prompt overrides", "file", cfg.PromptsFile)
	}
	return set.Compile()
}

// newInvoker builds the retrying model client for the configured provider.
func newInvoker(cfg types.AIConfig) (*llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key for provider %s: set ai.api_key or add a key file to .secrets/", cfg.Provider)
	}
	backend, err := llm.NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("model backend ready", "provider", backend.Name(), "model", cfg.Model)
	return llm.NewClient(backend, cfg.MaxRetries, logger), nil
}

// newSearcher returns the OpenAlex backend, wrapped in the SQLite cache when
// a cache path is configured. The returned closer releases the cache.
func newSearcher(cfg types.SearchConfig) (search.Searcher, io.Closer, error) {
	backend := search.NewOpenAlexBackend(cfg)
	if cfg.CachePath == "" {
		return backend, nopCloser{}, nil
	}
	cache, err := search.OpenCache(cfg.CachePath, backend, cfg.CacheTTL, logger)
	if err != nil {
		return nil, nil, err
	}
	return cache, cache, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildPipeline wires the requested stages from configuration. The returned
// cleanup must be called when the command finishes.
func buildPipeline(cfg types.PipelineConfig, want stages, out io.Writer) (*pipeline.Pipeline, func(), error) {
	cleanup := func() {}
	p := &pipeline.Pipeline{
		Archive:  archive.New(cfg.ArchiveDir),
		NumIdeas: cfg.Generation.NumIdeas,
		Out:      out,
		Logger:   logger,
	}

	tmpl, err := loadTemplates(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	invoker, err := newInvoker(cfg.AI)
	if err != nil {
		return nil, cleanup, err
	}

	if want.generate {
		coherence, err := refine.NewCoherence(tmpl, cfg.Generation.CoherenceRounds, invoker, logger)
		if err != nil {
			return nil, cleanup, err
		}
		p.Generator = generate.NewOrchestrator(tmpl, invoker, coherence, logger)
	}

	if want.novelty {
		searcher, closer, err := newSearcher(cfg.Search)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			if err := closer.Close(); err != nil {
				logger.Warn("closing search cache", "err", err)
			}
		}
		p.Verifier = novelty.NewVerifier(tmpl, novelty.Config{
			Rounds:       cfg.Novelty.Rounds,
			ResultLimit:  cfg.Search.ResultLimit,
			MinCitations: cfg.Search.MinCitations,
		}, invoker, searcher, logger)
	}

	if want.review {
		validity, err := refine.NewValidity(tmpl, cfg.Review.Rounds, invoker, logger)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		p.Reviewer = review.NewReviewer(validity, logger)
	}

	return p, cleanup, nil
}
