// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package novelty decides whether an idea is already covered by the
// literature.
//
// For each unchecked idea the Verifier runs a bounded loop. Every round asks
// the model either to announce a decision ("Decision made: novel" or
// "Decision made: not novel", matched case-insensitively) or to propose a
// literature query. Queries go to the search backend; results with 50 or
// fewer citations are dropped and the rest are shown to the model in the
// next round. When the rounds run out without a decision the idea stays
// unchecked. Ideas that already carry a decision are skipped, so re-running
// over a full archive is idempotent.
package novelty

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/theory-engine/internal/llm"
	"github.com/pdiddy/theory-engine/internal/parse"
	"github.com/pdiddy/theory-engine/internal/prompts"
	"github.com/pdiddy/theory-engine/internal/search"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// queryField is the payload key carrying the literature query.
const queryField = "Query"

// Decision is the verdict of one verification.
type Decision int

const (
	// Undetermined means the round limit was reached without a decision.
	Undetermined Decision = iota
	Novel
	NotNovel
)

func (d Decision) String() string {
	switch d {
	case Novel:
		return "novel"
	case NotNovel:
		return "not novel"
	default:
		return "undetermined"
	}
}

// Config holds the Verifier's limits.
type Config struct {
	// Rounds is the round limit per idea.
	Rounds int
	// ResultLimit is the number of works requested per query.
	ResultLimit int
	// MinCitations is the relevance threshold; results at or below it are
	// dropped.
	MinCitations int
}

// Verifier runs the decide-or-query loop.
type Verifier struct {
	tmpl     prompts.Pair
	cfg      Config
	invoker  llm.Invoker
	searcher search.Searcher
	logger   *log.Logger
}

// NewVerifier builds a Verifier. A non-positive ResultLimit takes the default
// of 10. MinCitations is used as given; zero keeps every result with at
// least one citation.
func NewVerifier(t *prompts.Templates, cfg Config, invoker llm.Invoker, searcher search.Searcher, logger *log.Logger) *Verifier {
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = 10
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Verifier{tmpl: t.Novelty, cfg: cfg, invoker: invoker, searcher: searcher, logger: logger}
}

// Outcome reports one idea's verification.
type Outcome struct {
	Decision Decision
	// Skipped is true when the idea already carried a decision.
	Skipped     bool
	Invocations int
	Queries     int
}

// Verify runs the loop for one idea. It never modifies idea; the caller
// records the decision. An error aborts this idea only and leaves it
// undetermined.
func (v *Verifier) Verify(ctx context.Context, idea types.Idea) (Outcome, error) {
	if idea.Checked() {
		return Outcome{Skipped: true}, nil
	}

	levels := idea.Levels()
	sysData, err := prompts.NewRoundData(levels, 0, v.cfg.Rounds, "")
	if err != nil {
		return Outcome{}, err
	}
	system, err := v.tmpl.System.Render(sysData)
	if err != nil {
		return Outcome{}, err
	}

	var (
		out         Outcome
		history     llm.Conversation
		lastResults = prompts.NoQueryResultsText
	)

	for round := 1; round <= v.cfg.Rounds; round++ {
		data, err := prompts.NewRoundData(levels, round, v.cfg.Rounds, lastResults)
		if err != nil {
			return out, err
		}
		prompt, err := v.tmpl.Prompt.Render(data)
		if err != nil {
			return out, err
		}

		text, next, err := v.invoker.Invoke(ctx, prompt, system, history)
		out.Invocations++
		if err != nil {
			return out, fmt.Errorf("novelty round %d: %w", round, err)
		}
		history = next

		if d := decide(text); d != Undetermined {
			out.Decision = d
			return out, nil
		}

		query, err := parse.ExtractField(text, queryField)
		if err != nil {
			return out, fmt.Errorf("novelty round %d: %w", round, err)
		}
		query = strings.TrimSpace(query)
		if query == "" {
			lastResults = prompts.NoResultsText
			continue
		}

		results, err := v.searcher.Search(ctx, query, v.cfg.ResultLimit)
		out.Queries++
		if err != nil {
			return out, fmt.Errorf("novelty round %d: searching %q: %w: %w", round, query, types.ErrExternalService, err)
		}
		relevant := search.FilterByCitations(results, v.cfg.MinCitations)
		v.logger.Debug("literature query", "round", round, "query", query,
			"results", len(results), "relevant", len(relevant))
		lastResults = search.FormatResults(relevant)
	}

	return out, nil
}

// decide looks for a decision sentinel. The novel phrase is checked first;
// the two phrases cannot overlap as substrings.
func decide(text string) Decision {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, prompts.NovelSentinel):
		return Novel
	case strings.Contains(lower, prompts.NotNovelSentinel):
		return NotNovel
	default:
		return Undetermined
	}
}
