// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine runs the bounded critique-and-revise loop over a three-level
// idea. The same state machine serves coherence refinement during generation
// and validity refinement during review; the two differ only in templates
// and auxiliary context.
//
// Each round renders a prompt from the current idea, invokes the model,
// parses a full three-level payload, and replaces the idea with it. The loop
// stops early when the raw response contains the termination sentinel and
// otherwise returns the last round's idea. A parse failure aborts the loop.
package refine

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/theory-engine/internal/llm"
	"github.com/pdiddy/theory-engine/internal/parse"
	"github.com/pdiddy/theory-engine/internal/prompts"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// PromptFunc renders the prompt for one round.
type PromptFunc func(current types.Levels, round, rounds int, aux string) (string, error)

// Loop is a configured refinement state machine.
type Loop struct {
	name     string
	prompt   PromptFunc
	system   string
	rounds   int
	sentinel string
	invoker  llm.Invoker
	logger   *log.Logger
}

// Config describes a Loop.
type Config struct {
	// Name labels log lines ("coherence", "validity").
	Name string
	// Prompt renders each round's prompt.
	Prompt PromptFunc
	// System is the system instruction sent with every round.
	System string
	// Rounds is the round limit R.
	Rounds int
	// Sentinel stops the loop when found verbatim in a response.
	Sentinel string
}

// New builds a Loop from cfg.
func New(cfg Config, invoker llm.Invoker, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{
		name:     cfg.Name,
		prompt:   cfg.Prompt,
		system:   cfg.System,
		rounds:   cfg.Rounds,
		sentinel: cfg.Sentinel,
		invoker:  invoker,
		logger:   logger,
	}
}

// NewCoherence builds the coherence loop used after generation.
func NewCoherence(t *prompts.Templates, rounds int, invoker llm.Invoker, logger *log.Logger) (*Loop, error) {
	return fromPair("coherence", t.Coherence, rounds, invoker, logger)
}

// NewValidity builds the validity loop used in review.
func NewValidity(t *prompts.Templates, rounds int, invoker llm.Invoker, logger *log.Logger) (*Loop, error) {
	return fromPair("validity", t.Validity, rounds, invoker, logger)
}

func fromPair(name string, pair prompts.Pair, rounds int, invoker llm.Invoker, logger *log.Logger) (*Loop, error) {
	system, err := pair.System.Render(prompts.RoundData{Rounds: rounds})
	if err != nil {
		return nil, err
	}
	cfg := Config{
		Name:     name,
		System:   system,
		Rounds:   rounds,
		Sentinel: prompts.DoneSentinel,
		Prompt: func(current types.Levels, round, rounds int, aux string) (string, error) {
			data, err := prompts.NewRoundData(current, round, rounds, aux)
			if err != nil {
				return "", err
			}
			return pair.Prompt.Render(data)
		},
	}
	return New(cfg, invoker, logger), nil
}

// Result is the outcome of a completed loop.
type Result struct {
	// Levels is the refined idea.
	Levels types.Levels
	// Invocations is the number of model calls made, at most the round limit.
	Invocations int
	// Converged reports whether the sentinel ended the loop.
	Converged bool
	// History is the conversation after the final round.
	History llm.Conversation
}

// Rounds returns the loop's round limit.
func (l *Loop) Rounds() int { return l.rounds }

// Run refines current for at most the round limit. history seeds the
// conversation; pass nil to start fresh. aux is passed to every prompt.
// The returned levels are always complete; on error no levels are returned.
func (l *Loop) Run(ctx context.Context, current types.Levels, aux string, history llm.Conversation) (Result, error) {
	res := Result{Levels: current, History: history}

	for round := 1; round <= l.rounds; round++ {
		prompt, err := l.prompt(res.Levels, round, l.rounds, aux)
		if err != nil {
			return Result{}, fmt.Errorf("%s round %d: %w", l.name, round, err)
		}

		text, next, err := l.invoker.Invoke(ctx, prompt, l.system, res.History)
		res.Invocations++
		if err != nil {
			return Result{}, fmt.Errorf("%s round %d: %w", l.name, round, err)
		}
		res.History = next

		levels, err := parse.Levels(text)
		if err != nil {
			return Result{}, fmt.Errorf("%s round %d: %w", l.name, round, err)
		}
		res.Levels = levels

		if l.sentinel != "" && strings.Contains(text, l.sentinel) {
			l.logger.Debug("refinement converged", "loop", l.name, "round", round)
			res.Converged = true
			return res, nil
		}
	}

	l.logger.Debug("refinement reached round limit", "loop", l.name, "rounds", l.rounds)
	return res, nil
}
