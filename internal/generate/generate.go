// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate drives the idea lifecycle from raw generation through
// coherence refinement.
//
// Each attempt generates a high-level theory, a mid-level model conditioned
// on the theory's title, and a low-level mechanism conditioned on the
// model's title, each prompt carrying a summary of earlier ideas. The
// assembled idea then passes through the coherence loop. One conversation is
// threaded through all steps of an attempt and dropped afterwards. A failed
// attempt is recorded and the batch moves on.
package generate

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/theory-engine/internal/llm"
	"github.com/pdiddy/theory-engine/internal/parse"
	"github.com/pdiddy/theory-engine/internal/prompts"
	"github.com/pdiddy/theory-engine/internal/refine"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// Step names an attempt phase, reported on failure.
type Step string

const (
	StepHigh      Step = "high-level"
	StepMid       Step = "mid-level"
	StepLow       Step = "low-level"
	StepCoherence Step = "coherence"
)

// Orchestrator generates ideas one attempt at a time.
type Orchestrator struct {
	tmpl      *prompts.Templates
	invoker   llm.Invoker
	coherence *refine.Loop
	logger    *log.Logger
}

// NewOrchestrator builds an Orchestrator that refines each idea with the
// given coherence loop.
func NewOrchestrator(t *prompts.Templates, invoker llm.Invoker, coherence *refine.Loop, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{tmpl: t, invoker: invoker, coherence: coherence, logger: logger}
}

// Attempt is the outcome of one generation attempt: either Idea is set, or
// Err and Step describe where it failed.
type Attempt struct {
	Index       int
	Idea        *types.Idea
	Step        Step
	Err         error
	Invocations int
	Converged   bool
}

// OK reports whether the attempt produced an idea.
func (a Attempt) OK() bool { return a.Err == nil && a.Idea != nil }

// Batch is the result of Generate.
type Batch struct {
	Ideas    []types.Idea
	Attempts []Attempt
}

// Generated returns the number of successful attempts.
func (b Batch) Generated() int { return len(b.Ideas) }

// Failed returns the number of failed attempts.
func (b Batch) Failed() int { return len(b.Attempts) - len(b.Ideas) }

// HasFailures reports whether any attempt failed.
func (b Batch) HasFailures() bool { return b.Failed() > 0 }

// Generate makes exactly n attempts. prior holds ideas already in the
// archive; together with this batch's successes they form the
// anti-duplication context of later attempts.
func (o *Orchestrator) Generate(ctx context.Context, n int, prior []types.Idea) Batch {
	var batch Batch
	known := append([]types.Idea(nil), prior...)

	for i := 0; i < n; i++ {
		att := o.Attempt(ctx, i, known)
		batch.Attempts = append(batch.Attempts, att)

		if !att.OK() {
			o.logger.Error("failed to generate idea", "attempt", i+1, "of", n, "step", att.Step, "err", att.Err)
			continue
		}
		o.logger.Info("generated idea", "attempt", i+1, "of", n, "title", att.Idea.High.Title,
			"invocations", att.Invocations, "converged", att.Converged)
		batch.Ideas = append(batch.Ideas, *att.Idea)
		known = append(known, *att.Idea)
	}
	return batch
}

// Attempt runs one full generation attempt against the prior ideas.
func (o *Orchestrator) Attempt(ctx context.Context, index int, prior []types.Idea) Attempt {
	att := Attempt{Index: index}
	var history llm.Conversation

	call := func(step Step, pair prompts.Pair, data prompts.GenerationData) (string, error) {
		att.Step = step
		prompt, err := pair.Prompt.Render(data)
		if err != nil {
			return "", err
		}
		system, err := pair.System.Render(data)
		if err != nil {
			return "", err
		}
		text, next, err := o.invoker.Invoke(ctx, prompt, system, history)
		att.Invocations++
		if err != nil {
			return "", err
		}
		history = next
		return text, nil
	}

	text, err := call(StepHigh, o.tmpl.High, prompts.GenerationData{Previous: Summarize(prior, DepthHigh)})
	if err != nil {
		return fail(att, err)
	}
	high, err := parse.High(text)
	if err != nil {
		return fail(att, err)
	}

	text, err = call(StepMid, o.tmpl.Mid, prompts.GenerationData{Theory: high.Title, Previous: Summarize(prior, DepthMid)})
	if err != nil {
		return fail(att, err)
	}
	mid, err := parse.Mid(text)
	if err != nil {
		return fail(att, err)
	}

	text, err = call(StepLow, o.tmpl.Low, prompts.GenerationData{Model: mid.Title, Previous: Summarize(prior, DepthLow)})
	if err != nil {
		return fail(att, err)
	}
	low, err := parse.Low(text)
	if err != nil {
		return fail(att, err)
	}

	att.Step = StepCoherence
	res, err := o.coherence.Run(ctx, types.Levels{High: high, Mid: mid, Low: low}, Summarize(prior, DepthHigh), history)
	att.Invocations += res.Invocations
	if err != nil {
		return fail(att, err)
	}

	idea := types.NewIdea(res.Levels)
	att.Idea = &idea
	att.Converged = res.Converged
	att.Step = ""
	return att
}

func fail(att Attempt, err error) Attempt {
	att.Err = fmt.Errorf("%s: %w", att.Step, err)
	att.Idea = nil
	return att
}
