// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides a scripted llm.Invoker for stage tests.
package llmtest

import (
	"context"
	"fmt"

	"github.com/pdiddy/theory-engine/internal/llm"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// Reply is one scripted model turn. A non-nil Err fails the call.
type Reply struct {
	Text string
	Err  error
}

// Call records one invocation.
type Call struct {
	Prompt  string
	System  string
	History llm.Conversation
}

// Invoker replays Replies in order and records every call. Running past the
// script fails the call with types.ErrExternalService.
type Invoker struct {
	Replies []Reply
	Calls   []Call
}

// New returns an Invoker that answers with texts in order.
func New(texts ...string) *Invoker {
	inv := &Invoker{}
	for _, t := range texts {
		inv.Replies = append(inv.Replies, Reply{Text: t})
	}
	return inv
}

// Invoke implements llm.Invoker.
func (s *Invoker) Invoke(_ context.Context, prompt, system string, history llm.Conversation) (string, llm.Conversation, error) {
	s.Calls = append(s.Calls, Call{
		Prompt:  prompt,
		System:  system,
		History: append(llm.Conversation(nil), history...),
	})
	n := len(s.Calls)
	if n > len(s.Replies) {
		return "", history, fmt.Errorf("unscripted call %d: %w", n, types.ErrExternalService)
	}
	r := s.Replies[n-1]
	if r.Err != nil {
		return "", history, r.Err
	}
	next := append(append(llm.Conversation(nil), history...),
		llm.Message{Role: llm.RoleUser, Content: prompt},
		llm.Message{Role: llm.RoleAssistant, Content: r.Text})
	return r.Text, next, nil
}

// Count returns the number of calls made.
func (s *Invoker) Count() int { return len(s.Calls) }
