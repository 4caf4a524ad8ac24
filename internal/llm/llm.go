// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm invokes text-generation models on behalf of the pipeline stages.
//
// Stages see only the Invoker contract: a prompt, a system message, and the
// conversation so far go in; the response text and the extended conversation
// come out. Retries and backoff live here, never in the stages.
package llm

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/theory-engine/pkg/types"
)

// Roles used in a Conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered turn history of one idea within one stage. It
// is created empty at the start of the stage and dropped at its end.
type Conversation []Message

// Invoker is the model-invocation contract consumed by the stages.
type Invoker interface {
	Invoke(ctx context.Context, prompt, system string, history Conversation) (string, Conversation, error)
}

// Backend sends one completion request to a concrete model API.
type Backend interface {
	Name() string
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Client implements Invoker over a Backend, retrying failed calls with
// exponential backoff.
type Client struct {
	backend    Backend
	maxRetries int
	logger     *log.Logger
}

// NewClient wraps backend. maxRetries <= 0 disables retries.
func NewClient(backend Backend, maxRetries int, logger *log.Logger) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{backend: backend, maxRetries: maxRetries, logger: logger}
}

// Invoke appends prompt to history, calls the backend, and returns the
// response along with the history extended by both turns. The caller's
// history slice is never modified. Failures wrap types.ErrExternalService.
func (c *Client) Invoke(ctx context.Context, prompt, system string, history Conversation) (string, Conversation, error) {
	next := make(Conversation, 0, len(history)+2)
	next = append(next, history...)
	next = append(next, Message{Role: RoleUser, Content: prompt})

	text, err := c.completeWithRetry(ctx, system, next)
	if err != nil {
		return "", history, fmt.Errorf("%s: %w: %w", c.backend.Name(), types.ErrExternalService, err)
	}

	next = append(next, Message{Role: RoleAssistant, Content: text})
	return text, next, nil
}

func (c *Client) completeWithRetry(ctx context.Context, system string, messages []Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			if c.logger != nil {
				c.logger.Warn("model call failed, retrying", "backend", c.backend.Name(),
					"attempt", attempt, "backoff", backoff, "err", lastErr)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.backend.Complete(ctx, system, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	if c.maxRetries == 0 {
		return "", lastErr
	}
	return "", fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// NewBackend builds the backend selected by cfg.Provider.
func NewBackend(cfg types.AIConfig) (Backend, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("no model configured")
	}
	switch cfg.Provider {
	case types.ProviderAnthropic, "":
		return NewAnthropicBackend(cfg), nil
	case types.ProviderOpenAI:
		return NewOpenAIBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q: use anthropic or openai", cfg.Provider)
	}
}
