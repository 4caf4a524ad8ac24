// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/theory-engine/internal/llm/llmtest"
	"github.com/pdiddy/theory-engine/internal/prompts"
	"github.com/pdiddy/theory-engine/internal/refine"
	"github.com/pdiddy/theory-engine/pkg/types"
)

func newReviewer(t *testing.T, inv *llmtest.Invoker, rounds int) *Reviewer {
	t.Helper()
	logger := log.New(io.Discard)
	validity, err := refine.NewValidity(prompts.MustDefault(), rounds, inv, logger)
	require.NoError(t, err)
	return NewReviewer(validity, logger)
}

func idea(tag string, novel *bool) types.Idea {
	i := types.NewIdea(llmtest.SampleLevels(tag))
	if novel != nil {
		i.MarkNovel(*novel)
	}
	return i
}

var (
	yes = func() *bool { b := true; return &b }()
	no  = func() *bool { b := false; return &b }()
)

func TestReviewAllRefinesNovelIdeas(t *testing.T) {
	ideas := []types.Idea{idea("a", no), idea("b", yes), idea("c", nil), idea("d", yes)}
	inv := llmtest.New(
		llmtest.LevelsReply(llmtest.SampleLevels("b-valid"), true),
		llmtest.LevelsReply(llmtest.SampleLevels("d-round1"), false),
		llmtest.LevelsReply(llmtest.SampleLevels("d-valid"), true),
	)

	s, err := newReviewer(t, inv, 5).ReviewAll(context.Background(), ideas)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Refined)
	assert.Equal(t, 0, s.Failed)
	assert.Equal(t, 2, s.Excluded)
	assert.Equal(t, 3, inv.Count())

	assert.Equal(t, "Theory a", ideas[0].High.Title)
	assert.Equal(t, "Theory b-valid", ideas[1].High.Title)
	assert.Equal(t, "Theory c", ideas[2].High.Title)
	assert.Equal(t, "Theory d-valid", ideas[3].High.Title)

	assert.True(t, ideas[1].IsNovel(), "novel flag survives refinement")
	assert.True(t, ideas[3].IsNovel())
	assert.False(t, ideas[2].Checked())
}

func TestReviewAllFreshConversationPerIdea(t *testing.T) {
	ideas := []types.Idea{idea("a", yes), idea("b", yes)}
	inv := llmtest.New(
		llmtest.LevelsReply(llmtest.SampleLevels("a2"), true),
		llmtest.LevelsReply(llmtest.SampleLevels("b2"), true),
	)

	_, err := newReviewer(t, inv, 5).ReviewAll(context.Background(), ideas)
	require.NoError(t, err)
	assert.Empty(t, inv.Calls[0].History)
	assert.Empty(t, inv.Calls[1].History)
	assert.Contains(t, inv.Calls[1].Prompt, "Theory b")
}

func TestReviewAllFailureLeavesIdeaUnchanged(t *testing.T) {
	ideas := []types.Idea{idea("a", yes), idea("b", yes)}
	inv := llmtest.New(
		"the model forgot the JSON",
		llmtest.LevelsReply(llmtest.SampleLevels("b2"), true),
	)

	s, err := newReviewer(t, inv, 5).ReviewAll(context.Background(), ideas)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Refined)
	assert.Equal(t, 1, s.Failed)
	assert.True(t, s.HasFailures())
	require.Len(t, s.Results, 2)
	assert.ErrorIs(t, s.Results[0].Err, types.ErrExtraction)

	assert.Equal(t, llmtest.SampleLevels("a"), ideas[0].Levels())
	assert.Equal(t, "Theory b2", ideas[1].High.Title)
}

func TestReviewAllPrecondition(t *testing.T) {
	tests := []struct {
		name  string
		ideas []types.Idea
	}{
		{"every idea not novel", []types.Idea{idea("a", no), idea("b", no)}},
		{"only unchecked ideas", []types.Idea{idea("a", nil)}},
		{"empty archive", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := llmtest.New(llmtest.LevelsReply(llmtest.SampleLevels("x"), true))

			_, err := newReviewer(t, inv, 5).ReviewAll(context.Background(), tt.ideas)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrPrecondition)
			assert.Equal(t, 0, inv.Count(), "no model call before the precondition check")
		})
	}
}

func TestReviewAllRoundLimit(t *testing.T) {
	ideas := []types.Idea{idea("a", yes)}
	inv := llmtest.New(
		llmtest.LevelsReply(llmtest.SampleLevels("r1"), false),
		llmtest.LevelsReply(llmtest.SampleLevels("r2"), false),
		llmtest.LevelsReply(llmtest.SampleLevels("r3"), false),
	)

	s, err := newReviewer(t, inv, 2).ReviewAll(context.Background(), ideas)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Count())
	require.Len(t, s.Results, 1)
	assert.False(t, s.Results[0].Converged)
	assert.Equal(t, "Theory r2", ideas[0].High.Title)
}
