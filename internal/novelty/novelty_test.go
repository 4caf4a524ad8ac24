// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package novelty

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/theory-engine/internal/llm/llmtest"
	"github.com/pdiddy/theory-engine/internal/prompts"
	"github.com/pdiddy/theory-engine/internal/search"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// fakeSearcher returns results for every query and records what it saw.
type fakeSearcher struct {
	results []types.SearchResult
	err     error
	queries []string
	limits  []int
}

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) ([]types.SearchResult, error) {
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	return f.results, f.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newVerifier(inv *llmtest.Invoker, s *fakeSearcher, rounds int) *Verifier {
	cfg := Config{Rounds: rounds, MinCitations: search.DefaultMinCitations}
	return NewVerifier(prompts.MustDefault(), cfg, inv, s, quietLogger())
}

func unchecked(tag string) types.Idea {
	return types.NewIdea(llmtest.SampleLevels(tag))
}

func TestVerifyDecisions(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		decision Decision
	}{
		{"novel", llmtest.QueryReply("", "Decision made: novel."), Novel},
		{"not novel", llmtest.QueryReply("", "Decision made: not novel."), NotNovel},
		{"upper case", llmtest.QueryReply("", "DECISION MADE: NOVEL"), Novel},
		{"not novel upper case", llmtest.QueryReply("", "Decision Made: Not Novel"), NotNovel},
		{"decision without payload", "After review. Decision made: not novel.", NotNovel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := llmtest.New(tt.reply)
			s := &fakeSearcher{}

			out, err := newVerifier(inv, s, 5).Verify(context.Background(), unchecked("a"))
			require.NoError(t, err)
			assert.Equal(t, tt.decision, out.Decision)
			assert.Equal(t, 1, out.Invocations)
			assert.Empty(t, s.queries)
		})
	}
}

func TestVerifyQueriesThenDecides(t *testing.T) {
	inv := llmtest.New(
		llmtest.QueryReply("dendritic prediction error", ""),
		llmtest.QueryReply("apical amplification Larkum", ""),
		llmtest.QueryReply("", "Decision made: not novel."),
	)
	s := &fakeSearcher{results: []types.SearchResult{
		{Title: "Cited Paper", Authors: []string{"M. Larkum"}, Year: 2013, Venue: "TINS", Abstract: "abs", CitationCount: 900},
		{Title: "Obscure Paper", Authors: []string{"A. Nobody"}, Year: 2020, Venue: "X", Abstract: "abs", CitationCount: 50},
	}}

	out, err := newVerifier(inv, s, 5).Verify(context.Background(), unchecked("a"))
	require.NoError(t, err)

	assert.Equal(t, NotNovel, out.Decision)
	assert.Equal(t, 3, out.Invocations)
	assert.Equal(t, 2, out.Queries)
	assert.Equal(t, []string{"dendritic prediction error", "apical amplification Larkum"}, s.queries)
	assert.Equal(t, []int{10, 10}, s.limits)

	require.Len(t, inv.Calls, 3)
	assert.Contains(t, inv.Calls[0].Prompt, prompts.NoQueryResultsText)
	assert.Contains(t, inv.Calls[1].Prompt, "1: Cited Paper (2013) - M. Larkum")
	assert.Contains(t, inv.Calls[1].Prompt, "Citations: 900")
	assert.NotContains(t, inv.Calls[1].Prompt, "Obscure Paper", "results at the threshold are never shown")
	assert.Len(t, inv.Calls[2].History, 4, "conversation is threaded across rounds")
}

func TestVerifyAllResultsFiltered(t *testing.T) {
	inv := llmtest.New(
		llmtest.QueryReply("rare topic", ""),
		llmtest.QueryReply("", "Decision made: novel."),
	)
	s := &fakeSearcher{results: []types.SearchResult{
		{Title: "Low", CitationCount: 3},
		{Title: "Threshold", CitationCount: 50},
	}}

	out, err := newVerifier(inv, s, 5).Verify(context.Background(), unchecked("a"))
	require.NoError(t, err)
	assert.Equal(t, Novel, out.Decision)
	assert.Contains(t, inv.Calls[1].Prompt, prompts.NoResultsText)
	assert.NotContains(t, inv.Calls[1].Prompt, "Threshold")
}

func TestVerifyZeroCitationThreshold(t *testing.T) {
	inv := llmtest.New(
		llmtest.QueryReply("dendritic gating", ""),
		llmtest.QueryReply("", "Decision made: novel."),
	)
	s := &fakeSearcher{results: []types.SearchResult{
		{Title: "Uncited", CitationCount: 0},
		{Title: "Cited Once", CitationCount: 1},
	}}
	v := NewVerifier(prompts.MustDefault(), Config{Rounds: 5, MinCitations: 0}, inv, s, quietLogger())

	_, err := v.Verify(context.Background(), unchecked("a"))
	require.NoError(t, err)
	assert.Contains(t, inv.Calls[1].Prompt, "Cited Once")
	assert.NotContains(t, inv.Calls[1].Prompt, "Uncited")
}

func TestVerifyEmptyQuerySkipsSearch(t *testing.T) {
	inv := llmtest.New(
		llmtest.QueryReply("   ", ""),
		llmtest.QueryReply("", "Decision made: novel."),
	)
	s := &fakeSearcher{}

	out, err := newVerifier(inv, s, 5).Verify(context.Background(), unchecked("a"))
	require.NoError(t, err)
	assert.Equal(t, Novel, out.Decision)
	assert.Empty(t, s.queries)
	assert.Equal(t, 0, out.Queries)
	assert.Contains(t, inv.Calls[1].Prompt, prompts.NoResultsText)
}

func TestVerifyUndeterminedAfterRounds(t *testing.T) {
	inv := llmtest.New(
		llmtest.QueryReply("q1", ""),
		llmtest.QueryReply("q2", ""),
		llmtest.QueryReply("q3", ""),
		llmtest.QueryReply("", "Decision made: novel."),
	)
	s := &fakeSearcher{}

	out, err := newVerifier(inv, s, 3).Verify(context.Background(), unchecked("a"))
	require.NoError(t, err)
	assert.Equal(t, Undetermined, out.Decision)
	assert.Equal(t, 3, inv.Count())
	assert.Equal(t, 3, out.Queries)
}

func TestVerifySkipsCheckedIdea(t *testing.T) {
	for _, novel := range []bool{true, false} {
		idea := unchecked("a")
		idea.MarkNovel(novel)
		inv := llmtest.New()

		out, err := newVerifier(inv, &fakeSearcher{}, 5).Verify(context.Background(), idea)
		require.NoError(t, err)
		assert.True(t, out.Skipped)
		assert.Equal(t, 0, inv.Count())
	}
}

func TestVerifyFailures(t *testing.T) {
	boom := errors.New("search down")
	tests := []struct {
		name    string
		replies []llmtest.Reply
		search  *fakeSearcher
		wantErr error
	}{
		{
			name:    "model failure",
			replies: []llmtest.Reply{{Err: types.ErrExternalService}},
			search:  &fakeSearcher{},
			wantErr: types.ErrExternalService,
		},
		{
			name:    "search failure",
			replies: []llmtest.Reply{{Text: llmtest.QueryReply("q", "")}},
			search:  &fakeSearcher{err: boom},
			wantErr: boom,
		},
		{
			name:    "no payload and no decision",
			replies: []llmtest.Reply{{Text: "I need to think more."}},
			search:  &fakeSearcher{},
			wantErr: types.ErrExtraction,
		},
		{
			name:    "payload without query",
			replies: []llmtest.Reply{{Text: llmtest.Fenced(map[string]string{"Search": "q"}, "")}},
			search:  &fakeSearcher{},
			wantErr: types.ErrStructural,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &llmtest.Invoker{Replies: tt.replies}
			out, err := newVerifier(inv, tt.search, 5).Verify(context.Background(), unchecked("a"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, Undetermined, out.Decision)
		})
	}
}

func TestVerifySystemEmbedsIdea(t *testing.T) {
	inv := llmtest.New(llmtest.QueryReply("", "Decision made: novel."))

	_, err := newVerifier(inv, &fakeSearcher{}, 4).Verify(context.Background(), unchecked("embedded"))
	require.NoError(t, err)
	assert.Contains(t, inv.Calls[0].System, "Theory embedded")
	assert.Contains(t, inv.Calls[0].System, "4 rounds")
	assert.Contains(t, inv.Calls[0].Prompt, "round 1/4")
}

func TestCheckAll(t *testing.T) {
	ideas := []types.Idea{unchecked("a"), unchecked("b"), unchecked("c"), unchecked("d"), unchecked("e")}
	ideas[1].MarkNovel(false)

	inv := &llmtest.Invoker{Replies: []llmtest.Reply{
		{Text: llmtest.QueryReply("", "Decision made: novel.")},     // a
		{Text: llmtest.QueryReply("", "Decision made: not novel.")}, // c
		{Err: types.ErrExternalService},                             // d
		{Text: llmtest.QueryReply("q", "")},                         // e, round 1
		{Text: llmtest.QueryReply("q", "")},                         // e, round 2
	}}

	s := newVerifier(inv, &fakeSearcher{}, 2).CheckAll(context.Background(), ideas)

	assert.Equal(t, 1, s.Novel)
	assert.Equal(t, 1, s.NotNovel)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Undetermined)
	assert.Equal(t, 5, s.Total())
	assert.True(t, s.HasFailures())
	assert.Len(t, s.Results, 5)

	assert.Equal(t, "novel", ideas[0].NoveltyLabel())
	assert.Equal(t, "not novel", ideas[1].NoveltyLabel())
	assert.Equal(t, "not novel", ideas[2].NoveltyLabel())
	assert.Equal(t, "unchecked", ideas[3].NoveltyLabel())
	assert.Equal(t, "unchecked", ideas[4].NoveltyLabel())
}

func TestCheckAllIdempotent(t *testing.T) {
	ideas := []types.Idea{unchecked("a"), unchecked("b")}
	ideas[0].MarkNovel(true)
	ideas[1].MarkNovel(false)
	inv := llmtest.New()

	s := newVerifier(inv, &fakeSearcher{}, 5).CheckAll(context.Background(), ideas)
	assert.Equal(t, 2, s.Skipped)
	assert.Equal(t, 0, inv.Count())
	assert.True(t, ideas[0].IsNovel())
	assert.False(t, ideas[1].IsNovel())
}

func TestDecide(t *testing.T) {
	tests := []struct {
		text string
		want Decision
	}{
		{"decision made: novel", Novel},
		{"Decision made: not novel.", NotNovel},
		{"novel idea, no decision", Undetermined},
		{"decision made:novel", Undetermined},
		{"", Undetermined},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, decide(tt.text), tt.text)
	}
}
