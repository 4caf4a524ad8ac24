// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/theory-engine/internal/llm/llmtest"
	"github.com/pdiddy/theory-engine/pkg/types"
)

func sampleIdeas() []types.Idea {
	a := types.NewIdea(llmtest.SampleLevels("a"))
	b := types.NewIdea(llmtest.SampleLevels("b"))
	b.MarkNovel(true)
	c := types.NewIdea(llmtest.SampleLevels("c"))
	c.MarkNovel(false)
	return []types.Idea{a, b, c}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "nested", "dir"))
	ideas := sampleIdeas()

	require.NoError(t, a.Save(ideas))
	got, err := a.Load()
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, ideas, got)
	assert.False(t, got[0].Checked())
	assert.True(t, got[1].IsNovel())
	assert.True(t, got[2].Checked())
	assert.False(t, got[2].IsNovel())
}

func TestSaveIsByteIdenticalAfterReload(t *testing.T) {
	a := New(t.TempDir())
	require.NoError(t, a.Save(sampleIdeas()))
	first, err := os.ReadFile(a.Path())
	require.NoError(t, err)

	ideas, err := a.Load()
	require.NoError(t, err)
	require.NoError(t, a.Save(ideas))
	second, err := os.ReadFile(a.Path())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestEncodeFormat(t *testing.T) {
	data, err := Encode(sampleIdeas()[1:2])
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "[\n    {\n        \"High-Level\": {"), text)
	assert.Contains(t, text, `"Significance": 8`)
	assert.Contains(t, text, `"novel": true`)
	assert.Less(t, strings.Index(text, `"Low-Level"`), strings.Index(text, `"novel"`))
}

func TestEncodeOmitsUnsetNovel(t *testing.T) {
	data, err := Encode(sampleIdeas()[:1])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "novel")
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestEncodeKeepsSpecialCharacters(t *testing.T) {
	l := llmtest.SampleLevels("x")
	l.High.Description = `uses <b>tags</b> & \alpha`
	data, err := Encode([]types.Idea{types.NewIdea(l)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `uses <b>tags</b> & \\alpha`)
}

func TestLoadMissing(t *testing.T) {
	a := New(t.TempDir())

	_, err := a.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	ideas, err := a.LoadOrEmpty()
	require.NoError(t, err)
	assert.Empty(t, ideas)
}

func TestLoadMalformed(t *testing.T) {
	valid, err := Encode(sampleIdeas()[:1])
	require.NoError(t, err)
	entry := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(string(valid)), "["), "]")

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"not json", "this is not json", nil},
		{"object instead of array", `{"High-Level": {}}`, nil},
		{"null document", "null", types.ErrStructural},
		{"null document with whitespace", "  \n null", types.ErrStructural},
		{"novel null", "[" + strings.Replace(entry, `"High-Level"`, `"novel": null, "High-Level"`, 1) + "]", types.ErrStructural},
		{"entry missing level", `[{"High-Level": {"Name": "n", "Title": "t", "Description": "d", "Significance": 1}}]`, types.ErrStructural},
		{"novel not a bool", "[" + strings.Replace(entry, `"High-Level"`, `"novel": "yes", "High-Level"`, 1) + "]", types.ErrStructural},
		{"second entry bad", "[" + entry + `, {"High-Level": 1, "Mid-Level": 2, "Low-Level": 3}]`, types.ErrStructural},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0o644))

			ideas, err := New(dir).Load()
			require.Error(t, err)
			assert.Nil(t, ideas)
			assert.NotErrorIs(t, err, ErrNotFound)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// foreignArchive is laid out the way Python's json.dump(indent=4) writes it:
// ASCII escapes, no trailing newline, and an extra key in one level.
const foreignArchive = `[
    {
        "High-Level": {
            "Name": "cafe_theory",
            "Title": "Caf\u00e9 theory",
            "Description": "A decided idea.",
            "Significance": 8
        },
        "Mid-Level": {
            "Name": "model",
            "Title": "Model",
            "Description": "Mid.",
            "Theoretical_Basis": "Basis.",
            "Relation_to_Theory": "Relation.",
            "Feasibility": 7,
            "Notes": "extra"
        },
        "Low-Level": {
            "Name": "mechanism",
            "Title": "Mechanism",
            "Description": "Low.",
            "Biological_Basis": "Biology.",
            "Relation_to_Model": "Relation.",
            "Testability": 6
        },
        "novel": true
    },
    {
        "High-Level": {
            "Name": "second",
            "Title": "Second \u2013 theory",
            "Description": "An unchecked idea.",
            "Significance": 5
        },
        "Mid-Level": {
            "Name": "model2",
            "Title": "Model 2",
            "Description": "Mid.",
            "Theoretical_Basis": "Basis.",
            "Relation_to_Theory": "Relation.",
            "Feasibility": 5,
            "Notes": "kept"
        },
        "Low-Level": {
            "Name": "mechanism2",
            "Title": "Mechanism 2",
            "Description": "Low.",
            "Biological_Basis": "Biology.",
            "Relation_to_Model": "Relation.",
            "Testability": 5
        }
    }
]`

func writeForeign(t *testing.T) *Archive {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(foreignArchive), 0o644))
	return New(dir)
}

// firstEntry returns the first entry of foreignArchive as written.
func firstEntry() string {
	start := strings.Index(foreignArchive, "{")
	end := strings.Index(foreignArchive, "\n    },") + len("\n    }")
	return foreignArchive[start:end]
}

func TestSaveUnchangedForeignArchiveIsByteIdentical(t *testing.T) {
	a := writeForeign(t)
	ideas, err := a.Load()
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Café theory", ideas[0].High.Title)

	require.NoError(t, a.Save(ideas))
	got, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	assert.Equal(t, foreignArchive, string(got))
}

func TestSaveKeepsUntouchedEntriesVerbatim(t *testing.T) {
	a := writeForeign(t)
	ideas, err := a.Load()
	require.NoError(t, err)

	ideas[1].MarkNovel(false)
	require.NoError(t, a.Save(ideas))
	got, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	text := string(got)

	assert.Contains(t, text, firstEntry(), "decided entry is written back unchanged")
	assert.Contains(t, text, `"Title": "Second \u2013 theory"`)
	assert.Contains(t, text, `"Notes": "kept"`)
	assert.Contains(t, text, `"novel": false`)

	reloaded, err := New(filepath.Dir(a.Path())).Load()
	require.NoError(t, err)
	assert.True(t, reloaded[0].IsNovel())
	assert.Equal(t, "not novel", reloaded[1].NoveltyLabel())
}

func TestSaveReencodesRewrittenEntry(t *testing.T) {
	a := writeForeign(t)
	ideas, err := a.Load()
	require.NoError(t, err)

	ideas[0].SetLevels(llmtest.SampleLevels("rewritten"))
	require.NoError(t, a.Save(ideas))
	got, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	text := string(got)

	assert.NotContains(t, text, "cafe_theory")
	assert.Contains(t, text, `"Title": "Theory rewritten"`)
	assert.Contains(t, text, `"Notes": "kept"`, "untouched entry keeps its extra key")

	reloaded, err := New(filepath.Dir(a.Path())).Load()
	require.NoError(t, err)
	assert.True(t, reloaded[0].IsNovel(), "rewriting levels keeps the flag")
}

func TestSaveAfterSaveIsStable(t *testing.T) {
	a := writeForeign(t)
	ideas, err := a.Load()
	require.NoError(t, err)
	ideas[1].MarkNovel(true)
	require.NoError(t, a.Save(ideas))
	first, err := os.ReadFile(a.Path())
	require.NoError(t, err)

	require.NoError(t, a.Save(ideas))
	second, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)
	require.NoError(t, a.Save(sampleIdeas()))
	require.NoError(t, a.Save(sampleIdeas()[:1]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())

	ideas, err := a.Load()
	require.NoError(t, err)
	assert.Len(t, ideas, 1)
}

func TestRequireNovel(t *testing.T) {
	notNovel := func(tag string) types.Idea {
		i := types.NewIdea(llmtest.SampleLevels(tag))
		i.MarkNovel(false)
		return i
	}

	tests := []struct {
		name    string
		ideas   []types.Idea
		wantErr bool
	}{
		{"empty archive", nil, true},
		{"all not novel", []types.Idea{notNovel("a"), notNovel("b")}, true},
		{"only unchecked", []types.Idea{types.NewIdea(llmtest.SampleLevels("a"))}, true},
		{"one novel", sampleIdeas(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireNovel(tt.ideas)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrPrecondition)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportYAML(&buf, sampleIdeas()))
	out := buf.String()

	assert.Contains(t, out, "high_level:")
	assert.Contains(t, out, "title: Theory a")
	assert.Contains(t, out, "significance: 8")
	assert.Contains(t, out, "novel: true")
	assert.Contains(t, out, "theoretical_basis: Basis b.")
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(&buf, sampleIdeas())
	out := buf.String()

	assert.Contains(t, out, "Novelty")
	assert.Contains(t, out, "Theory a")
	assert.Contains(t, out, "unchecked")
	assert.Contains(t, out, "not novel")
	assert.Contains(t, out, "3 ideas, 1 novel")
}

func TestFormatTableTruncatesOnRunes(t *testing.T) {
	l := llmtest.SampleLevels("x")
	l.High.Title = strings.Repeat("α", 60)

	var buf bytes.Buffer
	FormatTable(&buf, []types.Idea{types.NewIdea(l)})
	out := buf.String()

	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("α", 37)+"...")
	assert.NotContains(t, out, strings.Repeat("α", 38))
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(&buf, nil)
	assert.Equal(t, "No ideas in archive.\n", buf.String())
}
