// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists the ordered idea collection as ideas.json.
//
// The archive is read once at the start of a stage and rewritten wholesale
// at its end. Writes go through a temporary file and a rename so readers
// never see a partial file. Concurrent stages on one archive are not
// supported.
package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/theory-engine/internal/parse"
	"github.com/pdiddy/theory-engine/pkg/types"
)

// FileName is the archive's file name inside the archive directory.
const FileName = "ideas.json"

// ErrNotFound is returned by Load when the archive file does not exist.
var ErrNotFound = errors.New("archive not found")

// Archive is the ideas.json file in one directory. It remembers the bytes
// of the last document it read or wrote, so that entries a stage leaves
// alone are saved back exactly as they were found. An Archive is not safe
// for concurrent use.
type Archive struct {
	path   string
	loaded *snapshot
}

// snapshot is a document as read from disk.
type snapshot struct {
	data    []byte
	entries []origin
}

// origin is one entry as read: its bytes, the canonical encoding of its
// levels, and its novelty flag.
type origin struct {
	raw    json.RawMessage
	levels []byte
	novel  *bool
}

// New returns the archive stored in dir.
func New(dir string) *Archive {
	return &Archive{path: filepath.Join(dir, FileName)}
}

// Path returns the archive file path.
func (a *Archive) Path() string { return a.path }

// Load reads and validates the archive. Any malformed entry fails the whole
// load; there is no partial recovery.
func (a *Archive) Load() ([]types.Idea, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", a.path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	ideas, entries, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.path, err)
	}
	a.loaded = &snapshot{data: data, entries: entries}
	return ideas, nil
}

// LoadOrEmpty is Load, except that a missing archive yields no ideas.
func (a *Archive) LoadOrEmpty() ([]types.Idea, error) {
	ideas, err := a.Load()
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return ideas, err
}

// Save atomically replaces the archive with ideas. Entries unchanged since
// the last Load keep their original bytes; when nothing changed the file is
// rewritten exactly as it was read.
func (a *Archive) Save(ideas []types.Idea) error {
	data, err := a.render(ideas)
	if err != nil {
		return err
	}

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ideas-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, syncErr, closeErr); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing archive: %w", err)
	}

	if err := os.Rename(tmpPath, a.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing archive: %w", err)
	}

	if _, entries, err := decode(data); err == nil {
		a.loaded = &snapshot{data: data, entries: entries}
	} else {
		a.loaded = nil
	}
	return nil
}

// render encodes ideas, reusing the loaded bytes where possible.
func (a *Archive) render(ideas []types.Idea) ([]byte, error) {
	var entries []origin
	if a.loaded != nil {
		entries = a.loaded.entries
	}

	parts := make([][]byte, len(ideas))
	verbatim := len(ideas) == len(entries)
	for i, idea := range ideas {
		var o *origin
		if i < len(entries) {
			o = &entries[i]
		}
		part, same, err := renderEntry(idea, o)
		if err != nil {
			return nil, err
		}
		parts[i] = part
		verbatim = verbatim && same
	}

	if verbatim && a.loaded != nil {
		return a.loaded.data, nil
	}
	return join(parts), nil
}

// renderEntry returns the bytes for one entry and whether they are the
// loaded bytes unchanged. An entry whose levels are untouched keeps its
// bytes; a novelty flag recorded since the load is appended to them.
func renderEntry(idea types.Idea, o *origin) ([]byte, bool, error) {
	if o != nil {
		levels, err := json.Marshal(idea.Levels())
		if err != nil {
			return nil, false, fmt.Errorf("encoding archive: %w", err)
		}
		if bytes.Equal(levels, o.levels) {
			switch {
			case sameFlag(o.novel, idea.Novel):
				return o.raw, true, nil
			case o.novel == nil:
				return appendNovel(o.raw, *idea.Novel), false, nil
			}
		}
	}
	part, err := encodeEntry(idea)
	return part, false, err
}

func sameFlag(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// appendNovel adds the novel key as the last member of a loaded entry.
func appendNovel(raw json.RawMessage, novel bool) []byte {
	end := bytes.LastIndexByte(raw, '}')
	body := bytes.TrimRight(raw[:end], " \t\r\n")
	var b bytes.Buffer
	b.Write(body)
	fmt.Fprintf(&b, ",\n        \"novel\": %t", novel)
	b.Write(raw[len(body):])
	return b.Bytes()
}

// encodeEntry renders one entry at array depth with four-space indentation.
func encodeEntry(idea types.Idea) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("    ", "    ")
	if err := enc.Encode(idea); err != nil {
		return nil, fmt.Errorf("encoding archive: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func join(parts [][]byte) []byte {
	if len(parts) == 0 {
		return []byte("[]\n")
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n    ")
		buf.Write(p)
	}
	buf.WriteString("\n]\n")
	return buf.Bytes()
}

// Encode renders ideas as the ideas.json document. An empty collection
// encodes as an empty array.
func Encode(ideas []types.Idea) ([]byte, error) {
	parts := make([][]byte, len(ideas))
	for i, idea := range ideas {
		part, err := encodeEntry(idea)
		if err != nil {
			return nil, err
		}
		parts[i] = part
	}
	return join(parts), nil
}

// Decode parses and validates an ideas.json document.
func Decode(data []byte) ([]types.Idea, error) {
	ideas, _, err := decode(data)
	return ideas, err
}

func decode(data []byte) ([]types.Idea, []origin, error) {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil, fmt.Errorf("archive is not a JSON array: %w", types.ErrStructural)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil, fmt.Errorf("archive is not a JSON array: %w", err)
	}

	ideas := make([]types.Idea, 0, len(entries))
	origins := make([]origin, 0, len(entries))
	for i, raw := range entries {
		idea, err := decodeEntry(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("entry %d: %w", i, err)
		}
		levels, err := json.Marshal(idea.Levels())
		if err != nil {
			return nil, nil, fmt.Errorf("entry %d: %w", i, err)
		}
		ideas = append(ideas, idea)
		origins = append(origins, origin{raw: raw, levels: levels, novel: idea.Novel})
	}
	return ideas, origins, nil
}

func decodeEntry(raw json.RawMessage) (types.Idea, error) {
	var obj parse.Object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return types.Idea{}, fmt.Errorf("not an object: %w", types.ErrStructural)
	}

	var novel *bool
	if v, ok := obj["novel"]; ok {
		var b bool
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return types.Idea{}, fmt.Errorf("novel is null: %w", types.ErrStructural)
		}
		if err := json.Unmarshal(v, &b); err != nil {
			return types.Idea{}, fmt.Errorf("novel is not a boolean: %w", types.ErrStructural)
		}
		novel = &b
		delete(obj, "novel")
	}

	levels, err := parse.LevelsFrom(obj)
	if err != nil {
		return types.Idea{}, err
	}
	idea := types.NewIdea(levels)
	idea.Novel = novel
	return idea, nil
}

// RequireNovel fails with types.ErrPrecondition unless at least one idea is
// explicitly marked novel.
func RequireNovel(ideas []types.Idea) error {
	for _, idea := range ideas {
		if idea.IsNovel() {
			return nil
		}
	}
	return fmt.Errorf("no idea in the archive is marked novel: %w", types.ErrPrecondition)
}

// ExportYAML writes ideas as a YAML document to w.
func ExportYAML(w io.Writer, ideas []types.Idea) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ideas); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
