// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns free-form model output into structured payloads.
//
// A response is expected to carry exactly one fenced JSON block, optionally
// surrounded by reasoning prose. The strict path decodes the fenced block,
// tolerating stray control characters and trailing commas. When that fails on
// text containing mathematical notation (LaTeX commands whose backslashes
// break JSON escapes), a permissive path repairs the escapes and, as a last
// resort, recovers the single requested field. Nothing is fabricated: when no
// block can be found the error wraps types.ErrExtraction.
package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/theory-engine/pkg/types"
)

const fence = "```"

var (
	// trailingComma matches a comma directly before a closing brace or bracket.
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

	// mathNotation matches LaTeX commands or inline $...$ spans.
	mathNotation = regexp.MustCompile(`\\[A-Za-z]{2,}|\$[^$\n]+\$`)
)

// Object is a decoded top-level JSON object whose values are left raw.
type Object map[string]json.RawMessage

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String decodes the value at key as a string. A missing key returns
// ok=false; a non-string value is rendered as its raw JSON text.
func (o Object) String(key string) (string, bool) {
	raw, ok := o[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return strings.TrimSpace(string(raw)), true
	}
	return s, true
}

// Require returns an ErrStructural error naming the first missing key.
func (o Object) Require(keys ...string) error {
	for _, k := range keys {
		if !o.Has(k) {
			return fmt.Errorf("missing required key %q: %w", k, types.ErrStructural)
		}
	}
	return nil
}

// ExtractJSON returns the raw text of the first fenced block that decodes as
// a JSON object. If no fenced block decodes, the outermost brace-delimited
// span of text is tried. The returned bytes are exactly the payload when it
// decodes without repair.
func ExtractJSON(text string) (json.RawMessage, error) {
	for _, cand := range candidates(text) {
		if payload, ok := decodeCandidate(cand); ok {
			return payload, nil
		}
	}
	return nil, fmt.Errorf("searching %d bytes of response: %w", len(text), types.ErrExtraction)
}

// Extract decodes the structured payload of text into an Object using the
// strict path only.
func Extract(text string) (Object, error) {
	payload, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	return decodeObject(payload)
}

// ExtractWithFallback runs the strict path and, when it fails on text that
// contains mathematical notation, the permissive path. If the permissive
// path cannot decode a full object and field is non-empty, it returns an
// Object holding only field. Any other failure wraps types.ErrExtraction.
func ExtractWithFallback(text, field string) (Object, error) {
	obj, err := Extract(text)
	if err == nil {
		return obj, nil
	}
	if !HasMath(text) {
		return nil, err
	}

	cands := candidates(text)
	for _, cand := range cands {
		repaired := normalize(escapeMath(cand))
		if payload, ok := decodeCandidate(repaired); ok {
			return decodeObject(payload)
		}
	}

	if field == "" {
		return nil, err
	}
	for _, cand := range cands {
		if raw, ok := recoverField(escapeMath(cand), field); ok {
			return Object{field: raw}, nil
		}
	}
	return nil, err
}

// ExtractField returns the string value of field from the payload of text,
// using the permissive path when needed. A payload without the field wraps
// types.ErrStructural.
func ExtractField(text, field string) (string, error) {
	obj, err := ExtractWithFallback(text, field)
	if err != nil {
		return "", err
	}
	v, ok := obj.String(field)
	if !ok {
		return "", fmt.Errorf("payload has no %q field: %w", field, types.ErrStructural)
	}
	return v, nil
}

// HasMath reports whether text contains LaTeX-style notation.
func HasMath(text string) bool {
	return mathNotation.MatchString(text)
}

// candidates lists the fenced block bodies of text, json-tagged blocks
// first, then the outermost brace span as a final candidate.
func candidates(text string) []string {
	var tagged, plain []string
	rest := text
	for {
		start := strings.Index(rest, fence)
		if start < 0 {
			break
		}
		afterOpen := rest[start+len(fence):]
		nl := strings.IndexByte(afterOpen, '\n')
		lang := ""
		body := afterOpen
		if nl >= 0 {
			lang = strings.TrimSpace(afterOpen[:nl])
			body = afterOpen[nl+1:]
		}
		end := strings.Index(body, fence)
		if end < 0 {
			// Unterminated fence: take everything that follows.
			addCandidate(&tagged, &plain, lang, body)
			break
		}
		addCandidate(&tagged, &plain, lang, body[:end])
		rest = body[end+len(fence):]
	}

	out := append(tagged, plain...)
	if span, ok := braceSpan(text); ok {
		out = append(out, span)
	}
	return out
}

func addCandidate(tagged, plain *[]string, lang, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	if strings.EqualFold(lang, "json") {
		*tagged = append(*tagged, body)
		return
	}
	*plain = append(*plain, body)
}

// braceSpan returns the text from the first '{' to the last '}'.
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// decodeCandidate returns cand (or a normalized copy) when it decodes as a
// JSON object.
func decodeCandidate(cand string) (json.RawMessage, bool) {
	if isObject([]byte(cand)) {
		return json.RawMessage(cand), true
	}
	fixed := normalize(cand)
	if isObject([]byte(fixed)) {
		return json.RawMessage(fixed), true
	}
	return nil, false
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return false
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal(b, &obj) == nil
}

func decodeObject(payload json.RawMessage) (Object, error) {
	var obj Object
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, fmt.Errorf("decoding payload: %v: %w", err, types.ErrExtraction)
	}
	return obj, nil
}

// normalize replaces control characters with spaces and drops trailing
// commas before closing delimiters.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
	return trailingComma.ReplaceAllString(s, "$1")
}
