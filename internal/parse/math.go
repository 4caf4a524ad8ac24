// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// escapeMath doubles backslashes inside JSON strings that do not form a
// valid JSON escape. Single-letter escapes such as \n or \t are kept only
// when not followed by another letter, so \nabla and \tau survive as text.
func escapeMath(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inString = false
			b.WriteByte(c)
		case '\\':
			if i+1 < len(s) && validEscape(s, i) {
				b.WriteByte(c)
				b.WriteByte(s[i+1])
				i++
				continue
			}
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// validEscape reports whether the backslash at s[i] starts a JSON escape
// that was meant as one.
func validEscape(s string, i int) bool {
	next := s[i+1]
	switch next {
	case '"', '\\', '/':
		return true
	case 'u':
		if i+5 < len(s) {
			for _, h := range s[i+2 : i+6] {
				if !strings.ContainsRune("0123456789abcdefABCDEF", h) {
					return false
				}
			}
			return true
		}
		return false
	case 'b', 'f', 'n', 'r', 't':
		return i+2 >= len(s) || !isLetter(s[i+2])
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// recoverField pulls a single field out of text that does not decode as
// JSON. gjson tolerates most damage; a quoted-value scan covers the rest.
func recoverField(text, field string) (json.RawMessage, bool) {
	res := gjson.Get(text, gjson.Escape(field))
	if res.Exists() {
		if res.Type == gjson.String {
			raw, err := json.Marshal(res.String())
			if err == nil {
				return raw, true
			}
		}
		if res.Raw != "" {
			return json.RawMessage(res.Raw), true
		}
	}

	re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	raw, err := json.Marshal(unescapeLoose(m[1]))
	if err != nil {
		return nil, false
	}
	return raw, true
}

// unescapeLoose resolves \" and \\ and keeps every other backslash as text.
func unescapeLoose(s string) string {
	r := strings.NewReplacer(`\"`, `"`, `\\`, `\`)
	return r.Replace(s)
}
