// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompts holds the prompt templates and sentinel phrases that form
// the protocol between the pipeline and the model.
//
// Templates are plain data: a Set is built from the defaults, optionally
// overridden from a YAML file, compiled once, and handed to each stage's
// constructor.
package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/theory-engine/pkg/types"
)

// Sentinel phrases. DoneSentinel is matched case-sensitively; the novelty
// decisions are matched case-insensitively.
const (
	DoneSentinel       = "I am done"
	NovelSentinel      = "decision made: novel"
	NotNovelSentinel   = "decision made: not novel"
	NoResultsText      = "No relevant papers found."
	NoQueryResultsText = "No query has been made yet."
)

// Set is the raw template text for every stage. Empty fields in an override
// file keep the default.
type Set struct {
	HighSystem      string `yaml:"high_system"`
	HighPrompt      string `yaml:"high_prompt"`
	MidSystem       string `yaml:"mid_system"`
	MidPrompt       string `yaml:"mid_prompt"`
	LowSystem       string `yaml:"low_system"`
	LowPrompt       string `yaml:"low_prompt"`
	CoherenceSystem string `yaml:"coherence_system"`
	CoherencePrompt string `yaml:"coherence_prompt"`
	NoveltySystem   string `yaml:"novelty_system"`
	NoveltyPrompt   string `yaml:"novelty_prompt"`
	ValiditySystem  string `yaml:"validity_system"`
	ValidityPrompt  string `yaml:"validity_prompt"`
}

// GenerationData feeds the high, mid, and low generation templates.
type GenerationData struct {
	// Previous summarizes earlier archived ideas at the level's depth.
	Previous string
	// Theory is the title of the just-generated high-level theory.
	Theory string
	// Model is the title of the just-generated mid-level model.
	Model string
}

// RoundData feeds the refinement and novelty templates.
type RoundData struct {
	Round  int
	Rounds int
	High   string
	Mid    string
	Low    string
	// Context is auxiliary text: prior ideas for coherence, last search
	// results for novelty.
	Context string
}

// NewRoundData renders the idea levels as indented JSON.
func NewRoundData(l types.Levels, round, rounds int, context string) (RoundData, error) {
	high, err := indentJSON(l.High)
	if err != nil {
		return RoundData{}, fmt.Errorf("encoding high level: %w", err)
	}
	mid, err := indentJSON(l.Mid)
	if err != nil {
		return RoundData{}, fmt.Errorf("encoding mid level: %w", err)
	}
	low, err := indentJSON(l.Low)
	if err != nil {
		return RoundData{}, fmt.Errorf("encoding low level: %w", err)
	}
	return RoundData{
		Round:   round,
		Rounds:  rounds,
		High:    high,
		Mid:     mid,
		Low:     low,
		Context: context,
	}, nil
}

// indentJSON encodes v with two-space indentation and without HTML escaping.
func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Template is a compiled prompt.
type Template struct {
	tmpl *template.Template
}

// Render executes the template with data.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Pair is a stage's system message and per-turn prompt.
type Pair struct {
	System *Template
	Prompt *Template
}

// Templates is a compiled Set.
type Templates struct {
	High      Pair
	Mid       Pair
	Low       Pair
	Coherence Pair
	Novelty   Pair
	Validity  Pair
}

// Compile parses every template in s.
func (s Set) Compile() (*Templates, error) {
	var t Templates
	specs := []struct {
		name   string
		system string
		prompt string
		dst    *Pair
	}{
		{"high", s.HighSystem, s.HighPrompt, &t.High},
		{"mid", s.MidSystem, s.MidPrompt, &t.Mid},
		{"low", s.LowSystem, s.LowPrompt, &t.Low},
		{"coherence", s.CoherenceSystem, s.CoherencePrompt, &t.Coherence},
		{"novelty", s.NoveltySystem, s.NoveltyPrompt, &t.Novelty},
		{"validity", s.ValiditySystem, s.ValidityPrompt, &t.Validity},
	}
	for _, sp := range specs {
		sys, err := template.New(sp.name + "-system").Option("missingkey=error").Parse(sp.system)
		if err != nil {
			return nil, fmt.Errorf("parsing %s system template: %w", sp.name, err)
		}
		prm, err := template.New(sp.name).Option("missingkey=error").Parse(sp.prompt)
		if err != nil {
			return nil, fmt.Errorf("parsing %s prompt template: %w", sp.name, err)
		}
		sp.dst.System = &Template{tmpl: sys}
		sp.dst.Prompt = &Template{tmpl: prm}
	}
	return &t, nil
}

// MustDefault compiles the built-in Set. It panics only if the built-in
// templates are malformed.
func MustDefault() *Templates {
	t, err := Default().Compile()
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a YAML override file and merges it onto the defaults. An empty
// path returns the defaults.
func Load(path string) (Set, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("reading prompts file: %w", err)
	}
	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Set{}, fmt.Errorf("parsing prompts file %s: %w", path, err)
	}
	s.merge(override)
	return s, nil
}

func (s *Set) merge(o Set) {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&s.HighSystem, o.HighSystem)
	pick(&s.HighPrompt, o.HighPrompt)
	pick(&s.MidSystem, o.MidSystem)
	pick(&s.MidPrompt, o.MidPrompt)
	pick(&s.LowSystem, o.LowSystem)
	pick(&s.LowPrompt, o.LowPrompt)
	pick(&s.CoherenceSystem, o.CoherenceSystem)
	pick(&s.CoherencePrompt, o.CoherencePrompt)
	pick(&s.NoveltySystem, o.NoveltySystem)
	pick(&s.NoveltyPrompt, o.NoveltyPrompt)
	pick(&s.ValiditySystem, o.ValiditySystem)
	pick(&s.ValidityPrompt, o.ValidityPrompt)
}
