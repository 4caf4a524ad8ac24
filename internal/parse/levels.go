// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"encoding/json"
	"fmt"

	"github.com/pdiddy/theory-engine/pkg/types"
)

// Levels extracts a three-level idea from text. The payload must be an
// object with exactly the High-Level, Mid-Level, and Low-Level keys, and
// each level must carry all of its required fields.
func Levels(text string) (types.Levels, error) {
	obj, err := ExtractWithFallback(text, "")
	if err != nil {
		return types.Levels{}, err
	}
	return LevelsFrom(obj)
}

// LevelsFrom validates and decodes an already-extracted payload.
func LevelsFrom(obj Object) (types.Levels, error) {
	if err := obj.Require(types.LevelKeys...); err != nil {
		return types.Levels{}, err
	}
	if len(obj) != len(types.LevelKeys) {
		return types.Levels{}, fmt.Errorf("payload has %d keys, want the %d level keys: %w",
			len(obj), len(types.LevelKeys), types.ErrStructural)
	}

	var l types.Levels
	if err := decodeLevel(obj[types.KeyHighLevel], types.KeyHighLevel, types.HighLevelFields, &l.High); err != nil {
		return types.Levels{}, err
	}
	if err := decodeLevel(obj[types.KeyMidLevel], types.KeyMidLevel, types.MidLevelFields, &l.Mid); err != nil {
		return types.Levels{}, err
	}
	if err := decodeLevel(obj[types.KeyLowLevel], types.KeyLowLevel, types.LowLevelFields, &l.Low); err != nil {
		return types.Levels{}, err
	}
	return l, nil
}

// High extracts a standalone high-level theory.
func High(text string) (types.HighLevelTheory, error) {
	var h types.HighLevelTheory
	err := single(text, "high-level theory", types.HighLevelFields, &h)
	return h, err
}

// Mid extracts a standalone mid-level model.
func Mid(text string) (types.MidLevelModel, error) {
	var m types.MidLevelModel
	err := single(text, "mid-level model", types.MidLevelFields, &m)
	return m, err
}

// Low extracts a standalone low-level mechanism.
func Low(text string) (types.LowLevelMechanism, error) {
	var l types.LowLevelMechanism
	err := single(text, "low-level mechanism", types.LowLevelFields, &l)
	return l, err
}

func single(text, name string, required []string, v any) error {
	obj, err := ExtractWithFallback(text, "")
	if err != nil {
		return fmt.Errorf("extracting %s: %w", name, err)
	}
	if err := obj.Require(required...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("re-encoding %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %v: %w", name, err, types.ErrStructural)
	}
	return nil
}

func decodeLevel(raw json.RawMessage, key string, required []string, v any) error {
	var fields Object
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("%s is not an object: %w", key, types.ErrStructural)
	}
	if err := fields.Require(required...); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %v: %w", key, err, types.ErrStructural)
	}
	return nil
}
