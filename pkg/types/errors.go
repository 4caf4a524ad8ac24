// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Failure classes. Components wrap these with context so that callers can
// branch with errors.Is. The first three abort only the current idea; a
// precondition violation aborts the whole stage.
var (
	// ErrExtraction means no parseable structured payload was found in a
	// model response.
	ErrExtraction = errors.New("no structured payload in response")

	// ErrExternalService means the model or search backend returned an error.
	ErrExternalService = errors.New("external service failure")

	// ErrStructural means a payload parsed but lacks required keys, or a
	// decision round produced neither a decision nor a usable query.
	ErrStructural = errors.New("structural violation")

	// ErrPrecondition means a stage was invoked on an archive that cannot
	// satisfy it.
	ErrPrecondition = errors.New("precondition violation")
)
