package ai

import "errors"

var (
	// ErrModelUnavailable indicates that a backend model could not be
	// loaded or reached. Embedder constructors fail fast with this error
	// so callers can degrade deterministically instead of failing on
	// first use.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrEmptyResult indicates a backend returned no output for a request.
	ErrEmptyResult = errors.New("backend returned empty result")
)
