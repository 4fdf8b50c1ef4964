package core

import "errors"

var (
	// ErrEmptyQuery is returned when a required query string is empty.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrInvalidBudget is returned for a non-positive token budget.
	ErrInvalidBudget = errors.New("token budget must be positive")

	// ErrDimensionMismatch is returned when two vectors being compared
	// have different lengths.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbedderRequired is returned by dedup/prioritize stages invoked
	// without an embedding source.
	ErrEmbedderRequired = errors.New("embedding provider required")

	// ErrEmbeddingUnavailable is returned when no embedding source can be
	// constructed from the configuration.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
)
