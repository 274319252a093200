package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Cache misses are reported with this sentinel.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedStructure indicates a page that cannot produce a
	// well-formed content tree (no content, empty sections).
	ErrMalformedStructure = errors.New("malformed page structure")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or not reachable. Candidates that need fresh embeddings
	// are rejected while it persists; cached content still scores.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDependencyTable indicates the dependency table and the
	// registered scorers disagree. Fatal at startup: a mismatch would
	// silently skip recomputation.
	ErrDependencyTable = errors.New("dependency table inconsistent")

	// ErrRunInProgress indicates an optimization run is already active.
	ErrRunInProgress = errors.New("optimization run in progress")

	// ErrCacheClosed indicates the score cache has been closed.
	ErrCacheClosed = errors.New("cache closed")

	// ErrRateLimited indicates the embedding API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
