package driven

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

// ScoreCache is the content-addressed store for embeddings and dimension
// values. Keys are content hashes, so identical content shares entries
// across documents, candidates, and runs.
//
// Entries are write-once: a hash's value never changes, and a second Put
// for an existing key is an idempotent no-op. Lookups report misses with
// domain.ErrNotFound.
type ScoreCache interface {
	// GetEmbedding returns the embedding stored for a node hash.
	GetEmbedding(ctx context.Context, hash domain.Hash) ([]float32, error)

	// PutEmbedding stores an embedding under a node hash.
	PutEmbedding(ctx context.Context, hash domain.Hash, vector []float32) error

	// GetDimension returns a dimension value stored under a score key
	// (see domain.ScoreKey) and dimension tag.
	GetDimension(ctx context.Context, key domain.Hash, tag domain.DimensionTag) (float64, error)

	// PutDimension stores a dimension value.
	PutDimension(ctx context.Context, key domain.Hash, tag domain.DimensionTag, value float64) error

	// Stats reports entry counts and hit/miss counters.
	Stats(ctx context.Context) (domain.CacheStats, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases resources. Further calls fail with
	// domain.ErrCacheClosed.
	Close() error
}
