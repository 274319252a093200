// Package memory provides an in-memory implementation of the score cache.
// Entries live for the process lifetime only; every run starts cold.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.ScoreCache = (*Cache)(nil)

// dimensionKey identifies a dimension entry.
type dimensionKey struct {
	key domain.Hash
	tag domain.DimensionTag
}

// Cache is an in-memory content-addressed score cache. Reads update
// recency state, so all access goes through one mutex.
type Cache struct {
	mu         sync.Mutex
	embeddings map[domain.Hash][]float32
	access     map[domain.Hash]int64
	clock      int64
	dimensions map[dimensionKey]float64
	maxEntries int

	hits      int64
	misses    int64
	evictions int64
	closed    bool
}

// NewCache creates an in-memory cache. maxEntries bounds the embedding
// entry count with least-recently-used eviction; 0 means unbounded.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		embeddings: make(map[domain.Hash][]float32),
		access:     make(map[domain.Hash]int64),
		dimensions: make(map[dimensionKey]float64),
		maxEntries: maxEntries,
	}
}

// GetEmbedding returns the embedding stored for a node hash.
func (c *Cache) GetEmbedding(_ context.Context, hash domain.Hash) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, domain.ErrCacheClosed
	}

	vector, ok := c.embeddings[hash]
	if !ok {
		c.misses++
		return nil, domain.ErrNotFound
	}

	c.clock++
	c.access[hash] = c.clock
	c.hits++

	// Callers may retain the slice; hand out a copy.
	out := make([]float32, len(vector))
	copy(out, vector)
	return out, nil
}

// PutEmbedding stores an embedding under a node hash. A hash's vector
// never changes, so a second put for the same hash is a no-op.
func (c *Cache) PutEmbedding(_ context.Context, hash domain.Hash, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrCacheClosed
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding vector", domain.ErrInvalidInput)
	}

	if _, ok := c.embeddings[hash]; ok {
		return nil
	}

	stored := make([]float32, len(vector))
	copy(stored, vector)
	c.embeddings[hash] = stored
	c.clock++
	c.access[hash] = c.clock

	c.prune()
	return nil
}

// GetDimension returns a dimension value stored under a score key and tag.
func (c *Cache) GetDimension(_ context.Context, key domain.Hash, tag domain.DimensionTag) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, domain.ErrCacheClosed
	}

	value, ok := c.dimensions[dimensionKey{key: key, tag: tag}]
	if !ok {
		c.misses++
		return 0, domain.ErrNotFound
	}

	c.hits++
	return value, nil
}

// PutDimension stores a dimension value. Write-once, like embeddings.
func (c *Cache) PutDimension(_ context.Context, key domain.Hash, tag domain.DimensionTag, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrCacheClosed
	}

	dk := dimensionKey{key: key, tag: tag}
	if _, ok := c.dimensions[dk]; ok {
		return nil
	}
	c.dimensions[dk] = value
	return nil
}

// Stats reports entry counts and this session's counters.
func (c *Cache) Stats(_ context.Context) (domain.CacheStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.CacheStats{}, domain.ErrCacheClosed
	}

	return domain.CacheStats{
		Embeddings: int64(len(c.embeddings)),
		Dimensions: int64(len(c.dimensions)),
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}, nil
}

// Clear removes every entry. Counters keep running.
func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrCacheClosed
	}

	c.embeddings = make(map[domain.Hash][]float32)
	c.access = make(map[domain.Hash]int64)
	c.dimensions = make(map[dimensionKey]float64)
	return nil
}

// Close releases the maps. Closing twice is a no-op; other methods fail
// with domain.ErrCacheClosed afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}

	c.closed = true
	c.embeddings = nil
	c.access = nil
	c.dimensions = nil
	return nil
}

// prune evicts least recently used embeddings past the entry bound.
// Caller holds the mutex.
func (c *Cache) prune() {
	if c.maxEntries <= 0 {
		return
	}

	for len(c.embeddings) > c.maxEntries {
		var oldest domain.Hash
		oldestAt := int64(0)
		for hash, at := range c.access {
			if oldestAt == 0 || at < oldestAt {
				oldest = hash
				oldestAt = at
			}
		}
		delete(c.embeddings, oldest)
		delete(c.access, oldest)
		c.evictions++
	}
}
