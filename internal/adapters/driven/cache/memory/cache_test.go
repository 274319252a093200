package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

func TestEmbedding_RoundTrip(t *testing.T) {
	cache := NewCache(0)
	ctx := context.Background()
	hash := domain.HashLeaf(domain.LevelMicro, "the quick brown fox")

	require.NoError(t, cache.PutEmbedding(ctx, hash, []float32{0.5, -1.5}))

	got, err := cache.GetEmbedding(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1.5}, got)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Embeddings)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestEmbedding_Miss(t *testing.T) {
	cache := NewCache(0)
	ctx := context.Background()

	_, err := cache.GetEmbedding(ctx, domain.HashLeaf(domain.LevelMicro, "absent"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestEmbedding_WriteOnce(t *testing.T) {
	cache := NewCache(0)
	ctx := context.Background()
	hash := domain.HashLeaf(domain.LevelMicro, "stable content")

	require.NoError(t, cache.PutEmbedding(ctx, hash, []float32{1, 2}))
	require.NoError(t, cache.PutEmbedding(ctx, hash, []float32{7, 7}))

	got, err := cache.GetEmbedding(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, got, "first write wins")
}

func TestEmbedding_EmptyVectorRejected(t *testing.T) {
	cache := NewCache(0)

	err := cache.PutEmbedding(context.Background(), domain.HashLeaf(domain.LevelMicro, "x"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEmbedding_ReturnsCopy(t *testing.T) {
	cache := NewCache(0)
	ctx := context.Background()
	hash := domain.HashLeaf(domain.LevelMicro, "guarded")

	require.NoError(t, cache.PutEmbedding(ctx, hash, []float32{1, 2, 3}))

	first, err := cache.GetEmbedding(ctx, hash)
	require.NoError(t, err)
	first[0] = 99

	second, err := cache.GetEmbedding(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, second, "mutating a returned slice must not corrupt the entry")
}

func TestEmbedding_LRUEviction(t *testing.T) {
	cache := NewCache(2)
	ctx := context.Background()

	hashA := domain.HashLeaf(domain.LevelMicro, "entry a")
	hashB := domain.HashLeaf(domain.LevelMicro, "entry b")
	hashC := domain.HashLeaf(domain.LevelMicro, "entry c")

	require.NoError(t, cache.PutEmbedding(ctx, hashA, []float32{1}))
	require.NoError(t, cache.PutEmbedding(ctx, hashB, []float32{2}))

	// Touch A so B becomes the least recently used entry.
	_, err := cache.GetEmbedding(ctx, hashA)
	require.NoError(t, err)

	require.NoError(t, cache.PutEmbedding(ctx, hashC, []float32{3}))

	_, err = cache.GetEmbedding(ctx, hashB)
	assert.ErrorIs(t, err, domain.ErrNotFound, "least recently used entry should be evicted")

	_, err = cache.GetEmbedding(ctx, hashA)
	assert.NoError(t, err)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, int64(2), stats.Embeddings)
}

func TestDimension_RoundTripAndWriteOnce(t *testing.T) {
	cache := NewCache(0)
	ctx := context.Background()
	key := domain.HashLeaf(domain.LevelMega, "score key")
	tag := domain.DimensionTag("keyword_alignment")

	require.NoError(t, cache.PutDimension(ctx, key, tag, 0.25))
	require.NoError(t, cache.PutDimension(ctx, key, tag, 0.75))

	got, err := cache.GetDimension(ctx, key, tag)
	require.NoError(t, err)
	assert.Equal(t, 0.25, got, "first write wins")

	_, err = cache.GetDimension(ctx, key, domain.DimensionTag("thematic_unity"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClear(t *testing.T) {
	cache := NewCache(0)
	ctx := context.Background()

	require.NoError(t, cache.PutEmbedding(ctx, domain.HashLeaf(domain.LevelMicro, "a"), []float32{1}))
	require.NoError(t, cache.PutDimension(ctx, domain.HashLeaf(domain.LevelMega, "k"), "keyword_alignment", 0.5))

	require.NoError(t, cache.Clear(ctx))

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Embeddings)
	assert.Equal(t, int64(0), stats.Dimensions)

	// Cleared, not closed: the cache still accepts entries.
	require.NoError(t, cache.PutEmbedding(ctx, domain.HashLeaf(domain.LevelMicro, "b"), []float32{2}))
}

func TestClose(t *testing.T) {
	cache := NewCache(0)
	ctx := context.Background()

	require.NoError(t, cache.Close())
	assert.NoError(t, cache.Close(), "second close is a no-op")

	_, err := cache.GetEmbedding(ctx, domain.EmptyHash)
	assert.ErrorIs(t, err, domain.ErrCacheClosed)

	err = cache.PutEmbedding(ctx, domain.EmptyHash, []float32{1})
	assert.ErrorIs(t, err, domain.ErrCacheClosed)

	_, err = cache.GetDimension(ctx, domain.EmptyHash, "keyword_alignment")
	assert.ErrorIs(t, err, domain.ErrCacheClosed)

	_, err = cache.Stats(ctx)
	assert.ErrorIs(t, err, domain.ErrCacheClosed)

	assert.ErrorIs(t, cache.Clear(ctx), domain.ErrCacheClosed)
}
