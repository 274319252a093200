// Package local provides the built-in deterministic embedding service.
// It projects hashed tokens onto a fixed-size vector, so identical text
// always embeds identically, with no network and no model weights. The
// vectors are coarse but stable, which is what tests and offline runs
// need: cosine similarity still rises with shared vocabulary.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	// Model identifies the built-in embedder. Cache entries are namespaced
	// by model name, so changing the projection scheme means renaming this.
	Model = "skora-hash-256"

	// Dimensions is the fixed vector size.
	Dimensions = 256

	// projections is how many coordinates each token touches. The SHA-256
	// digest supplies eight 32-bit words, one per projection.
	projections = 8
)

// EmbeddingService generates deterministic embeddings from token hashes.
type EmbeddingService struct{}

// NewEmbeddingService creates the built-in embedding service.
func NewEmbeddingService() *EmbeddingService {
	return &EmbeddingService{}
}

// Embed generates a vector embedding for the given text.
// The text is normalised the same way content hashing normalises it, so
// case and whitespace variants of the same text share one embedding.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, Dimensions)

	for _, token := range strings.Fields(domain.NormalizeText(text)) {
		digest := sha256.Sum256([]byte(token))
		for p := 0; p < projections; p++ {
			word := binary.BigEndian.Uint32(digest[p*4 : p*4+4])
			idx := int(word>>1) % Dimensions
			if word&1 == 1 {
				vec[idx]++
			} else {
				vec[idx]--
			}
		}
	}

	normalize(vec)
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
// There is no upstream call to batch, so this just loops.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return Dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return Model
}

// Ping always succeeds: there is nothing to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// normalize scales vec to unit length in place. Empty text produces the
// zero vector, which is left as-is.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
