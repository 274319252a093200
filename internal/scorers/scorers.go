// Package scorers provides the default scoring dimension pack.
//
// Each scorer computes one quality dimension as a pure function of the
// resolved fragments inside its declared read-set: the same fragments and
// target always produce the same value in [0, 1]. The incremental
// calculator depends on that purity to copy unaffected values forward
// between evaluations, so scorers must never read outside their read-set
// or keep state between calls.
package scorers

import (
	"math"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// DefaultPack returns the six standard scoring dimensions.
func DefaultPack() []driven.DimensionScorer {
	return []driven.DimensionScorer{
		NewKeywordAlignment(),
		NewQueryIntent(),
		NewThematicUnity(),
		NewMetadataAlignment(),
		NewHeadingCoherence(),
		NewLexicalDiversity(),
	}
}

// cosine computes the cosine similarity of two vectors in [-1, 1].
// Mismatched or empty vectors score zero rather than erroring: a missing
// embedding should read as "unrelated", not abort the whole evaluation.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// unit maps a cosine similarity from [-1, 1] onto [0, 1].
func unit(similarity float64) float64 {
	return clamp01((similarity + 1) / 2)
}

// clamp01 clamps v to the range [0.0, 1.0]. NaN clamps to zero.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// centroid returns the component-wise mean of the fragment embeddings.
// Fragments without an embedding are skipped.
func centroid(fragments []domain.Fragment) []float32 {
	var mean []float32
	counted := 0
	for _, fragment := range fragments {
		if len(fragment.Embedding) == 0 {
			continue
		}
		if mean == nil {
			mean = make([]float32, len(fragment.Embedding))
		}
		if len(fragment.Embedding) != len(mean) {
			continue
		}
		for i, component := range fragment.Embedding {
			mean[i] += component
		}
		counted++
	}
	if counted == 0 {
		return nil
	}
	for i := range mean {
		mean[i] /= float32(counted)
	}
	return mean
}
