package scorers

import (
	"fmt"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// DefaultWeight is the weight applied to dimensions without a configured
// weight.
const DefaultWeight = 1.0

var _ driven.CompositeScorer = (*WeightedComposite)(nil)

// WeightedComposite folds dimension scores into their weighted mean.
// Weights come from configuration; a dimension without a configured
// weight counts at DefaultWeight, so adding a scorer never requires a
// config change to participate in the composite.
type WeightedComposite struct {
	weights map[domain.DimensionTag]float64
}

// NewWeightedComposite builds a composite from configured weights.
// Negative weights are rejected; a zero weight excludes a dimension from
// the composite without unregistering its scorer.
func NewWeightedComposite(weights map[domain.DimensionTag]float64) (*WeightedComposite, error) {
	copied := make(map[domain.DimensionTag]float64, len(weights))
	for tag, weight := range weights {
		if weight < 0 {
			return nil, fmt.Errorf("%w: negative weight %v for dimension %q", domain.ErrInvalidInput, weight, tag)
		}
		copied[tag] = weight
	}
	return &WeightedComposite{weights: copied}, nil
}

// Weight returns the effective weight for a tag.
func (c *WeightedComposite) Weight(tag domain.DimensionTag) float64 {
	if weight, ok := c.weights[tag]; ok {
		return weight
	}
	return DefaultWeight
}

// Compose computes the weighted mean of the dimension scores.
func (c *WeightedComposite) Compose(scores domain.DimensionScores) (float64, error) {
	if len(scores) == 0 {
		return 0, nil
	}

	total := 0.0
	weightSum := 0.0
	for tag, value := range scores {
		weight := c.Weight(tag)
		total += weight * value
		weightSum += weight
	}
	if weightSum == 0 {
		return 0, nil
	}
	return clamp01(total / weightSum), nil
}
