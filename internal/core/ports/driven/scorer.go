package driven

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

// DimensionScorer computes one scoring dimension.
//
// Scorers are pure with respect to their inputs: the same resolved
// fragments and target always produce the same value, and a scorer never
// reads outside its declared read-set. The incremental calculator relies
// on both properties to copy unaffected values forward.
type DimensionScorer interface {
	// Tag returns the dimension's unique tag.
	Tag() domain.DimensionTag

	// ReadSet declares every (level, role) scope the scorer reads.
	// The dependency table is derived from these declarations and
	// validated against them at startup.
	ReadSet() domain.ReadSet

	// Score computes the dimension value in [0, 1] from the resolved
	// inputs. Inputs contain exactly the fragments covered by ReadSet,
	// in document order.
	Score(ctx context.Context, inputs domain.ScoreInputs) (float64, error)
}

// ScorerRegistry holds the registered scoring dimensions.
type ScorerRegistry interface {
	// All returns every registered scorer in stable tag order.
	All() []DimensionScorer

	// Get returns the scorer for a tag.
	Get(tag domain.DimensionTag) (DimensionScorer, bool)

	// ReadSets returns the declared read-set per tag.
	ReadSets() map[domain.DimensionTag]domain.ReadSet

	// Table returns the dependency table derived from the read-sets.
	Table() *domain.DependencyTable
}

// CompositeScorer folds dimension values into a single composite in [0, 1].
type CompositeScorer interface {
	// Compose computes the composite from complete dimension values.
	Compose(scores domain.DimensionScores) (float64, error)
}
