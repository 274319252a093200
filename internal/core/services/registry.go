package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/logger"
)

// Ensure ScorerRegistry implements the interface.
var _ driven.ScorerRegistry = (*ScorerRegistry)(nil)

// ScorerRegistry holds the registered scoring dimensions and the
// dependency table derived from their read-sets. The table is built once
// at construction and validated against the declarations; a scorer whose
// read-set cannot produce a usable table is a startup failure, not a
// runtime one.
type ScorerRegistry struct {
	scorers map[domain.DimensionTag]driven.DimensionScorer
	order   []domain.DimensionTag
	table   *domain.DependencyTable
}

// NewScorerRegistry creates a registry from the given scorers.
func NewScorerRegistry(scorers ...driven.DimensionScorer) (*ScorerRegistry, error) {
	if len(scorers) == 0 {
		return nil, fmt.Errorf("%w: no scorers registered", domain.ErrDependencyTable)
	}

	byTag := make(map[domain.DimensionTag]driven.DimensionScorer, len(scorers))
	readSets := make(map[domain.DimensionTag]domain.ReadSet, len(scorers))
	for _, scorer := range scorers {
		tag := scorer.Tag()
		if tag == "" {
			return nil, fmt.Errorf("%w: scorer with empty tag", domain.ErrDependencyTable)
		}
		if _, exists := byTag[tag]; exists {
			return nil, fmt.Errorf("%w: duplicate scorer tag %q", domain.ErrDependencyTable, tag)
		}
		byTag[tag] = scorer
		readSets[tag] = scorer.ReadSet()
	}

	table, err := domain.DeriveDependencyTable(readSets)
	if err != nil {
		return nil, fmt.Errorf("derive dependency table: %w", err)
	}
	if err := table.Validate(readSets); err != nil {
		return nil, fmt.Errorf("validate dependency table: %w", err)
	}

	order := make([]domain.DimensionTag, 0, len(byTag))
	for tag := range byTag {
		order = append(order, tag)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	logger.Debug("Registered %d scoring dimensions: %v", len(order), order)

	return &ScorerRegistry{
		scorers: byTag,
		order:   order,
		table:   table,
	}, nil
}

// All returns every registered scorer in stable tag order.
func (r *ScorerRegistry) All() []driven.DimensionScorer {
	out := make([]driven.DimensionScorer, 0, len(r.order))
	for _, tag := range r.order {
		out = append(out, r.scorers[tag])
	}
	return out
}

// Get returns the scorer for a tag.
func (r *ScorerRegistry) Get(tag domain.DimensionTag) (driven.DimensionScorer, bool) {
	scorer, ok := r.scorers[tag]
	return scorer, ok
}

// ReadSets returns the declared read-set per tag.
func (r *ScorerRegistry) ReadSets() map[domain.DimensionTag]domain.ReadSet {
	out := make(map[domain.DimensionTag]domain.ReadSet, len(r.scorers))
	for tag, scorer := range r.scorers {
		out[tag] = scorer.ReadSet()
	}
	return out
}

// Table returns the dependency table derived from the read-sets.
func (r *ScorerRegistry) Table() *domain.DependencyTable {
	return r.table
}
