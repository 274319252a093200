package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
	"github.com/custodia-labs/skora-cli/internal/logger"
)

// Ensure ScoreService implements the interface.
var _ driving.ScoreService = (*ScoreService)(nil)

// ScoreService evaluates structured pages against a target. A full score
// builds the content tree, resolves embeddings through the cache, and
// computes every registered dimension; an incremental rescore diffs the
// trees and recomputes only the dimensions the dependency table marks as
// affected, copying the rest from the previous snapshot.
type ScoreService struct {
	registry  driven.ScorerRegistry
	composite driven.CompositeScorer
	cache     driven.ScoreCache
	resolver  *embedResolver
}

// NewScoreService creates a new score service.
func NewScoreService(
	registry driven.ScorerRegistry,
	composite driven.CompositeScorer,
	cache driven.ScoreCache,
	embedder driven.EmbeddingService,
) *ScoreService {
	return &ScoreService{
		registry:  registry,
		composite: composite,
		cache:     cache,
		resolver:  newEmbedResolver(cache, embedder),
	}
}

// Score evaluates a page from scratch.
func (s *ScoreService) Score(
	ctx context.Context, page domain.StructuredPage, target domain.Target,
) (*domain.Snapshot, error) {
	defer logger.Phase("Score Evaluation")()

	if err := target.Validate(); err != nil {
		return nil, err
	}

	root, err := domain.BuildTree(page)
	if err != nil {
		return nil, fmt.Errorf("build content tree: %w", err)
	}
	logger.Debug("Content tree: %d sections, %d sentences, root %s",
		root.CountAt(domain.LevelMeso), root.CountAt(domain.LevelMicro), root.Hash.Short())

	inputs, stats, err := s.resolver.Resolve(ctx, root, target)
	if err != nil {
		return nil, err
	}
	logger.Debug("Embeddings resolved: %d cache hits, %d misses", stats.hits, stats.misses)

	snapshot, err := s.scoreResolved(ctx, root, target, inputs, nil, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("Composite score: %.4f", snapshot.Composite())
	return snapshot, nil
}

// Rescore evaluates an edited page against a previous snapshot.
// When nothing changed, the old snapshot is returned as-is with an empty
// change set.
func (s *ScoreService) Rescore(
	ctx context.Context, old *domain.Snapshot, page domain.StructuredPage,
) (*domain.Snapshot, domain.ChangeSet, error) {
	if old == nil {
		return nil, domain.ChangeSet{}, fmt.Errorf("%w: rescore requires a previous snapshot", domain.ErrInvalidInput)
	}

	defer logger.Phase("Incremental Rescore")()

	root, err := domain.BuildTree(page)
	if err != nil {
		return nil, domain.ChangeSet{}, fmt.Errorf("build content tree: %w", err)
	}

	cs := domain.Diff(old.Root(), root)
	if cs.Empty() {
		logger.Debug("Content unchanged (root %s); snapshot reused", root.Hash.Short())
		return old, cs, nil
	}

	target := old.Target()
	affected := s.registry.Table().Affected(cs)
	if level, ok := cs.HighestLevel(); ok {
		logger.Info("Change set: %d nodes, highest level %s; %d/%d dimensions affected",
			len(cs.Changed), level, len(affected), len(s.registry.Table().Tags()))
	}

	recompute := make(map[domain.DimensionTag]struct{}, len(affected))
	for _, tag := range affected {
		recompute[tag] = struct{}{}
	}

	// Unchanged fragments resolve as cache hits; only new content
	// reaches the embedder.
	inputs, stats, err := s.resolver.Resolve(ctx, root, target)
	if err != nil {
		return nil, cs, err
	}
	logger.Debug("Embeddings resolved: %d cache hits, %d misses", stats.hits, stats.misses)

	snapshot, err := s.scoreResolved(ctx, root, target, inputs, recompute, old.Scores())
	if err != nil {
		return nil, cs, err
	}
	logger.Info("Composite score: %.4f (was %.4f)", snapshot.Composite(), old.Composite())
	return snapshot, cs, nil
}

// Dimensions returns the registered dimension tags in stable order.
func (s *ScoreService) Dimensions() []domain.DimensionTag {
	return s.registry.Table().Tags()
}

// DependencyRows returns the dependency table for display.
func (s *ScoreService) DependencyRows() map[string][]domain.DimensionTag {
	return s.registry.Table().Rows()
}

// scoreResolved computes dimension values for a resolved tree and folds
// them into a snapshot. Tags outside recompute are copied from reuse when
// recompute is non-nil; every computed tag is served from the dimension
// cache when possible and stored after computation. Cached values count
// as fresh: the cache is content-addressed, so a hit is exactly the value
// a recompute would produce.
func (s *ScoreService) scoreResolved(
	ctx context.Context,
	root *domain.FragmentNode,
	target domain.Target,
	inputs domain.ScoreInputs,
	recompute map[domain.DimensionTag]struct{},
	reuse domain.DimensionScores,
) (*domain.Snapshot, error) {
	key := domain.ScoreKey(root.Hash, target)
	scores := make(domain.DimensionScores, len(s.registry.All()))

	for _, scorer := range s.registry.All() {
		tag := scorer.Tag()

		if recompute != nil {
			if _, dirty := recompute[tag]; !dirty {
				if value, ok := reuse[tag]; ok {
					scores[tag] = value
					continue
				}
			}
		}

		value, err := s.cache.GetDimension(ctx, key, tag)
		if err == nil {
			logger.Debug("Dimension %s: %.4f (cached)", tag, value)
			scores[tag] = value
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("dimension cache lookup for %s: %w", tag, err)
		}

		value, err = scorer.Score(ctx, scopedInputs(inputs, scorer.ReadSet()))
		if err != nil {
			return nil, fmt.Errorf("score dimension %s: %w", tag, err)
		}
		value = clamp01(value)
		if err := s.cache.PutDimension(ctx, key, tag, value); err != nil {
			return nil, fmt.Errorf("store dimension %s: %w", tag, err)
		}
		logger.Debug("Dimension %s: %.4f", tag, value)
		scores[tag] = value
	}

	composite, err := s.composite.Compose(scores)
	if err != nil {
		return nil, fmt.Errorf("compose dimensions: %w", err)
	}
	return domain.NewSnapshot(root, target, scores, composite), nil
}

// scopedInputs narrows inputs to the fragments a read-set covers.
func scopedInputs(inputs domain.ScoreInputs, readSet domain.ReadSet) domain.ScoreInputs {
	scoped := domain.ScoreInputs{
		Target:           inputs.Target,
		KeywordEmbedding: inputs.KeywordEmbedding,
		IntentEmbedding:  inputs.IntentEmbedding,
	}
	for _, fragment := range inputs.Fragments {
		if readSet.Matches(fragment.Level, fragment.Role) {
			scoped.Fragments = append(scoped.Fragments, fragment)
		}
	}
	return scoped
}

// clamp01 bounds a score to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
