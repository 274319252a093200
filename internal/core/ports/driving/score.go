package driving

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

// ScoreService evaluates pages against a target.
type ScoreService interface {
	// Score evaluates a page from scratch: builds the content tree,
	// resolves embeddings (through the cache), computes every dimension,
	// and returns the snapshot.
	Score(ctx context.Context, page domain.StructuredPage, target domain.Target) (*domain.Snapshot, error)

	// Rescore evaluates an edited page against a previous snapshot.
	// Only dimensions invalidated by the change set are recomputed;
	// everything else is copied from the old snapshot. The returned
	// change set reports what differed.
	Rescore(ctx context.Context, old *domain.Snapshot, page domain.StructuredPage) (*domain.Snapshot, domain.ChangeSet, error)

	// Dimensions returns the registered dimension tags in stable order.
	Dimensions() []domain.DimensionTag

	// DependencyRows returns the dependency table for display.
	DependencyRows() map[string][]domain.DimensionTag
}
