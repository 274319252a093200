package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/logger"
)

// embedRequest is one unique text awaiting a vector.
type embedRequest struct {
	hash domain.Hash
	text string
}

// resolveStats counts embedding cache traffic for one resolution pass.
// The miss count equals the number of texts sent to the embedder.
type resolveStats struct {
	hits   int
	misses int
}

// embedResolver turns content trees into fully resolved ScoreInputs.
// Every lookup is keyed by content hash and goes through the cache first;
// only texts whose hash has never been embedded reach the embedder, and
// all misses of one pass go out as a single batch request.
type embedResolver struct {
	cache    driven.ScoreCache
	embedder driven.EmbeddingService
}

// newEmbedResolver creates a resolver over a cache and an embedder.
func newEmbedResolver(cache driven.ScoreCache, embedder driven.EmbeddingService) *embedResolver {
	return &embedResolver{cache: cache, embedder: embedder}
}

// Resolve builds ScoreInputs for one tree.
func (r *embedResolver) Resolve(
	ctx context.Context, root *domain.FragmentNode, target domain.Target,
) (domain.ScoreInputs, resolveStats, error) {
	all, stats, err := r.ResolveBatch(ctx, []*domain.FragmentNode{root}, target)
	if err != nil {
		return domain.ScoreInputs{}, stats, err
	}
	return all[0], stats, nil
}

// ResolveBatch builds ScoreInputs for several trees with a single
// embedder round-trip. Fragments shared between trees resolve once:
// the lookup set is the deduplicated union of every tree's hashes plus
// the target's keyword and intent texts.
func (r *embedResolver) ResolveBatch(
	ctx context.Context, roots []*domain.FragmentNode, target domain.Target,
) ([]domain.ScoreInputs, resolveStats, error) {
	var wanted []embedRequest
	seen := make(map[domain.Hash]struct{})
	want := func(hash domain.Hash, text string) {
		if hash.IsEmpty() {
			return
		}
		if _, ok := seen[hash]; ok {
			return
		}
		seen[hash] = struct{}{}
		wanted = append(wanted, embedRequest{hash: hash, text: text})
	}

	// Target texts share the cache with identical page fragments.
	want(target.KeywordHash(), domain.NormalizeText(target.Keyword))
	want(target.IntentHash(), domain.NormalizeText(target.IntentOrKeyword()))

	fragments := make([][]domain.Fragment, len(roots))
	for i, root := range roots {
		fragments[i] = collectFragments(root)
		for _, fragment := range fragments[i] {
			if fragment.Level == domain.LevelNano {
				// Word fragments are read as text only.
				continue
			}
			want(fragment.Hash, fragment.Text)
		}
	}

	vectors, stats, err := r.lookup(ctx, wanted)
	if err != nil {
		return nil, stats, err
	}

	inputs := make([]domain.ScoreInputs, len(roots))
	for i := range roots {
		resolved := fragments[i]
		for j := range resolved {
			if resolved[j].Level == domain.LevelNano {
				continue
			}
			resolved[j].Embedding = vectors[resolved[j].Hash]
		}
		inputs[i] = domain.ScoreInputs{
			Target:           target,
			KeywordEmbedding: vectors[target.KeywordHash()],
			IntentEmbedding:  vectors[target.IntentHash()],
			Fragments:        resolved,
		}
	}
	return inputs, stats, nil
}

// lookup resolves each request from the cache, batches the misses
// through the embedder, and stores the new vectors before returning.
func (r *embedResolver) lookup(
	ctx context.Context, wanted []embedRequest,
) (map[domain.Hash][]float32, resolveStats, error) {
	vectors := make(map[domain.Hash][]float32, len(wanted))
	var stats resolveStats
	var missing []embedRequest

	for _, req := range wanted {
		vector, err := r.cache.GetEmbedding(ctx, req.hash)
		switch {
		case err == nil:
			stats.hits++
			vectors[req.hash] = vector
		case errors.Is(err, domain.ErrNotFound):
			stats.misses++
			missing = append(missing, req)
		default:
			return nil, stats, fmt.Errorf("embedding cache lookup: %w", err)
		}
	}

	if len(missing) == 0 {
		return vectors, stats, nil
	}

	texts := make([]string, len(missing))
	for i, req := range missing {
		texts[i] = req.text
	}

	logger.Debug("Embedding %d new texts (%d cache hits)", len(missing), stats.hits)
	embedded, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, stats, fmt.Errorf("embed batch of %d texts: %w", len(texts), err)
	}
	if len(embedded) != len(missing) {
		return nil, stats, fmt.Errorf("%w: embedder returned %d vectors for %d texts",
			domain.ErrEmbeddingUnavailable, len(embedded), len(missing))
	}

	for i, req := range missing {
		if err := r.cache.PutEmbedding(ctx, req.hash, embedded[i]); err != nil {
			return nil, stats, fmt.Errorf("store embedding %s: %w", req.hash.Short(), err)
		}
		vectors[req.hash] = embedded[i]
	}
	return vectors, stats, nil
}

// collectFragments flattens a tree into resolvable fragments in
// document order. Embeddings are filled in later.
func collectFragments(root *domain.FragmentNode) []domain.Fragment {
	var out []domain.Fragment
	root.Walk(func(node *domain.FragmentNode) bool {
		out = append(out, domain.Fragment{
			Level:   node.Level,
			Role:    node.Role,
			Hash:    node.Hash,
			Text:    node.EmbedText(),
			Section: node.Section,
		})
		return true
	})
	return out
}
