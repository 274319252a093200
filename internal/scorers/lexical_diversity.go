package scorers

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// TagLexicalDiversity identifies the lexical diversity dimension.
const TagLexicalDiversity domain.DimensionTag = "lexical_diversity"

var _ driven.DimensionScorer = (*LexicalDiversity)(nil)

// LexicalDiversity scores vocabulary variety as the type-token ratio over
// every word in the page: distinct normalised words divided by total
// words. It is the one dimension that reads word fragments, and it reads
// their text only, so it needs no embeddings at all. Keyword stuffing
// repeats words and drags the ratio down, which is exactly the edit
// pattern this dimension exists to resist.
type LexicalDiversity struct{}

// NewLexicalDiversity creates the lexical diversity scorer.
func NewLexicalDiversity() *LexicalDiversity {
	return &LexicalDiversity{}
}

// Tag returns the dimension tag.
func (*LexicalDiversity) Tag() domain.DimensionTag {
	return TagLexicalDiversity
}

// ReadSet declares the scopes this dimension reads: every word fragment
// regardless of slot.
func (*LexicalDiversity) ReadSet() domain.ReadSet {
	return domain.ReadSet{
		{Level: domain.LevelNano, Role: domain.RoleAny},
	}
}

// Score computes the type-token ratio over all word fragments.
func (*LexicalDiversity) Score(_ context.Context, inputs domain.ScoreInputs) (float64, error) {
	words := inputs.At(domain.Scope{Level: domain.LevelNano, Role: domain.RoleAny})
	if len(words) == 0 {
		return 0, nil
	}

	distinct := make(map[string]struct{}, len(words))
	for _, word := range words {
		distinct[word.Text] = struct{}{}
	}
	return clamp01(float64(len(distinct)) / float64(len(words))), nil
}
