package scorers

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// TagKeywordAlignment identifies the keyword alignment dimension.
const TagKeywordAlignment domain.DimensionTag = "keyword_alignment"

var _ driven.DimensionScorer = (*KeywordAlignment)(nil)

// KeywordAlignment scores how closely the body text tracks the target
// keyword: the mean keyword similarity over body sentences. A page whose
// sentences all orbit the keyword scores high; off-topic sentences pull
// the mean down one sentence at a time, which gives the optimizer a
// smooth gradient for single-sentence edits.
type KeywordAlignment struct{}

// NewKeywordAlignment creates the keyword alignment scorer.
func NewKeywordAlignment() *KeywordAlignment {
	return &KeywordAlignment{}
}

// Tag returns the dimension tag.
func (*KeywordAlignment) Tag() domain.DimensionTag {
	return TagKeywordAlignment
}

// ReadSet declares the scopes this dimension reads: body sentences only.
func (*KeywordAlignment) ReadSet() domain.ReadSet {
	return domain.ReadSet{
		{Level: domain.LevelMicro, Role: domain.RoleBody},
	}
}

// Score computes the mean keyword similarity over body sentences.
func (*KeywordAlignment) Score(_ context.Context, inputs domain.ScoreInputs) (float64, error) {
	sentences := inputs.At(domain.Scope{Level: domain.LevelMicro, Role: domain.RoleBody})
	if len(sentences) == 0 {
		return 0, nil
	}

	total := 0.0
	for _, sentence := range sentences {
		total += unit(cosine(sentence.Embedding, inputs.KeywordEmbedding))
	}
	return clamp01(total / float64(len(sentences))), nil
}
