package scorers

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// TagQueryIntent identifies the query intent dimension.
const TagQueryIntent domain.DimensionTag = "query_intent"

var _ driven.DimensionScorer = (*QueryIntent)(nil)

// QueryIntent scores whether the page answers what the searcher actually
// wants. It blends the whole-document intent similarity with the best
// single section: a page can satisfy an intent either broadly or with one
// section that nails it, and penalising the latter would push the
// optimizer toward diluting focused content.
type QueryIntent struct{}

// NewQueryIntent creates the query intent scorer.
func NewQueryIntent() *QueryIntent {
	return &QueryIntent{}
}

// Tag returns the dimension tag.
func (*QueryIntent) Tag() domain.DimensionTag {
	return TagQueryIntent
}

// ReadSet declares the scopes this dimension reads: the document root and
// the content sections.
func (*QueryIntent) ReadSet() domain.ReadSet {
	return domain.ReadSet{
		{Level: domain.LevelMega, Role: domain.RoleDocument},
		{Level: domain.LevelMeso, Role: domain.RoleBody},
	}
}

// Score blends document-wide and best-section intent similarity.
func (*QueryIntent) Score(_ context.Context, inputs domain.ScoreInputs) (float64, error) {
	documents := inputs.At(domain.Scope{Level: domain.LevelMega, Role: domain.RoleDocument})
	if len(documents) == 0 {
		return 0, nil
	}
	document := unit(cosine(documents[0].Embedding, inputs.IntentEmbedding))

	sections := inputs.At(domain.Scope{Level: domain.LevelMeso, Role: domain.RoleBody})
	if len(sections) == 0 {
		return document, nil
	}

	best := 0.0
	for _, section := range sections {
		if similarity := unit(cosine(section.Embedding, inputs.IntentEmbedding)); similarity > best {
			best = similarity
		}
	}
	return clamp01(document/2 + best/2), nil
}
