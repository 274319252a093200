package scorers

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// TagHeadingCoherence identifies the heading coherence dimension.
const TagHeadingCoherence domain.DimensionTag = "heading_coherence"

// NeutralCoherence is the value for pages without headings: nothing to
// pair means neither reward nor penalty.
const NeutralCoherence = 0.5

var _ driven.DimensionScorer = (*HeadingCoherence)(nil)

// HeadingCoherence scores whether section headings describe the sections
// under them: the mean similarity of each heading sentence to its own
// section. Headings are paired with sections by content section ordinal.
type HeadingCoherence struct{}

// NewHeadingCoherence creates the heading coherence scorer.
func NewHeadingCoherence() *HeadingCoherence {
	return &HeadingCoherence{}
}

// Tag returns the dimension tag.
func (*HeadingCoherence) Tag() domain.DimensionTag {
	return TagHeadingCoherence
}

// ReadSet declares the scopes this dimension reads: heading sentences and
// the content sections they belong to.
func (*HeadingCoherence) ReadSet() domain.ReadSet {
	return domain.ReadSet{
		{Level: domain.LevelMicro, Role: domain.RoleHeading},
		{Level: domain.LevelMeso, Role: domain.RoleBody},
	}
}

// Score computes the mean heading-to-own-section similarity.
func (*HeadingCoherence) Score(_ context.Context, inputs domain.ScoreInputs) (float64, error) {
	headings := inputs.At(domain.Scope{Level: domain.LevelMicro, Role: domain.RoleHeading})
	if len(headings) == 0 {
		return NeutralCoherence, nil
	}

	sections := make(map[int][]float32)
	for _, section := range inputs.At(domain.Scope{Level: domain.LevelMeso, Role: domain.RoleBody}) {
		sections[section.Section] = section.Embedding
	}

	total := 0.0
	paired := 0
	for _, heading := range headings {
		body, ok := sections[heading.Section]
		if !ok {
			continue
		}
		total += unit(cosine(heading.Embedding, body))
		paired++
	}
	if paired == 0 {
		return NeutralCoherence, nil
	}
	return clamp01(total / float64(paired)), nil
}
