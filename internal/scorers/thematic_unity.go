package scorers

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// TagThematicUnity identifies the thematic unity dimension.
const TagThematicUnity domain.DimensionTag = "thematic_unity"

var _ driven.DimensionScorer = (*ThematicUnity)(nil)

// ThematicUnity scores how tightly the content sections hold to one
// theme: the mean similarity of each section to the centroid of all
// sections. A single off-theme section lowers exactly its own term, so
// the value degrades gradually rather than collapsing.
type ThematicUnity struct{}

// NewThematicUnity creates the thematic unity scorer.
func NewThematicUnity() *ThematicUnity {
	return &ThematicUnity{}
}

// Tag returns the dimension tag.
func (*ThematicUnity) Tag() domain.DimensionTag {
	return TagThematicUnity
}

// ReadSet declares the scopes this dimension reads: content sections only.
func (*ThematicUnity) ReadSet() domain.ReadSet {
	return domain.ReadSet{
		{Level: domain.LevelMeso, Role: domain.RoleBody},
	}
}

// Score computes the mean section-to-centroid similarity.
func (*ThematicUnity) Score(_ context.Context, inputs domain.ScoreInputs) (float64, error) {
	sections := inputs.At(domain.Scope{Level: domain.LevelMeso, Role: domain.RoleBody})
	if len(sections) == 0 {
		return 0, nil
	}
	// One section is trivially unified with itself.
	if len(sections) == 1 {
		return 1, nil
	}

	center := centroid(sections)
	total := 0.0
	for _, section := range sections {
		total += unit(cosine(section.Embedding, center))
	}
	return clamp01(total / float64(len(sections))), nil
}
