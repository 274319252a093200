package scorers

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// TagMetadataAlignment identifies the metadata alignment dimension.
const TagMetadataAlignment domain.DimensionTag = "metadata_alignment"

var _ driven.DimensionScorer = (*MetadataAlignment)(nil)

// MetadataAlignment scores the head slots against the target: the title
// against the keyword and the meta description against the intent. It
// reads nothing from the body, so body edits never invalidate it.
type MetadataAlignment struct{}

// NewMetadataAlignment creates the metadata alignment scorer.
func NewMetadataAlignment() *MetadataAlignment {
	return &MetadataAlignment{}
}

// Tag returns the dimension tag.
func (*MetadataAlignment) Tag() domain.DimensionTag {
	return TagMetadataAlignment
}

// ReadSet declares the scopes this dimension reads: the title and meta
// slots only.
func (*MetadataAlignment) ReadSet() domain.ReadSet {
	return domain.ReadSet{
		{Level: domain.LevelMeso, Role: domain.RoleTitle},
		{Level: domain.LevelMeso, Role: domain.RoleMeta},
	}
}

// Score averages title-to-keyword and meta-to-intent similarity over the
// slots the page actually has.
func (*MetadataAlignment) Score(_ context.Context, inputs domain.ScoreInputs) (float64, error) {
	titles := inputs.At(domain.Scope{Level: domain.LevelMeso, Role: domain.RoleTitle})
	metas := inputs.At(domain.Scope{Level: domain.LevelMeso, Role: domain.RoleMeta})

	total := 0.0
	slots := 0
	if len(titles) > 0 {
		total += unit(cosine(titles[0].Embedding, inputs.KeywordEmbedding))
		slots++
	}
	if len(metas) > 0 {
		total += unit(cosine(metas[0].Embedding, inputs.IntentEmbedding))
		slots++
	}
	if slots == 0 {
		return 0, nil
	}
	return clamp01(total / float64(slots)), nil
}
