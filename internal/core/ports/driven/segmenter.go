package driven

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

// PageFormat identifies a raw input format.
type PageFormat string

// Supported input formats.
const (
	// FormatMarkdown is Markdown with headings, title, and paragraphs.
	FormatMarkdown PageFormat = "markdown"

	// FormatPlain is plain text; blank lines separate sections.
	FormatPlain PageFormat = "plain"

	// FormatJSON is a pre-segmented structured page document.
	FormatJSON PageFormat = "json"
)

// Segmenter turns raw document bytes into a structured page with
// deterministic sentence and word boundaries. Segmentation happens here,
// outside the core: the domain only ever sees pre-segmented pages.
type Segmenter interface {
	// Segment parses raw bytes in the given format.
	// Unusable input fails with domain.ErrMalformedStructure.
	Segment(ctx context.Context, raw []byte, format PageFormat) (domain.StructuredPage, error)

	// Render writes a structured page back out in the given format.
	Render(page domain.StructuredPage, format PageFormat) ([]byte, error)
}
