// Package segmenter parses raw documents into structured pages.
//
// Segmentation is the boundary between raw text and the content tree:
// everything downstream identifies fragments by content hash, so sentence
// and word boundaries must be deterministic. The same bytes always
// segment into the same page.
package segmenter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// Ensure Segmenter implements the interface.
var _ driven.Segmenter = (*Segmenter)(nil)

// Segmenter parses markdown, plain text, and pre-segmented JSON pages.
type Segmenter struct{}

// New creates a new segmenter.
func New() *Segmenter {
	return &Segmenter{}
}

// Segment parses raw bytes in the given format.
func (s *Segmenter) Segment(_ context.Context, raw []byte, format driven.PageFormat) (domain.StructuredPage, error) {
	var page domain.StructuredPage
	var err error

	switch format {
	case driven.FormatMarkdown:
		page = parseMarkdown(string(raw))
	case driven.FormatPlain:
		page = parsePlain(string(raw))
	case driven.FormatJSON:
		page, err = parseJSON(raw)
	default:
		return domain.StructuredPage{}, fmt.Errorf("%w: unsupported page format %q", domain.ErrInvalidInput, format)
	}
	if err != nil {
		return domain.StructuredPage{}, err
	}

	if err := page.Validate(); err != nil {
		return domain.StructuredPage{}, err
	}
	return page, nil
}

// Render writes a structured page back out in the given format.
//
// Markdown and plain renders are lossy where the format cannot express
// the structure: a headingless section rendered as a bare paragraph
// merges into the preceding section when re-segmented. JSON round-trips
// exactly.
func (s *Segmenter) Render(page domain.StructuredPage, format driven.PageFormat) ([]byte, error) {
	switch format {
	case driven.FormatMarkdown:
		return renderMarkdown(page), nil
	case driven.FormatPlain:
		return renderPlain(page), nil
	case driven.FormatJSON:
		return renderJSON(page)
	default:
		return nil, fmt.Errorf("%w: unsupported page format %q", domain.ErrInvalidInput, format)
	}
}

// FormatForPath guesses the page format from a file extension.
// Unrecognised extensions fall back to plain text.
func FormatForPath(path string) driven.PageFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown":
		return driven.FormatMarkdown
	case ".json":
		return driven.FormatJSON
	default:
		return driven.FormatPlain
	}
}
