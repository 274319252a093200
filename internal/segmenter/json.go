package segmenter

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

// pageDocument is the pre-segmented JSON wire form. Sentence boundaries
// are taken as given, which makes JSON the only lossless round-trip
// format.
type pageDocument struct {
	Title    string            `json:"title,omitempty"`
	Meta     string            `json:"meta,omitempty"`
	Sections []sectionDocument `json:"sections"`
}

type sectionDocument struct {
	Heading      string   `json:"heading,omitempty"`
	HeadingDepth int      `json:"heading_depth,omitempty"`
	Sentences    []string `json:"sentences"`
}

// parseJSON reads a pre-segmented page document.
func parseJSON(raw []byte) (domain.StructuredPage, error) {
	var doc pageDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.StructuredPage{}, fmt.Errorf("%w: invalid page document: %v", domain.ErrMalformedStructure, err)
	}

	page := domain.StructuredPage{
		Title: domain.Sentence{Text: doc.Title},
		Meta:  domain.Sentence{Text: doc.Meta},
	}
	for _, section := range doc.Sections {
		out := domain.PageSection{
			Heading:      domain.Sentence{Text: section.Heading},
			HeadingDepth: section.HeadingDepth,
		}
		for _, text := range section.Sentences {
			out.Sentences = append(out.Sentences, domain.Sentence{Text: text})
		}
		page.Sections = append(page.Sections, out)
	}
	return page, nil
}

// renderJSON writes a page as an indented page document.
func renderJSON(page domain.StructuredPage) ([]byte, error) {
	doc := pageDocument{
		Title:    page.Title.Text,
		Meta:     page.Meta.Text,
		Sections: make([]sectionDocument, 0, len(page.Sections)),
	}
	for _, section := range page.Sections {
		out := sectionDocument{
			Heading:      section.Heading.Text,
			HeadingDepth: section.HeadingDepth,
		}
		for _, sentence := range section.Sentences {
			out.Sentences = append(out.Sentences, sentence.Text)
		}
		doc.Sections = append(doc.Sections, out)
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode page document: %w", err)
	}
	return append(encoded, '\n'), nil
}
