package segmenter

import (
	"strings"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

// parsePlain segments plain text: blank lines separate sections, and no
// title or meta is inferred. Plain input is body content only.
func parsePlain(content string) domain.StructuredPage {
	var page domain.StructuredPage
	var block []string

	flush := func() {
		if len(block) == 0 {
			return
		}
		sentences := splitSentences(strings.Join(block, " "))
		block = nil
		if len(sentences) == 0 {
			return
		}
		section := domain.PageSection{}
		for _, text := range sentences {
			section.Sentences = append(section.Sentences, domain.Sentence{Text: text})
		}
		page.Sections = append(page.Sections, section)
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		block = append(block, trimmed)
	}
	flush()

	return page
}

// renderPlain writes a page as plain text: title and meta first, then one
// paragraph per section with the heading on its own line.
func renderPlain(page domain.StructuredPage) []byte {
	var blocks []string

	if !page.Title.IsEmpty() {
		blocks = append(blocks, page.Title.Text)
	}
	if !page.Meta.IsEmpty() {
		blocks = append(blocks, page.Meta.Text)
	}

	for _, section := range page.Sections {
		var lines []string
		if !section.Heading.IsEmpty() {
			lines = append(lines, section.Heading.Text)
		}
		var sentences []string
		for _, sentence := range section.Sentences {
			if !sentence.IsEmpty() {
				sentences = append(sentences, sentence.Text)
			}
		}
		if len(sentences) > 0 {
			lines = append(lines, strings.Join(sentences, " "))
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}

	return []byte(strings.Join(blocks, "\n\n") + "\n")
}
