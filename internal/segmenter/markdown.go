package segmenter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

var (
	fenceLine   = regexp.MustCompile("^\\s*```")
	headingLine = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	listLine    = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+(.*)$`)
	quoteMarker = regexp.MustCompile(`^>\s*`)
	ruleLine    = regexp.MustCompile(`^[-*_]{3,}\s*$`)

	inlineImage = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	inlineLink  = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	inlineCode  = regexp.MustCompile("`[^`]+`")
)

// parseMarkdown segments a markdown document.
//
// The first level-1 heading becomes the page title; front matter may
// override it and supply the meta description. Every other heading opens
// a content section at its depth. Fenced code blocks are dropped: code is
// not prose and should not be scored as prose.
func parseMarkdown(content string) domain.StructuredPage {
	lines := strings.Split(content, "\n")

	var page domain.StructuredPage
	if front, rest := splitFrontMatter(lines); front != nil {
		page.Title = domain.Sentence{Text: front["title"]}
		page.Meta = domain.Sentence{Text: front["description"]}
		lines = rest
	}

	var current *domain.PageSection
	var paragraph []string
	inFence := false

	closeSection := func() {
		if current != nil && !current.IsEmpty() {
			page.Sections = append(page.Sections, *current)
		}
		current = nil
	}
	openSection := func(heading string, depth int) {
		closeSection()
		current = &domain.PageSection{
			Heading:      domain.Sentence{Text: heading},
			HeadingDepth: depth,
		}
	}
	appendSentences := func(sentences []string) {
		if len(sentences) == 0 {
			return
		}
		if current == nil {
			// Content before any heading forms an implicit section.
			current = &domain.PageSection{}
		}
		for _, text := range sentences {
			current.Sentences = append(current.Sentences, domain.Sentence{Text: text})
		}
	}
	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		appendSentences(splitSentences(strings.Join(paragraph, " ")))
		paragraph = nil
	}

	for _, line := range lines {
		if fenceLine.MatchString(line) {
			flushParagraph()
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushParagraph()
			continue
		}
		if ruleLine.MatchString(trimmed) {
			flushParagraph()
			continue
		}

		if m := headingLine.FindStringSubmatch(trimmed); m != nil {
			flushParagraph()
			depth := len(m[1])
			text := stripInline(m[2])
			if depth == 1 && page.Title.IsEmpty() && len(page.Sections) == 0 && current == nil {
				page.Title = domain.Sentence{Text: text}
				continue
			}
			openSection(text, depth)
			continue
		}

		if m := listLine.FindStringSubmatch(trimmed); m != nil {
			// Each list item is one sentence of its own.
			flushParagraph()
			if text := stripInline(m[1]); text != "" {
				appendSentences([]string{text})
			}
			continue
		}

		trimmed = quoteMarker.ReplaceAllString(trimmed, "")
		if text := stripInline(trimmed); text != "" {
			paragraph = append(paragraph, text)
		}
	}

	flushParagraph()
	closeSection()
	return page
}

// splitFrontMatter parses an optional leading front matter block and
// returns its fields plus the remaining lines. Only title and description
// are read. Returns nil when the document has no front matter.
func splitFrontMatter(lines []string) (map[string]string, []string) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, lines
	}
	front := make(map[string]string)
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return front, lines[i+1:]
		}
		key, value, found := strings.Cut(lines[i], ":")
		if !found {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			front["title"] = strings.Trim(strings.TrimSpace(value), `"'`)
		case "description":
			front["description"] = strings.Trim(strings.TrimSpace(value), `"'`)
		}
	}
	// Unterminated front matter is content, not metadata.
	return nil, lines
}

// stripInline removes inline markdown formatting from a line.
func stripInline(text string) string {
	text = inlineImage.ReplaceAllString(text, "")
	text = inlineLink.ReplaceAllString(text, "$1")
	text = inlineCode.ReplaceAllString(text, "")

	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "_", " ")

	return strings.TrimSpace(text)
}

// renderMarkdown writes a page back out as markdown. The meta description
// goes into front matter because markdown has no body syntax for it.
func renderMarkdown(page domain.StructuredPage) []byte {
	var b strings.Builder

	if !page.Meta.IsEmpty() {
		b.WriteString("---\n")
		fmt.Fprintf(&b, "description: %s\n", page.Meta.Text)
		b.WriteString("---\n\n")
	}
	if !page.Title.IsEmpty() {
		fmt.Fprintf(&b, "# %s\n\n", page.Title.Text)
	}

	for _, section := range page.Sections {
		if !section.Heading.IsEmpty() {
			depth := section.HeadingDepth
			if depth < 2 {
				depth = 2
			}
			if depth > 6 {
				depth = 6
			}
			fmt.Fprintf(&b, "%s %s\n\n", strings.Repeat("#", depth), section.Heading.Text)
		}
		var sentences []string
		for _, sentence := range section.Sentences {
			if !sentence.IsEmpty() {
				sentences = append(sentences, sentence.Text)
			}
		}
		if len(sentences) > 0 {
			b.WriteString(strings.Join(sentences, " "))
			b.WriteString("\n\n")
		}
	}

	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}
