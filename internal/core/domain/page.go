package domain

import "fmt"

// Sentence is one pre-segmented sentence with its word tokens.
// Segmentation happens upstream (the segmenter port); the domain treats
// both text and word boundaries as given.
type Sentence struct {
	// Text is the sentence as written.
	Text string

	// Words are the ordered word tokens. When empty, the tree builder
	// derives tokens from Text.
	Words []string
}

// IsEmpty returns true if the sentence has no content.
func (s Sentence) IsEmpty() bool {
	return NormalizeText(s.Text) == ""
}

// Clone returns a deep copy.
func (s Sentence) Clone() Sentence {
	out := Sentence{Text: s.Text}
	if s.Words != nil {
		out.Words = make([]string, len(s.Words))
		copy(out.Words, s.Words)
	}
	return out
}

// PageSection is one content section: an optional heading plus sentences.
type PageSection struct {
	// Heading is the section heading. May be empty for implicit sections.
	Heading Sentence

	// HeadingDepth is the heading depth (1 for top-level), 0 when the
	// section has no heading. Depths of 2 or less start a new section
	// group; deeper headings join the current group.
	HeadingDepth int

	// Sentences are the section's body sentences in document order.
	Sentences []Sentence
}

// IsEmpty returns true if the section has neither heading nor sentences.
func (s PageSection) IsEmpty() bool {
	if !s.Heading.IsEmpty() {
		return false
	}
	for _, sentence := range s.Sentences {
		if !sentence.IsEmpty() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (s PageSection) Clone() PageSection {
	out := PageSection{
		Heading:      s.Heading.Clone(),
		HeadingDepth: s.HeadingDepth,
	}
	if s.Sentences != nil {
		out.Sentences = make([]Sentence, len(s.Sentences))
		for i, sentence := range s.Sentences {
			out.Sentences[i] = sentence.Clone()
		}
	}
	return out
}

// StructuredPage is an ordered, pre-segmented document: the input contract
// for tree building. Pages arrive already segmented into sections,
// sentences, and words; the domain never re-parses raw text.
type StructuredPage struct {
	// Title is the page title.
	Title Sentence

	// Meta is the meta description.
	Meta Sentence

	// Sections are the content sections in document order.
	Sections []PageSection
}

// Validate checks the page can produce a well-formed tree.
// A page needs at least some content: a title, a meta description, or one
// non-empty section. Sections that are entirely empty are malformed.
func (p StructuredPage) Validate() error {
	hasContent := !p.Title.IsEmpty() || !p.Meta.IsEmpty()
	for i, section := range p.Sections {
		if section.IsEmpty() {
			return fmt.Errorf("%w: section %d has no heading and no sentences", ErrMalformedStructure, i)
		}
		hasContent = true
	}
	if !hasContent {
		return fmt.Errorf("%w: page has no content", ErrMalformedStructure)
	}
	return nil
}

// Clone returns a deep copy. Candidate generators edit clones so the
// original page is never mutated.
func (p StructuredPage) Clone() StructuredPage {
	out := StructuredPage{
		Title: p.Title.Clone(),
		Meta:  p.Meta.Clone(),
	}
	if p.Sections != nil {
		out.Sections = make([]PageSection, len(p.Sections))
		for i, section := range p.Sections {
			out.Sections[i] = section.Clone()
		}
	}
	return out
}

// SentenceCount returns the total number of body sentences.
func (p StructuredPage) SentenceCount() int {
	count := 0
	for _, section := range p.Sections {
		count += len(section.Sentences)
	}
	return count
}
