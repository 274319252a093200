package domain

import "strings"

// BuildTree builds the five-level content tree for a structured page.
//
// The mapping is fixed: the Mega root holds Macro section groups; the
// first group covers title and meta, subsequent groups batch content
// sections by top-level heading; each Meso section holds its heading and
// body sentences as Micro nodes; each Micro holds its Nano word tokens.
// Building is deterministic: the same page always yields the same tree
// and the same hashes.
func BuildTree(page StructuredPage) (*FragmentNode, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	var groups []*FragmentNode
	if head := buildHeadGroup(page); head != nil {
		groups = append(groups, head)
	}
	groups = append(groups, buildContentGroups(page.Sections)...)

	root := &FragmentNode{
		Level:    LevelMega,
		Role:     RoleDocument,
		Section:  -1,
		Children: groups,
	}
	root.Hash = HashInterior(LevelMega, childHashes(groups))
	return root, nil
}

// buildHeadGroup builds the Macro group holding title and meta fragments,
// or nil when the page has neither.
func buildHeadGroup(page StructuredPage) *FragmentNode {
	var children []*FragmentNode
	if meso := buildSlotSection(page.Title, RoleTitle); meso != nil {
		children = append(children, meso)
	}
	if meso := buildSlotSection(page.Meta, RoleMeta); meso != nil {
		children = append(children, meso)
	}
	if len(children) == 0 {
		return nil
	}
	return buildGroup(children)
}

// buildSlotSection wraps a single title/meta sentence as a Meso fragment.
func buildSlotSection(sentence Sentence, role FragmentRole) *FragmentNode {
	micro := buildSentence(sentence, role, -1)
	if micro == nil {
		return nil
	}
	children := []*FragmentNode{micro}
	return &FragmentNode{
		Level:    LevelMeso,
		Role:     role,
		Hash:     HashInterior(LevelMeso, childHashes(children)),
		Section:  -1,
		Children: children,
	}
}

// buildContentGroups batches sections into Macro groups. A heading of
// depth 1 or 2 starts a new group; deeper or headingless sections join
// the current one. Section ordinals run across the whole page.
func buildContentGroups(sections []PageSection) []*FragmentNode {
	var groups []*FragmentNode
	var current []*FragmentNode

	flush := func() {
		if len(current) > 0 {
			groups = append(groups, buildGroup(current))
			current = nil
		}
	}

	for i, section := range sections {
		if section.HeadingDepth >= 1 && section.HeadingDepth <= 2 {
			flush()
		}
		if meso := buildSection(section, i); meso != nil {
			current = append(current, meso)
		}
	}
	flush()
	return groups
}

// buildGroup wraps ordered Meso nodes in a Macro node.
func buildGroup(children []*FragmentNode) *FragmentNode {
	return &FragmentNode{
		Level:    LevelMacro,
		Role:     RoleGroup,
		Hash:     HashInterior(LevelMacro, childHashes(children)),
		Section:  -1,
		Children: children,
	}
}

// buildSection builds one content Meso node: heading sentence first, then
// body sentences. Empty sentences are dropped.
func buildSection(section PageSection, ordinal int) *FragmentNode {
	var children []*FragmentNode
	if micro := buildSentence(section.Heading, RoleHeading, ordinal); micro != nil {
		children = append(children, micro)
	}
	for _, sentence := range section.Sentences {
		if micro := buildSentence(sentence, RoleBody, ordinal); micro != nil {
			children = append(children, micro)
		}
	}
	if len(children) == 0 {
		return nil
	}
	return &FragmentNode{
		Level:    LevelMeso,
		Role:     RoleBody,
		Hash:     HashInterior(LevelMeso, childHashes(children)),
		Section:  ordinal,
		Children: children,
	}
}

// buildSentence builds a Micro node and its Nano word children.
// The Micro hash covers the full normalised sentence text, so any edit
// inside the sentence, including punctuation, changes the sentence hash.
func buildSentence(sentence Sentence, role FragmentRole, ordinal int) *FragmentNode {
	text := NormalizeText(sentence.Text)
	if text == "" {
		return nil
	}

	words := sentence.Words
	if len(words) == 0 {
		words = strings.Fields(text)
	}
	nanos := make([]*FragmentNode, 0, len(words))
	for _, word := range words {
		normalized := NormalizeText(word)
		if normalized == "" {
			continue
		}
		nanos = append(nanos, &FragmentNode{
			Level:   LevelNano,
			Role:    role,
			Text:    normalized,
			Hash:    HashLeaf(LevelNano, word),
			Section: ordinal,
		})
	}

	return &FragmentNode{
		Level:    LevelMicro,
		Role:     role,
		Text:     text,
		Hash:     HashLeaf(LevelMicro, sentence.Text),
		Section:  ordinal,
		Children: nanos,
	}
}

// childHashes collects the ordered hashes of a child slice.
func childHashes(children []*FragmentNode) []Hash {
	hashes := make([]Hash, len(children))
	for i, child := range children {
		hashes[i] = child.Hash
	}
	return hashes
}
