package domain

import (
	"fmt"
	"sort"
)

// Target is what a page is scored against: the search keyword it should
// rank for and an optional statement of searcher intent. The target is
// fixed for the lifetime of a run.
type Target struct {
	// Keyword is the target search phrase.
	Keyword string

	// Intent describes what the searcher wants, in one sentence.
	// Optional; dimensions that need it fall back to the keyword.
	Intent string
}

// Validate checks the target is usable.
func (t Target) Validate() error {
	if NormalizeText(t.Keyword) == "" {
		return fmt.Errorf("%w: target keyword is required", ErrInvalidInput)
	}
	return nil
}

// IntentOrKeyword returns the intent sentence, or the keyword when no
// intent was given.
func (t Target) IntentOrKeyword() string {
	if NormalizeText(t.Intent) == "" {
		return t.Keyword
	}
	return t.Intent
}

// KeywordHash is the content hash of the keyword text. Target texts share
// the embedding cache with identical sentence fragments.
func (t Target) KeywordHash() Hash {
	return HashLeaf(LevelMicro, t.Keyword)
}

// IntentHash is the content hash of the effective intent text.
func (t Target) IntentHash() Hash {
	return HashLeaf(LevelMicro, t.IntentOrKeyword())
}

// Hash combines keyword and intent into one target identity.
func (t Target) Hash() Hash {
	return HashInterior(LevelMicro, []Hash{t.KeywordHash(), t.IntentHash()})
}

// Fragment is one tree node resolved for scoring: its identity plus the
// embedding a dimension reads. Nano fragments carry text only; no
// registered dimension reads word-level embeddings.
type Fragment struct {
	// Level is the source node's granularity.
	Level Level

	// Role is the source node's document slot.
	Role FragmentRole

	// Hash is the source node's content hash.
	Hash Hash

	// Text is the embed text of the source node.
	Text string

	// Section is the containing content section ordinal, -1 outside one.
	Section int

	// Embedding is the vector for Text. Nil for Nano fragments.
	Embedding []float32
}

// ScoreInputs is everything a dimension's scoring function may read:
// the target (with its embeddings) and the resolved fragments covered by
// the dimension's read-set, in document order.
type ScoreInputs struct {
	// Target is the run target.
	Target Target

	// KeywordEmbedding is the vector for the target keyword.
	KeywordEmbedding []float32

	// IntentEmbedding is the vector for the effective intent text.
	IntentEmbedding []float32

	// Fragments are the resolved fragments, document order.
	Fragments []Fragment
}

// At returns the fragments matching a scope, preserving document order.
func (in ScoreInputs) At(scope Scope) []Fragment {
	var matched []Fragment
	for _, fragment := range in.Fragments {
		if scope.Matches(fragment.Level, fragment.Role) {
			matched = append(matched, fragment)
		}
	}
	return matched
}

// Sections returns the distinct content section ordinals present, sorted.
func (in ScoreInputs) Sections() []int {
	seen := make(map[int]struct{})
	var ordinals []int
	for _, fragment := range in.Fragments {
		if fragment.Section < 0 {
			continue
		}
		if _, ok := seen[fragment.Section]; ok {
			continue
		}
		seen[fragment.Section] = struct{}{}
		ordinals = append(ordinals, fragment.Section)
	}
	sort.Ints(ordinals)
	return ordinals
}
