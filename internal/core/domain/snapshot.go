package domain

import "time"

// DimensionScores maps dimension tags to their scalar values in [0, 1].
type DimensionScores map[DimensionTag]float64

// Clone returns an independent copy.
func (s DimensionScores) Clone() DimensionScores {
	if s == nil {
		return nil
	}
	out := make(DimensionScores, len(s))
	for tag, value := range s {
		out[tag] = value
	}
	return out
}

// ScoreKey derives the cache key for dimension values. Dimension scores
// depend on the target as well as the content, so the key binds both;
// within one run the target is constant and the key varies only with the
// root hash.
func ScoreKey(root Hash, target Target) Hash {
	return HashInterior(LevelMega, []Hash{root, target.Hash()})
}

// Snapshot is one complete evaluation: a content tree, the target it was
// scored against, every dimension value, and the composite. Snapshots are
// never mutated after construction; re-scoring produces a new Snapshot
// and copies unaffected values forward.
type Snapshot struct {
	root      *FragmentNode
	target    Target
	scores    DimensionScores
	composite float64
	builtAt   time.Time
}

// NewSnapshot builds a snapshot. The scores map is copied, so callers may
// reuse theirs.
func NewSnapshot(root *FragmentNode, target Target, scores DimensionScores, composite float64) *Snapshot {
	return &Snapshot{
		root:      root,
		target:    target,
		scores:    scores.Clone(),
		composite: composite,
		builtAt:   time.Now(),
	}
}

// Root returns the content tree.
func (s *Snapshot) Root() *FragmentNode {
	return s.root
}

// RootHash returns the Mega hash identifying the snapshot's content.
func (s *Snapshot) RootHash() Hash {
	if s.root == nil {
		return EmptyHash
	}
	return s.root.Hash
}

// Target returns the run target the snapshot was scored against.
func (s *Snapshot) Target() Target {
	return s.target
}

// Key returns the (content, target) cache key for dimension values.
func (s *Snapshot) Key() Hash {
	return ScoreKey(s.RootHash(), s.target)
}

// Score returns one dimension value.
func (s *Snapshot) Score(tag DimensionTag) (float64, bool) {
	value, ok := s.scores[tag]
	return value, ok
}

// Scores returns a copy of all dimension values.
func (s *Snapshot) Scores() DimensionScores {
	return s.scores.Clone()
}

// Composite returns the weighted composite score.
func (s *Snapshot) Composite() float64 {
	return s.composite
}

// BuiltAt returns when the snapshot was constructed.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}
