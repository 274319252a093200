package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSnapshot_Immutable tests that snapshots are isolated from callers
func TestSnapshot_Immutable(t *testing.T) {
	root, err := BuildTree(testPage())
	require.NoError(t, err)

	scores := DimensionScores{"keyword_alignment": 0.4}
	snap := NewSnapshot(root, Target{Keyword: "trail shoes"}, scores, 0.4)

	// Mutating the input map after construction changes nothing.
	scores["keyword_alignment"] = 0.9
	value, ok := snap.Score("keyword_alignment")
	require.True(t, ok)
	assert.Equal(t, 0.4, value)

	// Mutating a returned copy changes nothing either.
	snap.Scores()["keyword_alignment"] = 0.1
	value, _ = snap.Score("keyword_alignment")
	assert.Equal(t, 0.4, value)
}

// TestSnapshot_RootHash tests hash accessors
func TestSnapshot_RootHash(t *testing.T) {
	root, err := BuildTree(testPage())
	require.NoError(t, err)

	snap := NewSnapshot(root, Target{Keyword: "k"}, nil, 0)
	assert.Equal(t, root.Hash, snap.RootHash())
	assert.False(t, snap.BuiltAt().IsZero())

	empty := NewSnapshot(nil, Target{Keyword: "k"}, nil, 0)
	assert.Equal(t, EmptyHash, empty.RootHash())
}

// TestScoreKey_BindsTarget tests that dimension keys vary with the target
func TestScoreKey_BindsTarget(t *testing.T) {
	root, err := BuildTree(testPage())
	require.NoError(t, err)

	shoes := ScoreKey(root.Hash, Target{Keyword: "trail shoes"})
	boots := ScoreKey(root.Hash, Target{Keyword: "hiking boots"})
	assert.NotEqual(t, shoes, boots)

	again := ScoreKey(root.Hash, Target{Keyword: "trail shoes"})
	assert.Equal(t, shoes, again)
}

// TestDimensionScores_Clone tests copy independence
func TestDimensionScores_Clone(t *testing.T) {
	original := DimensionScores{"a": 1, "b": 2}
	cloned := original.Clone()
	cloned["a"] = 9

	assert.Equal(t, 1.0, original["a"])
	assert.Nil(t, DimensionScores(nil).Clone())
}
