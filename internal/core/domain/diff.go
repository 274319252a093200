package domain

// ChangedNode records one node whose hash differs between two trees.
// For edits and additions the hash is the new tree's; for removals it is
// the hash that disappeared.
type ChangedNode struct {
	// Level is the node's granularity.
	Level Level

	// Role is the node's document slot.
	Role FragmentRole

	// Hash is the new hash (or the removed hash for removals).
	Hash Hash

	// Section is the containing content section ordinal, -1 outside one.
	Section int

	// Removed marks nodes present in the old tree but not the new one.
	Removed bool
}

// ChangeSet is the per-level difference between two content trees.
// An empty set means the documents are content-identical.
type ChangeSet struct {
	// Changed lists differing nodes in pre-order, coarsest first.
	Changed []ChangedNode
}

// Empty returns true when nothing changed.
func (c ChangeSet) Empty() bool {
	return len(c.Changed) == 0
}

// HighestLevel returns the coarsest level with a change.
// The second return is false for an empty set.
func (c ChangeSet) HighestLevel() (Level, bool) {
	if c.Empty() {
		return "", false
	}
	highest := c.Changed[0].Level
	for _, node := range c.Changed[1:] {
		if node.Level.Coarser(highest) {
			highest = node.Level
		}
	}
	return highest, true
}

// CountAt returns the number of changed nodes at a level.
func (c ChangeSet) CountAt(level Level) int {
	count := 0
	for _, node := range c.Changed {
		if node.Level == level {
			count++
		}
	}
	return count
}

// NewHashes returns the new-tree hashes introduced at a level.
func (c ChangeSet) NewHashes(level Level) []Hash {
	var hashes []Hash
	for _, node := range c.Changed {
		if node.Level == level && !node.Removed {
			hashes = append(hashes, node.Hash)
		}
	}
	return hashes
}

// Diff compares two trees and returns every differing node.
//
// The walk is top-down with subtree pruning: when two nodes at the same
// position share a hash, the entire subtree beneath them is skipped
// untouched. Children are aligned pairwise by index; index overhang on
// either side is recorded as a wholly added or wholly removed subtree,
// descendants included. Equal root hashes short-circuit to an empty set
// without visiting anything.
func Diff(oldRoot, newRoot *FragmentNode) ChangeSet {
	var cs ChangeSet
	diffNodes(oldRoot, newRoot, &cs.Changed)
	return cs
}

func diffNodes(oldNode, newNode *FragmentNode, out *[]ChangedNode) {
	switch {
	case oldNode == nil && newNode == nil:
		return
	case oldNode == nil:
		recordSubtree(newNode, false, out)
		return
	case newNode == nil:
		recordSubtree(oldNode, true, out)
		return
	case oldNode.Hash == newNode.Hash:
		return
	}

	*out = append(*out, ChangedNode{
		Level:   newNode.Level,
		Role:    newNode.Role,
		Hash:    newNode.Hash,
		Section: newNode.Section,
	})

	limit := len(oldNode.Children)
	if len(newNode.Children) > limit {
		limit = len(newNode.Children)
	}
	for i := 0; i < limit; i++ {
		var oldChild, newChild *FragmentNode
		if i < len(oldNode.Children) {
			oldChild = oldNode.Children[i]
		}
		if i < len(newNode.Children) {
			newChild = newNode.Children[i]
		}
		diffNodes(oldChild, newChild, out)
	}
}

// recordSubtree marks a whole subtree as added or removed so that every
// (level, role) scope it spans shows up in the change set.
func recordSubtree(node *FragmentNode, removed bool, out *[]ChangedNode) {
	node.Walk(func(n *FragmentNode) bool {
		*out = append(*out, ChangedNode{
			Level:   n.Level,
			Role:    n.Role,
			Hash:    n.Hash,
			Section: n.Section,
			Removed: removed,
		})
		return true
	})
}
