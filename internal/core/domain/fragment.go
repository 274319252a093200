package domain

import "strings"

// FragmentRole identifies the document slot a fragment occupies.
// Dimension read-sets bind to (level, role) scopes, so a change inside the
// title invalidates different dimensions than the same change in body text.
type FragmentRole string

// Available fragment roles.
const (
	// RoleDocument is the Mega root.
	RoleDocument FragmentRole = "document"

	// RoleGroup is a Macro section group.
	RoleGroup FragmentRole = "group"

	// RoleTitle marks the page title fragment and its descendants.
	RoleTitle FragmentRole = "title"

	// RoleMeta marks the meta-description fragment and its descendants.
	RoleMeta FragmentRole = "meta"

	// RoleHeading marks a section heading sentence and its words.
	RoleHeading FragmentRole = "heading"

	// RoleBody marks ordinary content fragments.
	RoleBody FragmentRole = "body"

	// RoleAny matches every role when used in a read-set scope.
	RoleAny FragmentRole = "any"
)

// IsValid returns true if the role is recognised.
// RoleAny is a scope wildcard, not a node role, and is not valid here.
func (r FragmentRole) IsValid() bool {
	switch r {
	case RoleDocument, RoleGroup, RoleTitle, RoleMeta, RoleHeading, RoleBody:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r FragmentRole) String() string {
	return string(r)
}

// FragmentNode is one node of the five-level content tree.
// Nodes are immutable once built: the tree builder is the only writer,
// and every hash is fixed at construction.
type FragmentNode struct {
	// Level is the node's granularity.
	Level Level

	// Role is the document slot this node belongs to.
	Role FragmentRole

	// Text is normalised content. Set for Nano and Micro nodes;
	// empty for interior levels, whose text is derived from children.
	Text string

	// Hash is the content hash: HashLeaf(level, text) for Nano/Micro,
	// HashInterior(level, child hashes) for Meso and above.
	Hash Hash

	// Section is the ordinal of the containing content section within
	// the document, or -1 for title/meta fragments and the root chain.
	Section int

	// Children are ordered sub-fragments. Order is significant.
	Children []*FragmentNode
}

// EmbedText returns the text this node contributes to an embedding request.
// Text-bearing nodes return their own text; interior nodes join their
// children in document order. Equal hashes imply equal embed text.
func (n *FragmentNode) EmbedText() string {
	if n.Text != "" || len(n.Children) == 0 {
		return n.Text
	}
	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		if t := child.EmbedText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Walk visits the node and all descendants in document (pre-)order.
// Returning false from fn prunes the subtree below that node.
func (n *FragmentNode) Walk(fn func(*FragmentNode) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// CountAt returns the number of nodes at the given level.
func (n *FragmentNode) CountAt(level Level) int {
	count := 0
	n.Walk(func(node *FragmentNode) bool {
		if node.Level == level {
			count++
		}
		return true
	})
	return count
}

// At collects nodes matching the scope, in document order.
func (n *FragmentNode) At(scope Scope) []*FragmentNode {
	var matched []*FragmentNode
	n.Walk(func(node *FragmentNode) bool {
		if scope.Matches(node.Level, node.Role) {
			matched = append(matched, node)
		}
		// Scopes never match below their own level.
		return node.Level != scope.Level
	})
	return matched
}
