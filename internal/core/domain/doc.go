// Package domain defines the core business entities for Skora.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types of incremental scoring:
//
//   - StructuredPage: An ordered, pre-segmented document
//   - FragmentNode: One node of the five-level content hash tree
//   - Snapshot: An immutable (tree, scores) pair for one evaluation
//   - ChangeSet: The per-level difference between two trees
//   - DependencyTable: Which dimensions a change at a scope invalidates
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, plus golang.org/x/text for Unicode
//     normalisation (hashing must be stable across Unicode forms)
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
