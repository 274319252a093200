// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Generates vector embeddings (the only model-backed
//     dependency; a deterministic local implementation ships in-tree)
//   - ScoreCache: Content-addressed embedding and dimension value storage
//   - DimensionScorer / ScorerRegistry: The scoring dimensions
//   - CompositeScorer: Folds dimension values into one composite
//   - Segmenter: Parses raw input into structured pages
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - CandidateGenerator: Proposes page edits. Without it, optimization
//     runs degenerate to a single scoring pass.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, scorer, or generator package
package driven
