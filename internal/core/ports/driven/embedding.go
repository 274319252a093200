package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// It is the only model-backed dependency of the scoring core; every call
// site goes through the cache first, so the service only sees texts whose
// content hash has never been embedded before.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - The built-in deterministic embedder (offline, test-stable)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one request.
	// The result preserves input order: result[i] embeds texts[i].
	// The optimization loop relies on this being a single upstream call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 256, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	// Cache entries are namespaced by model; changing models never
	// reuses another model's vectors.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
