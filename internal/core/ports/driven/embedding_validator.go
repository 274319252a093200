package driven

import "github.com/custodia-labs/skora-cli/internal/core/domain"

// EmbeddingValidator validates embedding provider configurations.
// Implementations verify that a configuration is usable by constructing a
// client and pinging the underlying service.
type EmbeddingValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if the configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
