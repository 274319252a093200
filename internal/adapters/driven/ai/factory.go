// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/skora-cli/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/skora-cli/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/skora-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and validates
// connectivity. Returns the service if successful, or an error with guidance.
// Scoring cannot run without an embedder, so unlike optional collaborators
// there is no nil fallback.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'skora settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'skora settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a
// service and pinging it. This is intended for use when settings change, so
// a bad provider or key is caught on configuration rather than mid-run.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("embedding settings are required")
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider %q is not fully configured", settings.Provider)
	}

	switch settings.Provider {
	case domain.ProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.ProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.ProviderLocal:
		return local.NewEmbeddingService(), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingModelDimensions()[settings.Model]
	}
	if dimensions == 0 {
		dimensions = ollama.DefaultDimensions
	}

	return ollama.NewEmbeddingService(ollama.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingModelDimensions()[settings.Model]
	}

	return openai.NewEmbeddingService(openai.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
