package driving

import "github.com/custodia-labs/skora-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error

	// SetCacheBackend selects the score cache backend.
	SetCacheBackend(backend domain.CacheBackend) error

	// SetWeight sets a composite weight for a dimension tag.
	SetWeight(tag domain.DimensionTag, weight float64) error

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the embedding configuration by
	// pinging the provider.
	ValidateEmbeddingConfig() error
}
