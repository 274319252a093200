package services

import (
	"fmt"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"
	keyOptEpsilon    = "optimize.epsilon"
	keyOptTarget     = "optimize.target_score"
	keyOptMaxIters   = "optimize.max_iterations"
	keyOptStall      = "optimize.stall_iterations"
	keyOptBatch      = "optimize.batch_size"
	keyOptWorkers    = "optimize.workers"
	keyCacheBackend  = "cache.backend"
	keyCachePath     = "cache.path"
	keyCacheMax      = "cache.max_entries"
	keyGenRules      = "generator.rules"
	keyGenSeed       = "generator.seed"
	keyWeightPrefix  = "weights."
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
	tags        []domain.DimensionTag
}

// NewSettingsService creates a new settings service. The tags are the
// registered dimension tags, used to read per-dimension weight keys.
func NewSettingsService(
	configStore driven.ConfigStore,
	validator driven.EmbeddingValidator,
	tags []domain.DimensionTag,
) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
		tags:        tags,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDims),
		},
		Optimize: domain.OptimizeSettings{
			Epsilon:         s.getFloat(keyOptEpsilon, defaults.Optimize.Epsilon),
			TargetScore:     s.getFloat(keyOptTarget, defaults.Optimize.TargetScore),
			MaxIterations:   s.getInt(keyOptMaxIters, defaults.Optimize.MaxIterations),
			StallIterations: s.getInt(keyOptStall, defaults.Optimize.StallIterations),
			Candidates:      s.getInt(keyOptBatch, defaults.Optimize.Candidates),
			Workers:         s.getInt(keyOptWorkers, defaults.Optimize.Workers),
		},
		Cache: domain.CacheSettings{
			Backend:    s.getBackend(keyCacheBackend, defaults.Cache.Backend),
			Path:       s.configStore.GetString(keyCachePath),
			MaxEntries: s.configStore.GetInt(keyCacheMax),
		},
		Weights: s.getWeights(),
		Generator: domain.GeneratorSettings{
			Rules: s.configStore.GetStringMapSlice(keyGenRules),
			Seed:  int64(s.configStore.GetInt(keyGenSeed)),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.Embedding.Dimensions > 0 {
		if err := s.configStore.Set(keyEmbedDims, settings.Embedding.Dimensions); err != nil {
			return fmt.Errorf("save embedding dimensions: %w", err)
		}
	}

	// Save optimization loop settings
	if err := s.configStore.Set(keyOptEpsilon, settings.Optimize.Epsilon); err != nil {
		return fmt.Errorf("save optimize epsilon: %w", err)
	}
	if err := s.configStore.Set(keyOptTarget, settings.Optimize.TargetScore); err != nil {
		return fmt.Errorf("save optimize target_score: %w", err)
	}
	if err := s.configStore.Set(keyOptMaxIters, settings.Optimize.MaxIterations); err != nil {
		return fmt.Errorf("save optimize max_iterations: %w", err)
	}
	if err := s.configStore.Set(keyOptStall, settings.Optimize.StallIterations); err != nil {
		return fmt.Errorf("save optimize stall_iterations: %w", err)
	}
	if err := s.configStore.Set(keyOptBatch, settings.Optimize.Candidates); err != nil {
		return fmt.Errorf("save optimize batch_size: %w", err)
	}
	if err := s.configStore.Set(keyOptWorkers, settings.Optimize.Workers); err != nil {
		return fmt.Errorf("save optimize workers: %w", err)
	}

	// Save cache settings
	if err := s.configStore.Set(keyCacheBackend, settings.Cache.Backend.String()); err != nil {
		return fmt.Errorf("save cache backend: %w", err)
	}
	if settings.Cache.Path != "" {
		if err := s.configStore.Set(keyCachePath, settings.Cache.Path); err != nil {
			return fmt.Errorf("save cache path: %w", err)
		}
	}
	if err := s.configStore.Set(keyCacheMax, settings.Cache.MaxEntries); err != nil {
		return fmt.Errorf("save cache max_entries: %w", err)
	}

	// Save composite weights
	for tag, weight := range settings.Weights {
		if err := s.configStore.Set(keyWeightPrefix+tag.String(), weight); err != nil {
			return fmt.Errorf("save weight %s: %w", tag, err)
		}
	}

	// Save generator settings
	if settings.Generator.Seed != 0 {
		if err := s.configStore.Set(keyGenSeed, int(settings.Generator.Seed)); err != nil {
			return fmt.Errorf("save generator seed: %w", err)
		}
	}
	for word, replacements := range settings.Generator.Rules {
		if err := s.configStore.Set(keyGenRules+"."+word, replacements); err != nil {
			return fmt.Errorf("save generator rule %q: %w", word, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		defaults := domain.DefaultEmbeddingModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Embedding.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider == domain.ProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud and built-in providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	// Set API key
	settings.Embedding.APIKey = apiKey

	// Pin dimensions for known models
	dims := domain.EmbeddingModelDimensions()
	if d, ok := dims[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetCacheBackend selects the score cache backend.
func (s *SettingsService) SetCacheBackend(backend domain.CacheBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid cache backend: %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Cache.Backend = backend
	return s.Save(settings)
}

// SetWeight sets a composite weight for a dimension tag.
func (s *SettingsService) SetWeight(tag domain.DimensionTag, weight float64) error {
	if weight < 0 {
		return fmt.Errorf("%w: weight for %q must not be negative", domain.ErrInvalidInput, tag)
	}
	known := false
	for _, t := range s.tags {
		if t == tag {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown dimension %q", domain.ErrInvalidInput, tag)
	}
	return s.configStore.Set(keyWeightPrefix+tag.String(), weight)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.EmbeddingProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(key string, defaultVal domain.CacheBackend) domain.CacheBackend {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	backend := domain.CacheBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getWeights() map[domain.DimensionTag]float64 {
	weights := make(map[domain.DimensionTag]float64)
	for _, tag := range s.tags {
		key := keyWeightPrefix + tag.String()
		if _, exists := s.configStore.Get(key); !exists {
			continue
		}
		weights[tag] = s.configStore.GetFloat(key)
	}
	return weights
}
