package domain

import "fmt"

const unknownDescription = "Unknown"

// EmbeddingProvider identifies an embedding service provider.
type EmbeddingProvider string

// Available embedding providers.
const (
	// ProviderOllama is a local Ollama instance.
	ProviderOllama EmbeddingProvider = "ollama"

	// ProviderOpenAI is the OpenAI cloud API.
	ProviderOpenAI EmbeddingProvider = "openai"

	// ProviderLocal is the built-in deterministic embedder. No network,
	// stable across runs; intended for tests and offline use.
	ProviderLocal EmbeddingProvider = "local"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case ProviderOllama, ProviderOpenAI, ProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == ProviderOpenAI
}

// IsLocal returns true if this provider runs without network access.
func (p EmbeddingProvider) IsLocal() bool {
	return p == ProviderLocal
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case ProviderOllama:
		return "Ollama (local server)"
	case ProviderOpenAI:
		return "OpenAI (cloud)"
	case ProviderLocal:
		return "Built-in (deterministic, offline)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns every supported provider.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{ProviderOllama, ProviderOpenAI, ProviderLocal}
}

// DefaultEmbeddingModels returns the default model per provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		ProviderOllama: "nomic-embed-text",
		ProviderOpenAI: "text-embedding-3-small",
		ProviderLocal:  "skora-hash-256",
	}
}

// EmbeddingModelDimensions returns vector sizes for known models.
func EmbeddingModelDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		// Built-in
		"skora-hash-256": 256,
	}
}

// CacheBackend identifies a score cache implementation.
type CacheBackend string

// Available cache backends.
const (
	// CacheBackendMemory keeps entries for the process lifetime only.
	CacheBackendMemory CacheBackend = "memory"

	// CacheBackendSQLite persists entries across runs.
	CacheBackendSQLite CacheBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendMemory, CacheBackendSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// AllCacheBackends returns every supported backend.
func AllCacheBackends() []CacheBackend {
	return []CacheBackend{CacheBackendSQLite, CacheBackendMemory}
}

// Description returns a human-readable description of the backend.
func (b CacheBackend) Description() string {
	switch b {
	case CacheBackendMemory:
		return "In-memory (per process)"
	case CacheBackendSQLite:
		return "SQLite (persists across runs)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size. 0 means use the model's known size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// OptimizeSettings holds optimization loop configuration.
type OptimizeSettings struct {
	// Epsilon is the minimum composite improvement a candidate must
	// bring to be accepted. Must be positive.
	Epsilon float64

	// TargetScore stops the run early once the composite reaches it.
	// 0 disables the early stop.
	TargetScore float64

	// MaxIterations is the iteration budget.
	MaxIterations int

	// StallIterations is how many consecutive iterations may pass
	// without an acceptance before the run is declared converged.
	StallIterations int

	// Candidates is how many candidate pages each iteration evaluates.
	Candidates int

	// Workers bounds the parallel candidate evaluations per iteration.
	Workers int
}

// Validate checks the loop parameters.
func (o OptimizeSettings) Validate() error {
	if o.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon must be positive", ErrInvalidInput)
	}
	if o.TargetScore < 0 || o.TargetScore > 1 {
		return fmt.Errorf("%w: target score must be in [0, 1]", ErrInvalidInput)
	}
	if o.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be at least 1", ErrInvalidInput)
	}
	if o.StallIterations < 1 {
		return fmt.Errorf("%w: stall iterations must be at least 1", ErrInvalidInput)
	}
	if o.Candidates < 1 {
		return fmt.Errorf("%w: candidates per iteration must be at least 1", ErrInvalidInput)
	}
	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidInput)
	}
	return nil
}

// CacheSettings holds score cache configuration.
type CacheSettings struct {
	// Backend selects the cache implementation.
	Backend CacheBackend

	// Path is the SQLite database path. Empty means the default under
	// the config directory.
	Path string

	// MaxEntries bounds the embedding entry count; least recently used
	// entries are evicted past it. 0 means unbounded.
	MaxEntries int
}

// GeneratorSettings holds candidate generator configuration.
type GeneratorSettings struct {
	// Rules maps a word to its candidate replacements.
	Rules map[string][]string

	// Seed fixes the generator's randomness for reproducible runs.
	// 0 means seed from the clock.
	Seed int64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Optimize holds optimization loop settings.
	Optimize OptimizeSettings

	// Cache holds score cache settings.
	Cache CacheSettings

	// Weights are the composite weights per dimension tag.
	// Missing tags weigh 1.
	Weights map[DimensionTag]float64

	// Generator holds candidate generator settings.
	Generator GeneratorSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The built-in embedder is the default provider so a fresh install works
// offline; Ollama/OpenAI are opt-in via settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: ProviderLocal,
			Model:    "skora-hash-256",
		},
		Optimize: OptimizeSettings{
			Epsilon:         0.005,
			TargetScore:     0,
			MaxIterations:   25,
			StallIterations: 5,
			Candidates:      8,
			Workers:         4,
		},
		Cache: CacheSettings{
			Backend:    CacheBackendSQLite,
			MaxEntries: 0,
		},
		Weights:   map[DimensionTag]float64{},
		Generator: GeneratorSettings{},
	}
}

// Validate checks the whole settings tree.
func (s AppSettings) Validate() error {
	if err := s.Optimize.Validate(); err != nil {
		return err
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if !s.Cache.Backend.IsValid() {
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidInput, s.Cache.Backend)
	}
	for tag, weight := range s.Weights {
		if weight < 0 {
			return fmt.Errorf("%w: weight for %q must not be negative", ErrInvalidInput, tag)
		}
	}
	return nil
}
