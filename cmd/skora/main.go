package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/skora-cli/internal/adapters/driven/ai"
	cachememory "github.com/custodia-labs/skora-cli/internal/adapters/driven/cache/memory"
	cachesqlite "github.com/custodia-labs/skora-cli/internal/adapters/driven/cache/sqlite"
	"github.com/custodia-labs/skora-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/skora-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/core/services"
	"github.com/custodia-labs/skora-cli/internal/generators/wordsub"
	"github.com/custodia-labs/skora-cli/internal/scorers"
	"github.com/custodia-labs/skora-cli/internal/segmenter"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)

	svcs, err := buildServices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		fmt.Fprintln(os.Stderr, "Scoring commands are unavailable; run 'skora settings' to fix the configuration.")
	}
	cli.SetServices(svcs)

	runErr := cli.Execute()

	if svcs.Cache != nil {
		_ = svcs.Cache.Close() //nolint:errcheck // Nothing left to report to
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// buildServices wires the adapters behind the driving ports. Settings
// and the cache always wire; the scoring stack is best-effort, so a
// broken embedding config still leaves `skora settings` usable to
// repair it.
func buildServices() (cli.Services, error) {
	svcs := cli.Services{Segmenter: segmenter.New()}

	// A bad dependency table is a programming error, not a config one.
	registry, err := services.NewScorerRegistry(scorers.DefaultPack()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: opening config store: %v\n", err)
		os.Exit(1)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(), registry.Table().Tags())
	svcs.Settings = settingsService

	settings, err := settingsService.Get()
	if err != nil {
		return svcs, fmt.Errorf("loading settings: %w", err)
	}

	svcs.Cache = openCache(settings)

	composite, err := scorers.NewWeightedComposite(settings.Weights)
	if err != nil {
		return svcs, fmt.Errorf("composite weights: %w", err)
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return svcs, err
	}

	scoreService := services.NewScoreService(registry, composite, svcs.Cache, embedder)
	svcs.Score = scoreService

	generator := wordsub.New(
		wordsub.WithRules(settings.Generator.Rules),
		wordsub.WithSeed(settings.Generator.Seed),
	)
	svcs.Optimize = services.NewOptimizeService(scoreService, generator, settings.Optimize)

	return svcs, nil
}

// openCache builds the configured cache backend, falling back to the
// in-memory cache when the sqlite store cannot open.
func openCache(settings *domain.AppSettings) driven.ScoreCache {
	if settings.Cache.Backend == domain.CacheBackendSQLite {
		store, err := cachesqlite.NewStore(cachesqlite.Config{
			Path:       settings.Cache.Path,
			Model:      embeddingModel(settings.Embedding),
			MaxEntries: settings.Cache.MaxEntries,
		})
		if err == nil {
			return store
		}
		fmt.Fprintf(os.Stderr, "Warning: score cache unavailable: %v\n", err)
		fmt.Fprintln(os.Stderr, "Using the in-memory cache for this run.")
	}
	return cachememory.NewCache(settings.Cache.MaxEntries)
}

// embeddingModel names the cache namespace. Vectors from different
// models are incomparable, so entries are keyed by model as well.
func embeddingModel(e domain.EmbeddingSettings) string {
	if e.Model != "" {
		return e.Model
	}
	return domain.DefaultEmbeddingModels()[e.Provider]
}
