package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, score cache, dimension
weights, and optimization loop parameters.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long: `Configure the embedding provider the scoring pipeline uses.

The built-in provider needs no setup and works offline; Ollama and
OpenAI give better scores but need a reachable service. Changing the
model namespaces new cache entries, so old entries are not reused.`,
	RunE: runSettingsEmbedding,
}

var settingsCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Configure the score cache backend",
	Long: `Select where scores and embeddings are cached.

The SQLite backend persists entries across runs; the in-memory backend
starts cold on every run.`,
	RunE: runSettingsCache,
}

var settingsWeightCmd = &cobra.Command{
	Use:   "weight [dimension] [value]",
	Short: "Set a composite weight for a dimension",
	Long: `Set the weight a dimension carries in the composite score.

Weights must not be negative; dimensions without an explicit weight
count as 1. Run 'skora settings show' to list the dimensions.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsWeight,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsCacheCmd)
	settingsCmd.AddCommand(settingsWeightCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider == domain.ProviderOllama {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Cache settings
	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.Cache.Backend.Description())
	if settings.Cache.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Cache.Path)
	}
	if settings.Cache.MaxEntries > 0 {
		cmd.Printf("  Max entries: %d\n", settings.Cache.MaxEntries)
	} else {
		cmd.Printf("  Max entries: unbounded\n")
	}
	cmd.Println()

	// Optimization loop settings
	cmd.Println("[Optimize]")
	cmd.Printf("  Epsilon: %g\n", settings.Optimize.Epsilon)
	if settings.Optimize.TargetScore > 0 {
		cmd.Printf("  Target score: %g\n", settings.Optimize.TargetScore)
	} else {
		cmd.Printf("  Target score: (disabled)\n")
	}
	cmd.Printf("  Max iterations: %d\n", settings.Optimize.MaxIterations)
	cmd.Printf("  Stall iterations: %d\n", settings.Optimize.StallIterations)
	cmd.Printf("  Candidates: %d\n", settings.Optimize.Candidates)
	cmd.Printf("  Workers: %d\n", settings.Optimize.Workers)
	cmd.Println()

	// Composite weights
	cmd.Println("[Weights]")
	if len(settings.Weights) == 0 {
		cmd.Println("  (all dimensions weigh 1)")
	}
	for _, tag := range sortedTags(settings.Weights) {
		cmd.Printf("  %-22s %g\n", tag, settings.Weights[tag])
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'skora settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Skora Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	// Step 1: Embedding Provider
	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Println("Scoring embeds page fragments; pick where embeddings come from.")
	cmd.Println()

	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	// Step 2: Cache Backend
	cmd.Println("Step 2: Select Cache Backend")
	cmd.Println("----------------------------")

	if err := configureCacheBackend(cmd, reader); err != nil {
		return err
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsCache(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureCacheBackend(cmd, reader)
}

func runSettingsWeight(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	weight, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid weight %q: %w", args[1], err)
	}

	tag := domain.DimensionTag(args[0])
	if err := settingsService.SetWeight(tag, weight); err != nil {
		return fmt.Errorf("failed to set weight: %w", err)
	}

	cmd.Printf("Weight for %s set to %g\n", tag, weight)
	return nil
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureCacheBackend(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Cache Backend")
	backends := domain.AllCacheBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(backends), 1)
	selectedBackend := backends[idx-1]

	if err := settingsService.SetCacheBackend(selectedBackend); err != nil {
		return fmt.Errorf("failed to set cache backend: %w", err)
	}

	cmd.Printf("Cache backend set to: %s\n\n", selectedBackend.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
