package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
	"github.com/custodia-labs/skora-cli/internal/logger"
)

// version is the build version, overridden at link time.
var version = "dev"

// Services wired by main before Execute. Commands nil-check what they
// need, so a partially wired binary degrades to a helpful error instead
// of a panic.
var (
	scoreService    driving.ScoreService
	optimizeService driving.OptimizeService
	settingsService driving.SettingsService
	scoreCache      driven.ScoreCache
	pageSegmenter   driven.Segmenter
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "skora",
	Short: "Score and optimize pages for a target keyword",
	Long: `Skora evaluates how well a page answers a target search keyword.

A page is scored across several quality dimensions (keyword alignment,
thematic unity, heading coherence, ...) and the weighted composite is
the page's score. The optimize command proposes small edits, re-scores
each candidate incrementally, and keeps the ones that improve the
composite.

Scores and embeddings are cached by content hash, so unchanged parts of
a page are never recomputed across edits, candidates, or runs.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

// Services carries the wired driving ports plus the shared adapters the
// commands use directly.
type Services struct {
	Score     driving.ScoreService
	Optimize  driving.OptimizeService
	Settings  driving.SettingsService
	Cache     driven.ScoreCache
	Segmenter driven.Segmenter
}

// SetServices installs the wired services. Nil fields disable the
// commands that need them.
func SetServices(s Services) {
	scoreService = s.Score
	optimizeService = s.Optimize
	settingsService = s.Settings
	scoreCache = s.Cache
	pageSegmenter = s.Segmenter
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose pipeline logging to stderr")
}
