package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheJSON bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the score cache",
	Long: `Inspect and maintain the content-addressed score cache.

The cache stores embeddings and dimension values keyed by content hash,
so unchanged fragments are never re-embedded or re-scored across edits,
candidates, and runs.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry",
	Long: `Removes every stored embedding and dimension value.

Entries are rebuilt on demand the next time a page is scored; clearing
only costs the embedder calls needed to refill the cache.`,
	RunE: runCacheClear,
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheJSON, "json", false, "output statistics as JSON")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if scoreCache == nil {
		return errors.New("score cache not configured")
	}

	stats, err := scoreCache.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	if cacheJSON {
		out := struct {
			Embeddings int64   `json:"embeddings"`
			Dimensions int64   `json:"dimensions"`
			Hits       int64   `json:"hits"`
			Misses     int64   `json:"misses"`
			Evictions  int64   `json:"evictions"`
			HitRate    float64 `json:"hit_rate"`
		}{stats.Embeddings, stats.Dimensions, stats.Hits, stats.Misses, stats.Evictions, stats.HitRate()}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Score cache")
	cmd.Printf("  Embeddings:       %d\n", stats.Embeddings)
	cmd.Printf("  Dimension values: %d\n", stats.Dimensions)
	cmd.Printf("  Hits:             %d\n", stats.Hits)
	cmd.Printf("  Misses:           %d\n", stats.Misses)
	cmd.Printf("  Evictions:        %d\n", stats.Evictions)
	if stats.Hits+stats.Misses > 0 {
		cmd.Printf("  Hit rate:         %.0f%%\n", stats.HitRate()*100)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if scoreCache == nil {
		return errors.New("score cache not configured")
	}

	if err := scoreCache.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	cmd.Println("Cache cleared.")
	return nil
}
