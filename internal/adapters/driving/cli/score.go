package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/segmenter"
)

var (
	scoreKeyword string
	scoreIntent  string
	scoreFormat  string
	scoreJSON    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Score a page against a target keyword",
	Long: `Evaluates a page against a target search keyword and prints the
per-dimension scores and the weighted composite.

The file is segmented by extension: .md as Markdown, .json as a
pre-segmented page, anything else as plain text. Use --format to
override the guess.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreKeyword, "keyword", "k", "", "target search keyword (required)")
	scoreCmd.Flags().StringVarP(&scoreIntent, "intent", "i", "", "searcher intent, one sentence")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "", "input format: markdown, plain, or json")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "output the result as JSON")
	_ = scoreCmd.MarkFlagRequired("keyword") //nolint:errcheck // Flag registered above
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	if scoreService == nil {
		return errors.New("score service not configured")
	}

	page, err := loadPage(args[0], scoreFormat)
	if err != nil {
		return err
	}

	target := domain.Target{Keyword: scoreKeyword, Intent: scoreIntent}
	snapshot, err := scoreService.Score(cmd.Context(), page, target)
	if err != nil {
		return fmt.Errorf("score failed: %w", err)
	}

	if scoreJSON {
		return outputSnapshotJSON(cmd, snapshot)
	}

	outputSnapshotTable(cmd, snapshot)
	return nil
}

// loadPage reads and segments a page file. An empty format is guessed
// from the file extension.
func loadPage(path, format string) (domain.StructuredPage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.StructuredPage{}, fmt.Errorf("reading page: %w", err)
	}

	pageFormat, err := resolveFormat(path, format)
	if err != nil {
		return domain.StructuredPage{}, err
	}

	page, err := pageSegmenterOrDefault().Segment(context.Background(), raw, pageFormat)
	if err != nil {
		return domain.StructuredPage{}, fmt.Errorf("segmenting page: %w", err)
	}
	return page, nil
}

// pageSegmenterOrDefault returns the wired segmenter, or a fresh one.
// The segmenter is stateless, so the fallback costs nothing.
func pageSegmenterOrDefault() driven.Segmenter {
	if pageSegmenter != nil {
		return pageSegmenter
	}
	return segmenter.New()
}

func resolveFormat(path, format string) (driven.PageFormat, error) {
	switch format {
	case "":
		return segmenter.FormatForPath(path), nil
	case "markdown", "md":
		return driven.FormatMarkdown, nil
	case "plain", "text":
		return driven.FormatPlain, nil
	case "json":
		return driven.FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want markdown, plain, or json)", format)
	}
}

// sortedTags returns the score map's tags in stable order.
func sortedTags(scores domain.DimensionScores) []domain.DimensionTag {
	tags := make([]domain.DimensionTag, 0, len(scores))
	for tag := range scores {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

func outputSnapshotTable(cmd *cobra.Command, snapshot *domain.Snapshot) {
	target := snapshot.Target()
	cmd.Printf("Target: %q", target.Keyword)
	if target.Intent != "" {
		cmd.Printf(" (%s)", target.Intent)
	}
	cmd.Println()
	cmd.Println()

	scores := snapshot.Scores()
	cmd.Println("Dimension scores:")
	for _, tag := range sortedTags(scores) {
		cmd.Printf("  %-22s %.4f\n", tag, scores[tag])
	}
	cmd.Println()
	cmd.Printf("Composite: %.4f\n", snapshot.Composite())
}

// snapshotOutput is the JSON shape of a scored page.
type snapshotOutput struct {
	Keyword   string             `json:"keyword"`
	Intent    string             `json:"intent,omitempty"`
	RootHash  string             `json:"root_hash"`
	Scores    map[string]float64 `json:"scores"`
	Composite float64            `json:"composite"`
}

func outputSnapshotJSON(cmd *cobra.Command, snapshot *domain.Snapshot) error {
	target := snapshot.Target()
	out := snapshotOutput{
		Keyword:   target.Keyword,
		Intent:    target.Intent,
		RootHash:  snapshot.RootHash().String(),
		Scores:    make(map[string]float64),
		Composite: snapshot.Composite(),
	}
	for tag, value := range snapshot.Scores() {
		out.Scores[tag.String()] = value
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
