package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
)

var (
	optimizeKeyword    string
	optimizeIntent     string
	optimizeFormat     string
	optimizeOut        string
	optimizeJSON       bool
	optimizePlain      bool
	optimizeWatch      bool
	optimizeMaxIters   int
	optimizeTarget     float64
	optimizeEpsilon    float64
	optimizeStall      int
	optimizeCandidates int
	optimizeWorkers    int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [file]",
	Short: "Optimize a page for a target keyword",
	Long: `Runs the accept/reject optimization loop on a page.

Each iteration proposes candidate edits of the current best page, scores
them incrementally, and keeps the best candidate that improves the
composite by at least epsilon. The loop stops when it converges, reaches
the target score, or runs out of iterations.

On a terminal the run shows a live dashboard; use --plain for line
output. With --watch the page file is re-optimized after every save.

Loop flags left at zero fall back to the configured settings.`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeKeyword, "keyword", "k", "", "target search keyword (required)")
	optimizeCmd.Flags().StringVarP(&optimizeIntent, "intent", "i", "", "searcher intent, one sentence")
	optimizeCmd.Flags().StringVar(&optimizeFormat, "format", "", "input format: markdown, plain, or json")
	optimizeCmd.Flags().StringVarP(&optimizeOut, "out", "o", "", "write the optimized page here, - for stdout")
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "output the report as JSON")
	optimizeCmd.Flags().BoolVar(&optimizePlain, "plain", false, "line output instead of the dashboard")
	optimizeCmd.Flags().BoolVarP(&optimizeWatch, "watch", "w", false, "re-optimize when the file changes")
	optimizeCmd.Flags().IntVar(&optimizeMaxIters, "max-iterations", 0, "iteration budget")
	optimizeCmd.Flags().Float64Var(&optimizeTarget, "target-score", 0, "stop once the composite reaches this")
	optimizeCmd.Flags().Float64Var(&optimizeEpsilon, "epsilon", 0, "minimum accepted improvement")
	optimizeCmd.Flags().IntVar(&optimizeStall, "stall-iterations", 0, "convergence window")
	optimizeCmd.Flags().IntVar(&optimizeCandidates, "candidates", 0, "candidates per iteration")
	optimizeCmd.Flags().IntVar(&optimizeWorkers, "workers", 0, "parallel candidate evaluations")
	_ = optimizeCmd.MarkFlagRequired("keyword") //nolint:errcheck // Flag registered above
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	if optimizeService == nil {
		return errors.New("optimize service not configured")
	}

	if optimizeWatch {
		return watchOptimize(cmd, args[0])
	}
	return optimizeOnce(cmd, args[0])
}

func optimizeOnce(cmd *cobra.Command, path string) error {
	page, err := loadPage(path, optimizeFormat)
	if err != nil {
		return err
	}

	target := domain.Target{Keyword: optimizeKeyword, Intent: optimizeIntent}
	opts := driving.OptimizeOptions{
		MaxIterations:   optimizeMaxIters,
		TargetScore:     optimizeTarget,
		Epsilon:         optimizeEpsilon,
		StallIterations: optimizeStall,
		Candidates:      optimizeCandidates,
		Workers:         optimizeWorkers,
	}

	if useDashboard() {
		return optimizeWithDashboard(cmd, page, target, opts, path)
	}
	return optimizeWithProgress(cmd, page, target, opts, path)
}

// useDashboard reports whether the run should show the live dashboard.
// Watch mode always uses line output; alt-screen flicker on every save
// is worse than plain lines.
func useDashboard() bool {
	if optimizePlain || optimizeJSON || optimizeWatch {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// optimizeWithProgress runs the loop while printing iteration progress.
func optimizeWithProgress(
	cmd *cobra.Command,
	page domain.StructuredPage,
	target domain.Target,
	opts driving.OptimizeOptions,
	path string,
) error {
	type result struct {
		report *domain.OptimizeReport
		err    error
	}

	resCh := make(chan result, 1)
	go func() {
		report, err := optimizeService.Run(cmd.Context(), page, target, opts)
		resCh <- result{report, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastIteration := 0
	for {
		select {
		case res := <-resCh:
			if res.err != nil {
				return fmt.Errorf("optimize failed: %w", res.err)
			}
			if lastIteration > 0 {
				cmd.Println()
			}
			return writeOptimizeResult(cmd, res.report, path)
		case <-ticker.C:
			status := optimizeService.Status()
			if status.State == domain.RunStateRunning && status.Iteration > lastIteration {
				cmd.Printf("\rIteration %d/%d, best %.4f",
					status.Iteration, status.MaxIterations, status.BestComposite)
				lastIteration = status.Iteration
			}
		}
	}
}

// watchOptimize re-runs the loop whenever the page file is saved.
// Events are debounced; editors fire several per save.
func watchOptimize(cmd *cobra.Command, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best-effort close on exit

	// Watch the directory, not the file: editors that replace the file
	// on save would silently drop a watch on the file itself.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}

	if err := optimizeOnce(cmd, path); err != nil {
		cmd.Printf("optimize: %v\n", err)
	}
	cmd.Printf("Watching %s, Ctrl+C to stop.\n", path)

	const debounce = 500 * time.Millisecond
	var pending time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			eventPath, err := filepath.Abs(event.Name)
			if err != nil || eventPath != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}
		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < debounce {
				continue
			}
			pending = time.Time{}
			if err := optimizeOnce(cmd, path); err != nil {
				cmd.Printf("optimize: %v\n", err)
			}
			cmd.Printf("Watching %s, Ctrl+C to stop.\n", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.Printf("watch error: %v\n", err)
		}
	}
}

// writeOptimizeResult prints the report and writes the optimized page
// where --out asks for it.
func writeOptimizeResult(cmd *cobra.Command, report *domain.OptimizeReport, inputPath string) error {
	if optimizeJSON {
		if err := outputReportJSON(cmd, report); err != nil {
			return err
		}
	} else {
		outputReportTable(cmd, report)
	}

	if optimizeOut == "" {
		return nil
	}

	// The page is rendered in the input's format, so edits keep shape.
	format, err := resolveFormat(inputPath, optimizeFormat)
	if err != nil {
		return err
	}
	rendered, err := pageSegmenterOrDefault().Render(report.BestPage, format)
	if err != nil {
		return fmt.Errorf("rendering optimized page: %w", err)
	}

	if optimizeOut == "-" {
		cmd.Println()
		cmd.Print(string(rendered))
		return nil
	}
	if err := os.WriteFile(optimizeOut, rendered, 0o644); err != nil {
		return fmt.Errorf("writing optimized page: %w", err)
	}
	cmd.Printf("Optimized page written to %s\n", optimizeOut)
	return nil
}

func outputReportTable(cmd *cobra.Command, report *domain.OptimizeReport) {
	cmd.Printf("Run %s: %s\n", report.RunID, report.Reason.Description())
	cmd.Printf("Composite: %.4f -> %.4f (%+.4f)\n",
		report.StartComposite, report.FinalComposite, report.Improvement())
	var rejectedScore, rejectedError int
	for _, it := range report.Iterations {
		rejectedScore += it.RejectedScore
		rejectedError += it.RejectedError
	}
	cmd.Printf("Iterations: %d, %d accepted, %d rejected on score, %d errored, %s\n",
		len(report.Iterations), report.AcceptedTotal(), rejectedScore, rejectedError,
		report.Elapsed.Round(time.Millisecond))

	cmd.Println()
	cmd.Println("Dimension scores:")
	for _, tag := range sortedTags(report.FinalScores) {
		cmd.Printf("  %-22s %.4f -> %.4f\n", tag, report.StartScores[tag], report.FinalScores[tag])
	}

	var embedded, hits, misses int
	for _, it := range report.Iterations {
		embedded += it.EmbeddedTexts
		hits += it.CacheHits
		misses += it.CacheMisses
	}
	if hits+misses > 0 {
		cmd.Println()
		cmd.Printf("Embedded %d texts, cache hit rate %.0f%%\n",
			embedded, float64(hits)/float64(hits+misses)*100)
	}
}

// reportOutput is the JSON shape of an optimization run.
type reportOutput struct {
	RunID          string                  `json:"run_id"`
	Keyword        string                  `json:"keyword"`
	Intent         string                  `json:"intent,omitempty"`
	Reason         string                  `json:"reason"`
	StartComposite float64                 `json:"start_composite"`
	FinalComposite float64                 `json:"final_composite"`
	Improvement    float64                 `json:"improvement"`
	StartScores    map[string]float64      `json:"start_scores"`
	FinalScores    map[string]float64      `json:"final_scores"`
	Iterations     []reportIterationOutput `json:"iterations"`
	ElapsedMS      int64                   `json:"elapsed_ms"`
}

type reportIterationOutput struct {
	Iteration     int     `json:"iteration"`
	Candidates    int     `json:"candidates"`
	Accepted      int     `json:"accepted"`
	RejectedScore int     `json:"rejected_score"`
	RejectedError int     `json:"rejected_error"`
	AcceptedDelta float64 `json:"accepted_delta"`
	BestComposite float64 `json:"best_composite"`
	EmbeddedTexts int     `json:"embedded_texts"`
	CacheHits     int     `json:"cache_hits"`
	CacheMisses   int     `json:"cache_misses"`
	ElapsedMS     int64   `json:"elapsed_ms"`
}

func outputReportJSON(cmd *cobra.Command, report *domain.OptimizeReport) error {
	out := reportOutput{
		RunID:          report.RunID,
		Keyword:        report.Target.Keyword,
		Intent:         report.Target.Intent,
		Reason:         report.Reason.String(),
		StartComposite: report.StartComposite,
		FinalComposite: report.FinalComposite,
		Improvement:    report.Improvement(),
		StartScores:    make(map[string]float64),
		FinalScores:    make(map[string]float64),
		Iterations:     make([]reportIterationOutput, 0, len(report.Iterations)),
		ElapsedMS:      report.Elapsed.Milliseconds(),
	}
	for tag, value := range report.StartScores {
		out.StartScores[tag.String()] = value
	}
	for tag, value := range report.FinalScores {
		out.FinalScores[tag.String()] = value
	}
	for _, it := range report.Iterations {
		out.Iterations = append(out.Iterations, reportIterationOutput{
			Iteration:     it.Iteration,
			Candidates:    it.Candidates,
			Accepted:      it.Accepted,
			RejectedScore: it.RejectedScore,
			RejectedError: it.RejectedError,
			AcceptedDelta: it.AcceptedDelta,
			BestComposite: it.BestComposite,
			EmbeddedTexts: it.EmbeddedTexts,
			CacheHits:     it.CacheHits,
			CacheMisses:   it.CacheMisses,
			ElapsedMS:     it.Elapsed.Milliseconds(),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
