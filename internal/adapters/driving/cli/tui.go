package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/skora-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
)

// optimizeWithDashboard runs the loop behind the live terminal
// dashboard and writes the result once the program exits.
func optimizeWithDashboard(
	cmd *cobra.Command,
	page domain.StructuredPage,
	target domain.Target,
	opts driving.OptimizeOptions,
	path string,
) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in dashboard: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := &tui.Ports{
		Optimize: optimizeService,
		Score:    scoreService,
		Settings: settingsService,
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}

	app.WithContext(cmd.Context())
	app.WithRun(page, target, opts)

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}

	report, err := app.Report()
	if err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}
	if report == nil {
		// Quit before the run finished; nothing to write.
		return nil
	}

	return writeOptimizeResult(cmd, report, path)
}
