package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/skora-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/skora-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/skora-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
)

// statusInterval is how often the dashboard polls the run status.
const statusInterval = 250 * time.Millisecond

// statusTickMsg asks the app to poll the optimize service.
type statusTickMsg struct{}

// settingsLoadedMsg carries the configured loop settings for display.
type settingsLoadedMsg struct {
	settings *domain.AppSettings
}

// baselineScoredMsg carries the snapshot of the unedited page.
type baselineScoredMsg struct {
	snapshot *domain.Snapshot
	err      error
}

// runFinishedMsg carries the finished run's report.
type runFinishedMsg struct {
	report *domain.OptimizeReport
	err    error
}

// App is the live optimization dashboard following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// cancel stops the run between iterations.
	cancel context.CancelFunc

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the dashboard keybindings.
	keymap *keymap.KeyMap

	// spinner animates while the run is active.
	spinner spinner.Model

	// progress tracks the iteration budget.
	progress progress.Model

	// statusBar is the bottom bar with state and key hints.
	statusBar *status.Bar

	// page, target, and opts define the run the dashboard drives.
	page   domain.StructuredPage
	target domain.Target
	opts   driving.OptimizeOptions

	// status is the latest polled run status.
	status domain.RunStatus

	// settings are the configured loop settings, for display fallbacks.
	settings *domain.AppSettings

	// baseline holds the unedited page's dimension scores.
	baseline domain.DimensionScores

	// report and runErr are set once the run finishes.
	report *domain.OptimizeReport
	runErr error

	// done marks that the run has finished.
	done bool

	// cancelling marks that a cancel was requested.
	cancelling bool

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new dashboard with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(s.Theme().Secondary)

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		spinner:   sp,
		progress:  prog,
		statusBar: status.NewBar(s, km),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithRun sets the page, target, and loop options the dashboard runs.
func (a *App) WithRun(
	page domain.StructuredPage,
	target domain.Target,
	opts driving.OptimizeOptions,
) *App {
	a.page = page
	a.target = target
	a.opts = opts
	return a
}

// Init implements tea.Model.
// It starts the run in the background and begins polling its status.
func (a *App) Init() tea.Cmd {
	runCtx, cancel := context.WithCancel(a.ctx)
	a.cancel = cancel

	cmds := []tea.Cmd{
		tea.SetWindowTitle("skora - optimizing"),
		a.spinner.Tick,
		a.startRun(runCtx),
		a.pollStatus(),
	}
	if a.ports.Score != nil {
		cmds = append(cmds, a.scoreBaseline(runCtx))
	}
	if a.ports.Settings != nil {
		cmds = append(cmds, a.loadSettings())
	}
	return tea.Batch(cmds...)
}

// startRun returns a command that runs the loop to completion.
func (a *App) startRun(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		report, err := a.ports.Optimize.Run(ctx, a.page, a.target, a.opts)
		return runFinishedMsg{report: report, err: err}
	}
}

// scoreBaseline scores the unedited page so the dimension table fills in
// while the run warms up. The run's own first evaluation reuses the same
// cache entries.
func (a *App) scoreBaseline(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		snapshot, err := a.ports.Score.Score(ctx, a.page, a.target)
		return baselineScoredMsg{snapshot: snapshot, err: err}
	}
}

// loadSettings fetches configured loop settings for display fallbacks.
func (a *App) loadSettings() tea.Cmd {
	return func() tea.Msg {
		settings, err := a.ports.Settings.Get()
		if err != nil {
			return settingsLoadedMsg{}
		}
		return settingsLoadedMsg{settings: settings}
	}
}

// pollStatus schedules the next status poll.
func (a *App) pollStatus() tea.Cmd {
	return tea.Tick(statusInterval, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.statusBar.SetWidth(msg.Width)
		a.progress.Width = clampInt(msg.Width-4, 10, 60)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case spinner.TickMsg:
		if a.done {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case progress.FrameMsg:
		model, cmd := a.progress.Update(msg)
		a.progress = model.(progress.Model)
		return a, cmd

	case statusTickMsg:
		if a.done {
			return a, nil
		}
		a.status = a.ports.Optimize.Status()
		cmds := []tea.Cmd{a.pollStatus()}
		if pct := a.completion(); pct > 0 {
			cmds = append(cmds, a.progress.SetPercent(pct))
		}
		return a, tea.Batch(cmds...)

	case settingsLoadedMsg:
		if msg.settings != nil {
			a.settings = msg.settings
		}
		return a, nil

	case baselineScoredMsg:
		// A failed baseline is not fatal; the run reports its own errors.
		if msg.err == nil && msg.snapshot != nil {
			a.baseline = msg.snapshot.Scores()
		}
		return a, nil

	case runFinishedMsg:
		a.done = true
		a.report = msg.report
		a.runErr = msg.err
		a.status = a.ports.Optimize.Status()
		if a.cancel != nil {
			a.cancel()
		}
		if msg.err != nil {
			a.statusBar.SetState(status.StateFailed)
			a.statusBar.SetMessage(msg.err.Error())
		} else {
			a.statusBar.SetState(status.StateDone)
			if msg.report != nil {
				a.statusBar.SetMessage(msg.report.Reason.Description())
			}
		}
		return a, a.progress.SetPercent(1)
	}

	return a, nil
}

// handleKeyMsg handles key presses.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if keymap.Matches(keyStr, a.keymap.ForceQuit) {
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit
	}

	if a.done {
		if keymap.Matches(keyStr, a.keymap.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}

	if keymap.Matches(keyStr, a.keymap.Cancel) && !a.cancelling {
		// The loop checks the context between iterations; the report
		// still arrives, marked cancelled.
		if a.cancel != nil {
			a.cancel()
		}
		a.cancelling = true
		a.statusBar.SetState(status.StateCancelling)
		return a, nil
	}

	return a, nil
}

// View implements tea.Model.
// It renders the dashboard.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(a.styles.Title.Render(fmt.Sprintf("Optimizing for %q", a.target.Keyword)))
	if a.target.Intent != "" {
		b.WriteString(a.styles.Muted.Render(fmt.Sprintf("  (%s)", a.target.Intent)))
	}
	b.WriteString("\n\n")

	b.WriteString(a.viewRun())
	b.WriteString("\n")
	b.WriteString(a.viewIteration())
	b.WriteString("\n")
	b.WriteString(a.viewDimensions())
	b.WriteString("\n")
	b.WriteString(a.statusBar.View())

	return b.String()
}

// viewRun renders the headline state, progress bar, and composite.
func (a *App) viewRun() string {
	var b strings.Builder

	switch {
	case a.done && a.runErr != nil:
		b.WriteString(a.styles.Error.Render(fmt.Sprintf("Failed: %v", a.runErr)))
	case a.done && a.report != nil:
		b.WriteString(a.styles.Success.Render(a.report.Reason.Description()))
		b.WriteString(a.styles.Muted.Render(fmt.Sprintf(
			"  %d iterations, %s",
			len(a.report.Iterations), a.report.Elapsed.Round(time.Millisecond),
		)))
	case a.cancelling:
		b.WriteString(a.spinner.View())
		b.WriteString(" ")
		b.WriteString(a.styles.Warning.Render("Cancelling, finishing the current iteration"))
	default:
		b.WriteString(a.spinner.View())
		b.WriteString(" ")
		b.WriteString(a.styles.Normal.Render(fmt.Sprintf(
			"Iteration %d/%d", a.status.Iteration, a.maxIterations(),
		)))
		if a.status.StallCount > 0 {
			b.WriteString(a.styles.Warning.Render(fmt.Sprintf(
				"  no improvement for %d", a.status.StallCount,
			)))
		}
	}
	b.WriteString("\n")
	b.WriteString(a.progress.View())
	b.WriteString("\n")

	if a.done && a.report != nil {
		delta := a.report.Improvement()
		style := a.styles.Normal
		if delta > 0 {
			style = a.styles.Success
		}
		b.WriteString(a.styles.Normal.Render(fmt.Sprintf(
			"Composite: %.4f -> %.4f", a.report.StartComposite, a.report.FinalComposite,
		)))
		b.WriteString(style.Render(fmt.Sprintf(" (%+.4f)", delta)))
	} else {
		b.WriteString(a.styles.Normal.Render(fmt.Sprintf(
			"Best composite: %.4f", a.status.BestComposite,
		)))
		if a.status.TargetScore > 0 {
			b.WriteString(a.styles.Muted.Render(fmt.Sprintf(
				"  target %.4f", a.status.TargetScore,
			)))
		}
	}
	b.WriteString("\n")

	return b.String()
}

// viewIteration renders the most recent iteration's counters.
func (a *App) viewIteration() string {
	last := a.status.Last
	if last.Iteration == 0 {
		return a.styles.Muted.Render("Waiting for the first iteration...") + "\n"
	}

	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Last iteration"))
	b.WriteString("\n")

	b.WriteString(a.styles.Normal.Render(fmt.Sprintf(
		"  %d candidates: %d accepted, %d below threshold, %d failed",
		last.Candidates, last.Accepted, last.RejectedScore, last.RejectedError,
	)))
	b.WriteString("\n")

	if last.AcceptedDelta > 0 {
		b.WriteString(a.styles.Success.Render(fmt.Sprintf(
			"  promoted a candidate, +%.4f", last.AcceptedDelta,
		)))
		b.WriteString("\n")
	}

	if eps := a.epsilon(); eps > 0 {
		b.WriteString(a.styles.Muted.Render(fmt.Sprintf(
			"  accepting improvements above %.4g", eps,
		)))
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Muted.Render(fmt.Sprintf(
		"  embedded %d texts, cache %d hits / %d misses, %s",
		last.EmbeddedTexts, last.CacheHits, last.CacheMisses,
		last.Elapsed.Round(time.Millisecond),
	)))
	b.WriteString("\n")

	return b.String()
}

// viewDimensions renders the per-dimension score table. While the run is
// active only the baseline column is known; the final column appears once
// the run finishes.
func (a *App) viewDimensions() string {
	var final domain.DimensionScores
	if a.report != nil {
		final = a.report.FinalScores
	}
	if len(a.baseline) == 0 && len(final) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Dimension scores"))
	b.WriteString("\n")

	for _, tag := range a.dimensionTags() {
		start, hasStart := a.baseline[tag]

		b.WriteString(a.styles.Normal.Render(fmt.Sprintf("  %-22s", tag)))
		if hasStart {
			b.WriteString(a.styles.Normal.Render(fmt.Sprintf(" %.4f", start)))
		} else {
			b.WriteString(a.styles.Muted.Render("      -"))
		}

		if value, ok := final[tag]; ok {
			b.WriteString(a.styles.Muted.Render(" -> "))
			style := a.styles.Normal
			switch {
			case hasStart && value > start:
				style = a.styles.Success
			case hasStart && value < start:
				style = a.styles.Error
			}
			b.WriteString(style.Render(fmt.Sprintf("%.4f", value)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// dimensionTags returns the table rows in stable order.
func (a *App) dimensionTags() []domain.DimensionTag {
	if a.ports.Score != nil {
		if tags := a.ports.Score.Dimensions(); len(tags) > 0 {
			return tags
		}
	}

	seen := make(map[domain.DimensionTag]struct{}, len(a.baseline))
	for tag := range a.baseline {
		seen[tag] = struct{}{}
	}
	if a.report != nil {
		for tag := range a.report.FinalScores {
			seen[tag] = struct{}{}
		}
	}

	tags := make([]domain.DimensionTag, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// maxIterations resolves the iteration budget for display before the
// first status poll arrives.
func (a *App) maxIterations() int {
	if a.status.MaxIterations > 0 {
		return a.status.MaxIterations
	}
	if a.opts.MaxIterations > 0 {
		return a.opts.MaxIterations
	}
	if a.settings != nil {
		return a.settings.Optimize.MaxIterations
	}
	return 0
}

// epsilon resolves the effective acceptance threshold for display.
func (a *App) epsilon() float64 {
	if a.opts.Epsilon > 0 {
		return a.opts.Epsilon
	}
	if a.settings != nil {
		return a.settings.Optimize.Epsilon
	}
	return 0
}

// completion returns run progress in [0, 1].
func (a *App) completion() float64 {
	budget := a.maxIterations()
	if budget <= 0 {
		return 0
	}
	pct := float64(a.status.Iteration) / float64(budget)
	if pct > 1 {
		return 1
	}
	return pct
}

// Report returns the finished run's report. It is nil when the dashboard
// was quit before the run completed.
func (a *App) Report() (*domain.OptimizeReport, error) {
	if a.runErr != nil {
		return nil, a.runErr
	}
	return a.report, nil
}

// Done returns whether the run has finished.
func (a *App) Done() bool {
	return a.done
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)
	a.progress.Width = clampInt(width-4, 10, 60)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
