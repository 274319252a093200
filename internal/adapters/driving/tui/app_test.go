package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skora-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
)

func newTestPorts() *Ports {
	return &Ports{
		Optimize: &MockOptimizeService{},
		Score:    &MockScoreService{},
		Settings: &MockSettingsService{},
	}
}

func testTarget() domain.Target {
	return domain.Target{Keyword: "coffee brewing"}
}

func TestNewApp_Success(t *testing.T) {
	ports := newTestPorts()

	app, err := NewApp(ports)

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.False(t, app.Done())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	ports := &Ports{
		Optimize: nil,
		Score:    &MockScoreService{},
	}

	app, err := NewApp(ports)

	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
}

func TestApp_WithRun(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	page := domain.StructuredPage{Title: domain.Sentence{Text: "Coffee"}}
	opts := driving.OptimizeOptions{MaxIterations: 5}
	result := app.WithRun(page, testTarget(), opts)

	assert.Equal(t, app, result)
	assert.Equal(t, "Coffee", app.page.Title.Text)
	assert.Equal(t, "coffee brewing", app.target.Keyword)
	assert.Equal(t, 5, app.opts.MaxIterations)
}

func TestApp_Init(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	cmd := app.Init()

	// Init returns a batch command and arms the cancel func
	assert.NotNil(t, cmd)
	assert.NotNil(t, app.cancel)
}

func TestApp_Update_WindowSize(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := tea.WindowSizeMsg{Width: 80, Height: 24}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_Update_WindowSize_ClampsProgressWidth(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	app.Update(tea.WindowSizeMsg{Width: 10, Height: 24})
	assert.Equal(t, 10, app.progress.Width)

	app.Update(tea.WindowSizeMsg{Width: 200, Height: 24})
	assert.Equal(t, 60, app.progress.Width)
}

func TestApp_Update_StatusTick(t *testing.T) {
	ports := &Ports{
		Optimize: &MockOptimizeService{
			StatusFunc: func() domain.RunStatus {
				return domain.RunStatus{
					State:         domain.RunStateRunning,
					Iteration:     3,
					MaxIterations: 10,
					BestComposite: 0.62,
				}
			},
		},
	}
	app, _ := NewApp(ports)

	model, cmd := app.Update(statusTickMsg{})

	assert.Equal(t, app, model)
	assert.NotNil(t, cmd)
	assert.Equal(t, 3, app.status.Iteration)
	assert.InDelta(t, 0.62, app.status.BestComposite, 1e-9)
}

func TestApp_Update_StatusTick_AfterDone(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.done = true

	model, cmd := app.Update(statusTickMsg{})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
}

func TestApp_Update_SettingsLoaded(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	settings := &domain.AppSettings{
		Optimize: domain.OptimizeSettings{MaxIterations: 25, Epsilon: 0.004},
	}
	model, cmd := app.Update(settingsLoadedMsg{settings: settings})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	require.NotNil(t, app.settings)
	assert.Equal(t, 25, app.settings.Optimize.MaxIterations)
}

func TestApp_Update_SettingsLoaded_Nil(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	model, cmd := app.Update(settingsLoadedMsg{})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.Nil(t, app.settings)
}

func TestApp_Update_BaselineScored(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	scores := domain.DimensionScores{"keyword_alignment": 0.61}
	snapshot := domain.NewSnapshot(nil, testTarget(), scores, 0.61)
	model, cmd := app.Update(baselineScoredMsg{snapshot: snapshot})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.InDelta(t, 0.61, app.baseline["keyword_alignment"], 1e-9)
}

func TestApp_Update_BaselineScored_Error(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	model, cmd := app.Update(baselineScoredMsg{err: errors.New("provider down")})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.Empty(t, app.baseline)
}

func TestApp_Update_RunFinished(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	report := &domain.OptimizeReport{
		StartComposite: 0.52,
		FinalComposite: 0.81,
		Reason:         domain.TerminationConverged,
	}
	model, cmd := app.Update(runFinishedMsg{report: report})

	assert.Equal(t, app, model)
	assert.NotNil(t, cmd)
	assert.True(t, app.Done())
	assert.Equal(t, status.StateDone, app.statusBar.State())
	assert.Equal(t, domain.TerminationConverged.Description(), app.statusBar.Message())
}

func TestApp_Update_RunFinished_WithError(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	runErr := errors.New("embedding provider unreachable")
	model, cmd := app.Update(runFinishedMsg{err: runErr})

	assert.Equal(t, app, model)
	assert.NotNil(t, cmd)
	assert.True(t, app.Done())
	assert.Equal(t, status.StateFailed, app.statusBar.State())
	assert.Contains(t, app.statusBar.Message(), "unreachable")
}

func TestApp_Report_AfterRun(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	report := &domain.OptimizeReport{FinalComposite: 0.81}
	app.Update(runFinishedMsg{report: report})

	got, err := app.Report()

	require.NoError(t, err)
	assert.Equal(t, report, got)
}

func TestApp_Report_Error(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	runErr := errors.New("run failed")
	app.Update(runFinishedMsg{err: runErr})

	got, err := app.Report()

	assert.Nil(t, got)
	assert.Equal(t, runErr, err)
}

func TestApp_Report_BeforeFinish(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	got, err := app.Report()

	assert.Nil(t, got)
	assert.NoError(t, err)
}

func TestApp_Update_KeyMsg_CancelWhileRunning(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.Init()

	msg := tea.KeyMsg{Type: tea.KeyEsc}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.cancelling)
	assert.Equal(t, status.StateCancelling, app.statusBar.State())
}

func TestApp_Update_KeyMsg_CancelTwice(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.Init()

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.cancelling)
}

func TestApp_Update_KeyMsg_QuitWhenDone(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.Update(runFinishedMsg{report: &domain.OptimizeReport{}})

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	_, cmd := app.Update(msg)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_Update_KeyMsg_EnterIgnoredWhileRunning(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.False(t, app.cancelling)
}

func TestApp_Update_KeyMsg_CtrlC(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := tea.KeyMsg{Type: tea.KeyCtrlC}
	_, cmd := app.Update(msg)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_Update_SpinnerTick_AfterDone(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.done = true

	model, cmd := app.Update(app.spinner.Tick())

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
}

func TestApp_EpsilonPrefersRunOptions(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.WithRun(domain.StructuredPage{}, testTarget(), driving.OptimizeOptions{Epsilon: 0.01})
	app.Update(settingsLoadedMsg{settings: &domain.AppSettings{
		Optimize: domain.OptimizeSettings{Epsilon: 0.004},
	}})

	assert.InDelta(t, 0.01, app.epsilon(), 1e-9)
}

func TestApp_EpsilonFallsBackToSettings(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.Update(settingsLoadedMsg{settings: &domain.AppSettings{
		Optimize: domain.OptimizeSettings{Epsilon: 0.004},
	}})

	assert.InDelta(t, 0.004, app.epsilon(), 1e-9)
}

func TestApp_MaxIterationsFallsBackToSettings(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.Update(settingsLoadedMsg{settings: &domain.AppSettings{
		Optimize: domain.OptimizeSettings{MaxIterations: 25},
	}})

	assert.Equal(t, 25, app.maxIterations())
}

func TestApp_Completion(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	app.status = domain.RunStatus{Iteration: 5, MaxIterations: 10}
	assert.InDelta(t, 0.5, app.completion(), 1e-9)

	app.status = domain.RunStatus{Iteration: 12, MaxIterations: 10}
	assert.InDelta(t, 1.0, app.completion(), 1e-9)

	app.status = domain.RunStatus{}
	assert.InDelta(t, 0.0, app.completion(), 1e-9)
}

func TestApp_View_NotReady(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	view := app.View()

	assert.Contains(t, view, "Initialising")
}

func TestApp_View_Running(t *testing.T) {
	ports := &Ports{
		Optimize: &MockOptimizeService{
			StatusFunc: func() domain.RunStatus {
				return domain.RunStatus{
					State:         domain.RunStateRunning,
					Iteration:     3,
					MaxIterations: 10,
					BestComposite: 0.62,
					TargetScore:   0.9,
				}
			},
		},
	}
	app, _ := NewApp(ports)
	app.WithRun(domain.StructuredPage{}, testTarget(), driving.OptimizeOptions{})
	app.SetDimensions(80, 24)
	app.Update(statusTickMsg{})

	view := app.View()

	assert.Contains(t, view, "Optimizing for \"coffee brewing\"")
	assert.Contains(t, view, "Iteration 3/10")
	assert.Contains(t, view, "Best composite: 0.6200")
	assert.Contains(t, view, "target 0.9000")
}

func TestApp_View_ShowsIntent(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	target := domain.Target{Keyword: "coffee brewing", Intent: "informational"}
	app.WithRun(domain.StructuredPage{}, target, driving.OptimizeOptions{})
	app.SetDimensions(80, 24)

	view := app.View()

	assert.Contains(t, view, "informational")
}

func TestApp_View_WaitingForFirstIteration(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)

	view := app.View()

	assert.Contains(t, view, "Waiting for the first iteration")
}

func TestApp_View_StallWarning(t *testing.T) {
	ports := &Ports{
		Optimize: &MockOptimizeService{
			StatusFunc: func() domain.RunStatus {
				return domain.RunStatus{Iteration: 6, MaxIterations: 10, StallCount: 4}
			},
		},
	}
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(statusTickMsg{})

	view := app.View()

	assert.Contains(t, view, "no improvement for 4")
}

func TestApp_View_LastIteration(t *testing.T) {
	ports := &Ports{
		Optimize: &MockOptimizeService{
			StatusFunc: func() domain.RunStatus {
				return domain.RunStatus{
					Iteration:     2,
					MaxIterations: 10,
					Last: domain.IterationStats{
						Iteration:     2,
						Candidates:    4,
						Accepted:      1,
						RejectedScore: 2,
						RejectedError: 1,
						AcceptedDelta: 0.03,
						EmbeddedTexts: 12,
						CacheHits:     40,
						CacheMisses:   8,
						Elapsed:       1200 * time.Millisecond,
					},
				}
			},
		},
	}
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(statusTickMsg{})

	view := app.View()

	assert.Contains(t, view, "Last iteration")
	assert.Contains(t, view, "4 candidates: 1 accepted, 2 below threshold, 1 failed")
	assert.Contains(t, view, "promoted a candidate, +0.0300")
	assert.Contains(t, view, "embedded 12 texts, cache 40 hits / 8 misses")
}

func TestApp_View_Cancelling(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.Init()
	app.SetDimensions(80, 24)
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	view := app.View()

	assert.Contains(t, view, "Cancelling")
}

func TestApp_View_Done(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.WithRun(domain.StructuredPage{}, testTarget(), driving.OptimizeOptions{})
	app.SetDimensions(80, 24)

	report := &domain.OptimizeReport{
		StartComposite: 0.52,
		FinalComposite: 0.81,
		Iterations:     []domain.IterationStats{{Iteration: 1}, {Iteration: 2}},
		Reason:         domain.TerminationTargetReached,
		Elapsed:        3 * time.Second,
	}
	app.Update(runFinishedMsg{report: report})

	view := app.View()

	assert.Contains(t, view, "Target score reached")
	assert.Contains(t, view, "2 iterations")
	assert.Contains(t, view, "Composite: 0.5200 -> 0.8100")
	assert.Contains(t, view, "+0.2900")
}

func TestApp_View_Failed(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(runFinishedMsg{err: errors.New("embedding provider unreachable")})

	view := app.View()

	assert.Contains(t, view, "Failed")
	assert.Contains(t, view, "embedding provider unreachable")
}

func TestApp_View_DimensionTable(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.WithRun(domain.StructuredPage{}, testTarget(), driving.OptimizeOptions{})
	app.SetDimensions(80, 24)

	baseline := domain.DimensionScores{
		"keyword_alignment": 0.61,
		"readability":       0.72,
	}
	app.Update(baselineScoredMsg{snapshot: domain.NewSnapshot(nil, testTarget(), baseline, 0.66)})

	report := &domain.OptimizeReport{
		StartComposite: 0.66,
		FinalComposite: 0.74,
		FinalScores: domain.DimensionScores{
			"keyword_alignment": 0.75,
			"readability":       0.72,
		},
		Reason: domain.TerminationConverged,
	}
	app.Update(runFinishedMsg{report: report})

	view := app.View()

	assert.Contains(t, view, "Dimension scores")
	assert.Contains(t, view, "keyword_alignment")
	assert.Contains(t, view, "0.6100")
	assert.Contains(t, view, "0.7500")
}

func TestApp_DimensionTags_StableOrder(t *testing.T) {
	ports := &Ports{
		Optimize: &MockOptimizeService{},
		Score: &MockScoreService{
			DimensionsFunc: func() []domain.DimensionTag {
				return []domain.DimensionTag{"readability", "keyword_alignment"}
			},
		},
	}
	app, _ := NewApp(ports)

	tags := app.dimensionTags()

	require.Len(t, tags, 2)
	assert.Equal(t, domain.DimensionTag("readability"), tags[0])
	assert.Equal(t, domain.DimensionTag("keyword_alignment"), tags[1])
}

func TestApp_DimensionTags_FallsBackToScores(t *testing.T) {
	ports := &Ports{Optimize: &MockOptimizeService{}}
	app, _ := NewApp(ports)
	app.baseline = domain.DimensionScores{"readability": 0.7, "keyword_alignment": 0.6}

	tags := app.dimensionTags()

	require.Len(t, tags, 2)
	assert.Equal(t, domain.DimensionTag("keyword_alignment"), tags[0])
	assert.Equal(t, domain.DimensionTag("readability"), tags[1])
}

func TestApp_SetDimensions(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	assert.False(t, app.Ready())

	app.SetDimensions(100, 50)

	assert.True(t, app.Ready())
}
