package domain

import "time"

// TerminationReason explains why an optimization run stopped.
type TerminationReason string

// Available termination reasons.
const (
	// TerminationConverged means the configured number of consecutive
	// iterations passed without an accepted candidate.
	TerminationConverged TerminationReason = "converged"

	// TerminationTargetReached means the composite reached the target.
	TerminationTargetReached TerminationReason = "target_reached"

	// TerminationMaxIterations means the iteration budget ran out.
	TerminationMaxIterations TerminationReason = "max_iterations"

	// TerminationCancelled means the run was cancelled between iterations.
	TerminationCancelled TerminationReason = "cancelled"
)

// IsValid returns true if the reason is recognised.
func (r TerminationReason) IsValid() bool {
	switch r {
	case TerminationConverged, TerminationTargetReached, TerminationMaxIterations, TerminationCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r TerminationReason) String() string {
	return string(r)
}

// Description returns a human-readable description of the reason.
func (r TerminationReason) Description() string {
	switch r {
	case TerminationConverged:
		return "Converged (no improving candidate found)"
	case TerminationTargetReached:
		return "Target score reached"
	case TerminationMaxIterations:
		return "Iteration budget exhausted"
	case TerminationCancelled:
		return "Cancelled"
	default:
		return unknownDescription
	}
}

// IterationStats summarises one optimization iteration.
type IterationStats struct {
	// Iteration is the 1-based iteration number.
	Iteration int

	// Candidates is how many candidate pages were evaluated.
	Candidates int

	// Accepted is how many candidates beat the acceptance threshold.
	// At most one is promoted, but all passers are counted.
	Accepted int

	// RejectedScore is how many candidates scored below the threshold.
	RejectedScore int

	// RejectedError is how many candidates failed to evaluate.
	RejectedError int

	// BestComposite is the baseline composite after this iteration.
	BestComposite float64

	// AcceptedDelta is the improvement the promoted candidate brought,
	// zero when nothing was promoted.
	AcceptedDelta float64

	// EmbeddedTexts is how many texts went to the embedder this iteration.
	EmbeddedTexts int

	// CacheHits and CacheMisses count embedding lookups this iteration.
	CacheHits   int
	CacheMisses int

	// Elapsed is the wall time of the iteration.
	Elapsed time.Duration
}

// OptimizeReport is the full outcome of an optimization run.
type OptimizeReport struct {
	// RunID identifies the run in logs and status output.
	RunID string

	// Target is what the page was optimized for.
	Target Target

	// StartComposite and FinalComposite bracket the run.
	StartComposite float64
	FinalComposite float64

	// StartScores and FinalScores are the per-dimension values.
	StartScores DimensionScores
	FinalScores DimensionScores

	// BestPage is the page text after all accepted edits.
	BestPage StructuredPage

	// BestSnapshot is the snapshot of the best page.
	BestSnapshot *Snapshot

	// Iterations is the per-iteration history, in order.
	Iterations []IterationStats

	// Reason is why the run stopped.
	Reason TerminationReason

	// Elapsed is the total wall time.
	Elapsed time.Duration
}

// Improvement returns the composite gain over the run.
func (r OptimizeReport) Improvement() float64 {
	return r.FinalComposite - r.StartComposite
}

// AcceptedTotal returns the number of iterations that promoted a candidate.
func (r OptimizeReport) AcceptedTotal() int {
	total := 0
	for _, it := range r.Iterations {
		if it.AcceptedDelta > 0 {
			total++
		}
	}
	return total
}

// RunState is the lifecycle state of an optimization run.
type RunState string

// Available run states.
const (
	// RunStateIdle means no run has started.
	RunStateIdle RunState = "idle"

	// RunStateRunning means iterations are in progress.
	RunStateRunning RunState = "running"

	// RunStateDone means the run finished; Reason says why.
	RunStateDone RunState = "done"

	// RunStateFailed means the run aborted with an error.
	RunStateFailed RunState = "failed"
)

// String returns the string representation.
func (s RunState) String() string {
	return string(s)
}

// RunStatus is a point-in-time view of a run, safe to poll from UIs.
type RunStatus struct {
	// RunID identifies the run.
	RunID string

	// State is the lifecycle state.
	State RunState

	// Iteration is the most recently finished iteration number.
	Iteration int

	// MaxIterations is the configured budget.
	MaxIterations int

	// BestComposite is the current baseline composite.
	BestComposite float64

	// TargetScore is the configured stop threshold, 0 when unset.
	TargetScore float64

	// StallCount is the current run of iterations without an acceptance.
	StallCount int

	// Last is the most recent iteration's stats.
	Last IterationStats

	// Reason is set once State is done.
	Reason TerminationReason

	// Err is the failure message once State is failed.
	Err string
}
