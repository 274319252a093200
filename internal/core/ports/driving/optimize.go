package driving

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

// OptimizeOptions overrides loop settings for a single run.
// Zero values fall back to configured settings.
type OptimizeOptions struct {
	// MaxIterations caps the run.
	MaxIterations int

	// TargetScore stops early once the composite reaches it.
	TargetScore float64

	// Epsilon is the minimum accepted improvement.
	Epsilon float64

	// StallIterations is the convergence window.
	StallIterations int

	// Candidates is how many variants each iteration evaluates.
	Candidates int

	// Workers bounds parallel candidate evaluation.
	Workers int
}

// OptimizeService runs the accept/reject optimization loop.
type OptimizeService interface {
	// Run optimizes a page for a target and returns the full report.
	// The call is synchronous; cancel ctx to stop between iterations.
	// Only one run may be active at a time (domain.ErrRunInProgress).
	Run(ctx context.Context, page domain.StructuredPage, target domain.Target, opts OptimizeOptions) (*domain.OptimizeReport, error)

	// Status returns a point-in-time view of the current (or last) run.
	// Safe to poll concurrently with Run.
	Status() domain.RunStatus
}
