package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
	"github.com/custodia-labs/skora-cli/internal/logger"
)

// Ensure OptimizeService implements the interface.
var _ driving.OptimizeService = (*OptimizeService)(nil)

// candidateResult holds one evaluated candidate.
type candidateResult struct {
	page     domain.StructuredPage
	snapshot *domain.Snapshot
	err      error
}

// OptimizeService runs the accept/reject optimization loop: each
// iteration proposes candidate edits of the current best page, scores
// them, and promotes the best candidate that improves the composite by
// at least epsilon. Candidate evaluation shares the content-addressed
// cache, so unchanged fragments never hit the embedder twice.
//
// One run at a time; Status is safe to poll concurrently from UIs.
type OptimizeService struct {
	score     *ScoreService
	generator driven.CandidateGenerator
	settings  domain.OptimizeSettings

	mu      sync.RWMutex
	running bool
	status  domain.RunStatus
}

// NewOptimizeService creates a new optimize service.
func NewOptimizeService(
	score *ScoreService,
	generator driven.CandidateGenerator,
	settings domain.OptimizeSettings,
) *OptimizeService {
	return &OptimizeService{
		score:     score,
		generator: generator,
		settings:  settings,
		status:    domain.RunStatus{State: domain.RunStateIdle},
	}
}

// Run optimizes a page for a target and returns the full report.
func (s *OptimizeService) Run(
	ctx context.Context, page domain.StructuredPage, target domain.Target, opts driving.OptimizeOptions,
) (*domain.OptimizeReport, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	settings := s.effectiveSettings(opts)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}
	s.running = true
	s.status = domain.RunStatus{
		RunID:         runID,
		State:         domain.RunStateRunning,
		MaxIterations: settings.MaxIterations,
		TargetScore:   settings.TargetScore,
	}
	s.mu.Unlock()

	report, err := s.run(ctx, runID, page, target, settings)

	s.mu.Lock()
	s.running = false
	if err != nil {
		s.status.State = domain.RunStateFailed
		s.status.Err = err.Error()
	} else {
		s.status.State = domain.RunStateDone
		s.status.Reason = report.Reason
	}
	s.mu.Unlock()

	return report, err
}

// Status returns a point-in-time view of the current (or last) run.
func (s *OptimizeService) Status() domain.RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// run executes the iteration loop. The caller holds the run latch.
func (s *OptimizeService) run(
	ctx context.Context, runID string, page domain.StructuredPage, target domain.Target,
	settings domain.OptimizeSettings,
) (*domain.OptimizeReport, error) {
	logger.Section("Optimization Run")
	logger.Info("Run %s: keyword %q, budget %d iterations, %d candidates/iteration",
		runID, target.Keyword, settings.MaxIterations, settings.Candidates)

	started := time.Now()

	best, err := s.score.Score(ctx, page, target)
	if err != nil {
		return nil, fmt.Errorf("score baseline: %w", err)
	}
	bestPage := page.Clone()

	report := &domain.OptimizeReport{
		RunID:          runID,
		Target:         target,
		StartComposite: best.Composite(),
		StartScores:    best.Scores(),
	}
	s.updateStatus(func(st *domain.RunStatus) {
		st.BestComposite = best.Composite()
	})

	reason := domain.TerminationMaxIterations
	stall := 0

	for iteration := 1; iteration <= settings.MaxIterations; iteration++ {
		if ctx.Err() != nil {
			reason = domain.TerminationCancelled
			break
		}

		stats, promoted, err := s.iterate(ctx, iteration, bestPage, best, target, settings)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				reason = domain.TerminationCancelled
				break
			}
			return nil, fmt.Errorf("iteration %d: %w", iteration, err)
		}

		if promoted != nil {
			bestPage = promoted.page
			best = promoted.snapshot
			stall = 0
		} else {
			stall++
		}
		report.Iterations = append(report.Iterations, stats)

		s.updateStatus(func(st *domain.RunStatus) {
			st.Iteration = iteration
			st.BestComposite = best.Composite()
			st.StallCount = stall
			st.Last = stats
		})

		logger.Info("Iteration %d/%d: composite %.4f, accepted %d, rejected %d, errored %d",
			iteration, settings.MaxIterations, stats.BestComposite,
			stats.Accepted, stats.RejectedScore, stats.RejectedError)

		if settings.TargetScore > 0 && best.Composite() >= settings.TargetScore {
			reason = domain.TerminationTargetReached
			break
		}
		if stall >= settings.StallIterations {
			reason = domain.TerminationConverged
			break
		}
	}

	report.FinalComposite = best.Composite()
	report.FinalScores = best.Scores()
	report.BestPage = bestPage
	report.BestSnapshot = best
	report.Reason = reason
	report.Elapsed = time.Since(started)

	logger.Info("Run %s finished after %d iterations: %s, composite %.4f to %.4f",
		runID, len(report.Iterations), reason, report.StartComposite, report.FinalComposite)
	return report, nil
}

// iterate runs one propose/score/accept round. A nil promoted result
// means no candidate cleared the threshold.
func (s *OptimizeService) iterate(
	ctx context.Context, iteration int, bestPage domain.StructuredPage, best *domain.Snapshot,
	target domain.Target, settings domain.OptimizeSettings,
) (domain.IterationStats, *candidateResult, error) {
	started := time.Now()
	stats := domain.IterationStats{
		Iteration:     iteration,
		BestComposite: best.Composite(),
	}

	candidates, err := s.generator.Propose(ctx, bestPage, target, settings.Candidates)
	if err != nil {
		return stats, nil, fmt.Errorf("propose candidates: %w", err)
	}
	if len(candidates) == 0 {
		logger.Debug("Iteration %d: generator proposed nothing", iteration)
		stats.Elapsed = time.Since(started)
		return stats, nil, nil
	}
	stats.Candidates = len(candidates)

	// Build every candidate tree up front; malformed proposals are
	// rejected before any embedder traffic.
	type builtCandidate struct {
		page domain.StructuredPage
		root *domain.FragmentNode
	}
	built := make([]builtCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		root, err := domain.BuildTree(candidate)
		if err != nil {
			logger.Warn("Candidate rejected, malformed page: %v", err)
			stats.RejectedError++
			continue
		}
		built = append(built, builtCandidate{page: candidate, root: root})
	}
	if len(built) == 0 {
		stats.Elapsed = time.Since(started)
		return stats, nil, nil
	}

	// One embedder round-trip covers the union of every candidate's
	// new fragments. The batch runs on an uncancellable context: a
	// cancel signal stops the loop between iterations, and an in-flight
	// batch completes so its vectors land in the cache.
	roots := make([]*domain.FragmentNode, len(built))
	for i := range built {
		roots[i] = built[i].root
	}
	inputs, rstats, err := s.score.resolver.ResolveBatch(context.WithoutCancel(ctx), roots, target)
	if err != nil {
		// An embedder outage costs this iteration's candidates, not the
		// run. The misses were never cached, so the next iteration that
		// needs those hashes retries the embed.
		if errors.Is(err, domain.ErrEmbeddingUnavailable) || errors.Is(err, domain.ErrRateLimited) {
			logger.Warn("Iteration %d: embedder unavailable, rejecting %d candidates: %v",
				iteration, len(built), err)
			stats.RejectedError += len(built)
			stats.Elapsed = time.Since(started)
			return stats, nil, nil
		}
		return stats, nil, err
	}
	stats.CacheHits = rstats.hits
	stats.CacheMisses = rstats.misses
	stats.EmbeddedTexts = rstats.misses

	// Score candidates in parallel. Each candidate is diffed against
	// the baseline; only the dimensions its change set invalidates are
	// recomputed, the rest copy from the baseline snapshot. Slots are
	// per-index, so no result locking; evaluation failures stay in
	// their slot instead of aborting the group.
	baseline := best.Scores()
	table := s.score.registry.Table()
	results := make([]candidateResult, len(built))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(settings.Workers, len(built)))
	for i := range built {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			cs := domain.Diff(best.Root(), built[i].root)
			recompute := make(map[domain.DimensionTag]struct{})
			for _, tag := range table.Affected(cs) {
				recompute[tag] = struct{}{}
			}
			snapshot, err := s.score.scoreResolved(gctx, built[i].root, target, inputs[i], recompute, baseline)
			results[i] = candidateResult{page: built[i].page, snapshot: snapshot, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, nil, err
	}

	// Count every candidate that clears the epsilon threshold; promote
	// the best of them.
	var promoted *candidateResult
	for i := range results {
		result := &results[i]
		if result.err != nil {
			logger.Warn("Candidate %d failed: %v", i+1, result.err)
			stats.RejectedError++
			continue
		}
		improvement := result.snapshot.Composite() - best.Composite()
		if improvement < settings.Epsilon {
			stats.RejectedScore++
			continue
		}
		stats.Accepted++
		if promoted == nil || result.snapshot.Composite() > promoted.snapshot.Composite() {
			promoted = result
		}
	}

	if promoted != nil {
		stats.AcceptedDelta = promoted.snapshot.Composite() - best.Composite()
		stats.BestComposite = promoted.snapshot.Composite()
		logger.Debug("Iteration %d: promoted candidate %s (+%.4f)",
			iteration, promoted.snapshot.RootHash().Short(), stats.AcceptedDelta)
	}
	stats.Elapsed = time.Since(started)
	return stats, promoted, nil
}

// effectiveSettings applies per-run overrides to the configured loop
// settings. Zero values keep the configured value.
func (s *OptimizeService) effectiveSettings(opts driving.OptimizeOptions) domain.OptimizeSettings {
	settings := s.settings
	if opts.MaxIterations > 0 {
		settings.MaxIterations = opts.MaxIterations
	}
	if opts.TargetScore > 0 {
		settings.TargetScore = opts.TargetScore
	}
	if opts.Epsilon > 0 {
		settings.Epsilon = opts.Epsilon
	}
	if opts.StallIterations > 0 {
		settings.StallIterations = opts.StallIterations
	}
	if opts.Candidates > 0 {
		settings.Candidates = opts.Candidates
	}
	if opts.Workers > 0 {
		settings.Workers = opts.Workers
	}
	return settings
}

func (s *OptimizeService) updateStatus(fn func(*domain.RunStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
}
