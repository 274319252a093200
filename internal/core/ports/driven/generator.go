package driven

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

// CandidateGenerator proposes edited variants of a page for the
// optimization loop to evaluate. How edits are produced is entirely the
// generator's business; the loop only scores and accepts or rejects.
//
// Generators must not mutate the input page. Proposing fewer candidates
// than asked for, or none at all, is allowed; the iteration simply
// evaluates what it gets.
type CandidateGenerator interface {
	// Propose returns up to n edited copies of the page.
	Propose(ctx context.Context, page domain.StructuredPage, target domain.Target, n int) ([]domain.StructuredPage, error)
}
