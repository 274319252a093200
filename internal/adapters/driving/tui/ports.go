// Package tui provides the live optimization dashboard for skora.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Optimize runs the accept/reject loop the dashboard observes.
	Optimize driving.OptimizeService

	// Score provides the baseline evaluation and the dimension order.
	Score driving.ScoreService

	// Settings resolves effective loop settings for display.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(optimize driving.OptimizeService, score driving.ScoreService) *Ports {
	return &Ports{
		Optimize: optimize,
		Score:    score,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Optimize == nil {
		return ErrMissingOptimizeService
	}
	// Score and Settings are optional; the dashboard degrades without them.
	return nil
}
