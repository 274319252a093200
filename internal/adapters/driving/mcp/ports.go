package mcp

import (
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Score evaluates pages against a target.
	Score driving.ScoreService

	// Segmenter parses raw tool input into structured pages.
	Segmenter driven.Segmenter

	// Optimize runs the optimization loop.
	Optimize driving.OptimizeService

	// Settings exposes the current configuration.
	Settings driving.SettingsService

	// Cache reports score cache statistics.
	Cache driven.ScoreCache
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Score == nil {
		return ErrMissingScoreService
	}
	if p.Segmenter == nil {
		return ErrMissingSegmenter
	}
	// Optimize, Settings, and Cache are optional; their handlers degrade.
	return nil
}
