package tui

import "errors"

// ErrMissingOptimizeService is returned when the optimize service is not provided.
var ErrMissingOptimizeService = errors.New("tui: optimize service is required")
