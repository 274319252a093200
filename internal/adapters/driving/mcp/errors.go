// Package mcp provides an MCP (Model Context Protocol) server adapter for Skora.
// It enables AI assistants like Claude to score and optimize pages without
// leaving the conversation.
package mcp

import "errors"

// ErrMissingScoreService is returned when the score service is not provided.
var ErrMissingScoreService = errors.New("mcp: score service is required")

// ErrMissingSegmenter is returned when the segmenter is not provided.
var ErrMissingSegmenter = errors.New("mcp: segmenter is required")
