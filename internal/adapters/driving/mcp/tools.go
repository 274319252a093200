package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
)

// ScorePageInput is the input schema for the score_page tool.
type ScorePageInput struct {
	Content string `json:"content" jsonschema:"the page text to score"`
	Format  string `json:"format,omitempty" jsonschema:"input format: markdown, plain, or json (default markdown)"`
	Keyword string `json:"keyword" jsonschema:"the target keyword to score against"`
	Intent  string `json:"intent,omitempty" jsonschema:"optional search intent phrase refining the keyword"`
}

// ScorePageOutput is the output schema for the score_page tool.
type ScorePageOutput struct {
	RootHash  string             `json:"root_hash"`
	Composite float64            `json:"composite"`
	Scores    map[string]float64 `json:"scores"`
}

// OptimizePageInput is the input schema for the optimize_page tool.
type OptimizePageInput struct {
	Content       string  `json:"content" jsonschema:"the page text to optimize"`
	Format        string  `json:"format,omitempty" jsonschema:"input format: markdown, plain, or json (default markdown)"`
	Keyword       string  `json:"keyword" jsonschema:"the target keyword to optimize for"`
	Intent        string  `json:"intent,omitempty" jsonschema:"optional search intent phrase refining the keyword"`
	MaxIterations int     `json:"max_iterations,omitempty" jsonschema:"cap on optimization iterations (default from settings)"`
	TargetScore   float64 `json:"target_score,omitempty" jsonschema:"stop early once the composite reaches this score"`
}

// OptimizePageOutput is the output schema for the optimize_page tool.
type OptimizePageOutput struct {
	Content        string             `json:"content"`
	StartComposite float64            `json:"start_composite"`
	FinalComposite float64            `json:"final_composite"`
	Improvement    float64            `json:"improvement"`
	Iterations     int                `json:"iterations"`
	Accepted       int                `json:"accepted"`
	Reason         string             `json:"reason"`
	Scores         map[string]float64 `json:"scores"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "score_page",
		Description: "Score a page against a target keyword across all quality dimensions",
	}, s.handleScorePage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "optimize_page",
		Description: "Iteratively edit a page to raise its composite score for a target keyword",
	}, s.handleOptimizePage)
}

// handleScorePage handles the score_page tool invocation.
func (s *Server) handleScorePage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScorePageInput,
) (*mcp.CallToolResult, ScorePageOutput, error) {
	page, target, err := s.parsePage(ctx, input.Content, input.Format, input.Keyword, input.Intent)
	if err != nil {
		return nil, ScorePageOutput{}, err
	}

	snapshot, err := s.ports.Score.Score(ctx, page, target)
	if err != nil {
		return nil, ScorePageOutput{}, err
	}

	return nil, ScorePageOutput{
		RootHash:  snapshot.RootHash().String(),
		Composite: snapshot.Composite(),
		Scores:    tagScores(snapshot.Scores()),
	}, nil
}

// handleOptimizePage handles the optimize_page tool invocation.
func (s *Server) handleOptimizePage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OptimizePageInput,
) (*mcp.CallToolResult, OptimizePageOutput, error) {
	if s.ports.Optimize == nil {
		return nil, OptimizePageOutput{}, errors.New("mcp: optimize service not configured")
	}

	page, target, err := s.parsePage(ctx, input.Content, input.Format, input.Keyword, input.Intent)
	if err != nil {
		return nil, OptimizePageOutput{}, err
	}

	opts := driving.OptimizeOptions{
		MaxIterations: input.MaxIterations,
		TargetScore:   input.TargetScore,
	}

	report, err := s.ports.Optimize.Run(ctx, page, target, opts)
	if err != nil {
		return nil, OptimizePageOutput{}, err
	}

	// The optimized page goes back in the format it arrived in.
	format, err := resolveToolFormat(input.Format)
	if err != nil {
		return nil, OptimizePageOutput{}, err
	}
	rendered, err := s.ports.Segmenter.Render(report.BestPage, format)
	if err != nil {
		return nil, OptimizePageOutput{}, fmt.Errorf("rendering optimized page: %w", err)
	}

	return nil, OptimizePageOutput{
		Content:        string(rendered),
		StartComposite: report.StartComposite,
		FinalComposite: report.FinalComposite,
		Improvement:    report.Improvement(),
		Iterations:     len(report.Iterations),
		Accepted:       report.AcceptedTotal(),
		Reason:         report.Reason.String(),
		Scores:         tagScores(report.FinalScores),
	}, nil
}

// parsePage validates the target and segments raw tool input.
func (s *Server) parsePage(
	ctx context.Context,
	content, format, keyword, intent string,
) (domain.StructuredPage, domain.Target, error) {
	target := domain.Target{Keyword: keyword, Intent: intent}
	if err := target.Validate(); err != nil {
		return domain.StructuredPage{}, domain.Target{}, err
	}

	pageFormat, err := resolveToolFormat(format)
	if err != nil {
		return domain.StructuredPage{}, domain.Target{}, err
	}

	page, err := s.ports.Segmenter.Segment(ctx, []byte(content), pageFormat)
	if err != nil {
		return domain.StructuredPage{}, domain.Target{}, fmt.Errorf("segmenting page: %w", err)
	}

	return page, target, nil
}

// resolveToolFormat maps the optional format field to a page format.
// Markdown is the default; MCP clients mostly hold markdown.
func resolveToolFormat(format string) (driven.PageFormat, error) {
	switch format {
	case "", "markdown", "md":
		return driven.FormatMarkdown, nil
	case "plain", "text":
		return driven.FormatPlain, nil
	case "json":
		return driven.FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want markdown, plain, or json)", format)
	}
}

// tagScores converts dimension scores to the string-keyed map tools emit.
func tagScores(scores domain.DimensionScores) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for tag, value := range scores {
		out[tag.String()] = value
	}
	return out
}
