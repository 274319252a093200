package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

func TestServer_handleScorePage(t *testing.T) {
	ctx := context.Background()

	t.Run("returns scored snapshot", func(t *testing.T) {
		target := domain.Target{Keyword: "coffee brewing"}
		scores := domain.DimensionScores{
			"keyword_alignment": 0.9,
			"thematic_unity":    0.7,
		}
		mockScore := &mockScoreService{
			snapshot: domain.NewSnapshot(nil, target, scores, 0.8),
		}

		ports := &Ports{Score: mockScore, Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := ScorePageInput{Content: "# Coffee\n\nBrew it well.", Keyword: "coffee brewing"}
		_, output, err := server.handleScorePage(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 0.8, output.Composite)
		assert.Equal(t, domain.EmptyHash.String(), output.RootHash)
		assert.Equal(t, 0.9, output.Scores["keyword_alignment"])
		assert.Equal(t, 0.7, output.Scores["thematic_unity"])
	})

	t.Run("missing keyword returns error", func(t *testing.T) {
		ports := &Ports{Score: &mockScoreService{}, Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := ScorePageInput{Content: "some text"}
		_, _, err = server.handleScorePage(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "keyword")
	})

	t.Run("unknown format returns error", func(t *testing.T) {
		ports := &Ports{Score: &mockScoreService{}, Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := ScorePageInput{Content: "some text", Format: "xml", Keyword: "coffee"}
		_, _, err = server.handleScorePage(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})

	t.Run("returns error on segment failure", func(t *testing.T) {
		mockSeg := &mockSegmenter{err: errors.New("malformed structure")}
		ports := &Ports{Score: &mockScoreService{}, Segmenter: mockSeg}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := ScorePageInput{Content: "", Keyword: "coffee"}
		_, _, err = server.handleScorePage(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "segmenting page")
	})

	t.Run("returns error on score failure", func(t *testing.T) {
		mockScore := &mockScoreService{err: errors.New("embedder offline")}
		ports := &Ports{Score: mockScore, Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := ScorePageInput{Content: "some text", Keyword: "coffee"}
		_, _, err = server.handleScorePage(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedder offline")
	})
}

func TestServer_handleOptimizePage(t *testing.T) {
	ctx := context.Background()

	t.Run("nil optimize service returns error", func(t *testing.T) {
		ports := &Ports{Score: &mockScoreService{}, Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := OptimizePageInput{Content: "some text", Keyword: "coffee"}
		_, _, err = server.handleOptimizePage(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "optimize service not configured")
	})

	t.Run("returns optimization report", func(t *testing.T) {
		report := &domain.OptimizeReport{
			RunID:          "run-1",
			Target:         domain.Target{Keyword: "coffee brewing"},
			StartComposite: 0.5,
			FinalComposite: 0.8,
			FinalScores:    domain.DimensionScores{"keyword_alignment": 0.9},
			Iterations: []domain.IterationStats{
				{Iteration: 1, AcceptedDelta: 0.2},
				{Iteration: 2},
				{Iteration: 3, AcceptedDelta: 0.1},
			},
			Reason: domain.TerminationConverged,
		}
		mockOpt := &mockOptimizeService{report: report}
		mockSeg := &mockSegmenter{rendered: []byte("# Better Coffee\n\nBrew it well.\n")}

		ports := &Ports{Score: &mockScoreService{}, Segmenter: mockSeg, Optimize: mockOpt}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := OptimizePageInput{Content: "# Coffee\n", Keyword: "coffee brewing", MaxIterations: 5}
		_, output, err := server.handleOptimizePage(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "# Better Coffee\n\nBrew it well.\n", output.Content)
		assert.Equal(t, 0.5, output.StartComposite)
		assert.Equal(t, 0.8, output.FinalComposite)
		assert.InDelta(t, 0.3, output.Improvement, 1e-9)
		assert.Equal(t, 3, output.Iterations)
		assert.Equal(t, 2, output.Accepted)
		assert.Equal(t, "converged", output.Reason)
		assert.Equal(t, 0.9, output.Scores["keyword_alignment"])
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mockOpt := &mockOptimizeService{err: errors.New("run already in progress")}
		ports := &Ports{Score: &mockScoreService{}, Segmenter: &mockSegmenter{}, Optimize: mockOpt}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := OptimizePageInput{Content: "some text", Keyword: "coffee"}
		_, _, err = server.handleOptimizePage(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "run already in progress")
	})

	t.Run("returns error on render failure", func(t *testing.T) {
		mockOpt := &mockOptimizeService{report: &domain.OptimizeReport{}}
		mockSeg := &mockSegmenter{renderErr: errors.New("no sections")}
		ports := &Ports{Score: &mockScoreService{}, Segmenter: mockSeg, Optimize: mockOpt}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := OptimizePageInput{Content: "some text", Keyword: "coffee"}
		_, _, err = server.handleOptimizePage(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rendering optimized page")
	})
}

func TestResolveToolFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		expected string
		wantErr  bool
	}{
		{name: "empty defaults to markdown", format: "", expected: "markdown"},
		{name: "markdown", format: "markdown", expected: "markdown"},
		{name: "md alias", format: "md", expected: "markdown"},
		{name: "plain", format: "plain", expected: "plain"},
		{name: "text alias", format: "text", expected: "plain"},
		{name: "json", format: "json", expected: "json"},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := resolveToolFormat(tt.format)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(format))
		})
	}
}
