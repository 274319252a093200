package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

func TestExtractDimensionTag(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid dimension URI",
			uri:      "skora://dimensions/keyword_alignment",
			expected: "keyword_alignment",
		},
		{
			name:     "invalid prefix",
			uri:      "file://dimensions/keyword_alignment",
			expected: "",
		},
		{
			name:     "missing tag",
			uri:      "skora://dimensions/",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDimensionTag(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// scoreServiceWithTable returns a mock score service carrying a small
// dependency table.
func scoreServiceWithTable() *mockScoreService {
	return &mockScoreService{
		tags: []domain.DimensionTag{"keyword_alignment", "thematic_unity"},
		rows: map[string][]domain.DimensionTag{
			"micro/body": {"keyword_alignment"},
			"macro/any":  {"keyword_alignment", "thematic_unity"},
			"mega/any":   {"thematic_unity"},
		},
	}
}

func TestServer_handleCacheResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil cache returns empty object", func(t *testing.T) {
		ports := &Ports{Score: &mockScoreService{}, Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("skora://cache")
		result, err := server.handleCacheResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "{}", result.Contents[0].Text)
	})

	t.Run("returns stats successfully", func(t *testing.T) {
		mockCache := &mockScoreCache{
			stats: domain.CacheStats{
				Embeddings: 120,
				Dimensions: 36,
				Hits:       90,
				Misses:     30,
			},
		}

		ports := &Ports{Score: &mockScoreService{}, Segmenter: &mockSegmenter{}, Cache: mockCache}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("skora://cache")
		result, err := server.handleCacheResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"embeddings": 120`)
		assert.Contains(t, result.Contents[0].Text, `"dimensions": 36`)
		assert.Contains(t, result.Contents[0].Text, `"hit_rate": 0.75`)
	})

	t.Run("returns error on stats failure", func(t *testing.T) {
		mockCache := &mockScoreCache{
			err: errors.New("database error"),
		}

		ports := &Ports{Score: &mockScoreService{}, Segmenter: &mockSegmenter{}, Cache: mockCache}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("skora://cache")
		_, err = server.handleCacheResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading cache stats")
	})
}

func TestServer_handleDimensionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns dimensions with read scopes", func(t *testing.T) {
		ports := &Ports{Score: scoreServiceWithTable(), Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("skora://dimensions")
		result, err := server.handleDimensionsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "keyword_alignment")
		assert.Contains(t, result.Contents[0].Text, "thematic_unity")
		assert.Contains(t, result.Contents[0].Text, "micro/body")
		assert.Contains(t, result.Contents[0].Text, "mega/any")
	})

	t.Run("handles empty registry", func(t *testing.T) {
		ports := &Ports{Score: &mockScoreService{}, Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("skora://dimensions")
		result, err := server.handleDimensionsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleDimensionDetailResource(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid URI returns not found", func(t *testing.T) {
		ports := &Ports{Score: scoreServiceWithTable(), Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("skora://invalid/uri")
		_, err = server.handleDimensionDetailResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("unknown tag returns not found", func(t *testing.T) {
		ports := &Ports{Score: scoreServiceWithTable(), Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("skora://dimensions/nonexistent")
		_, err = server.handleDimensionDetailResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns detail with default weight", func(t *testing.T) {
		ports := &Ports{Score: scoreServiceWithTable(), Segmenter: &mockSegmenter{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("skora://dimensions/keyword_alignment")
		result, err := server.handleDimensionDetailResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"tag": "keyword_alignment"`)
		assert.Contains(t, result.Contents[0].Text, "micro/body")
		assert.Contains(t, result.Contents[0].Text, `"weight": 1`)
	})

	t.Run("reads weight from settings", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Weights = map[domain.DimensionTag]float64{"thematic_unity": 2.5}
		mockSettings := &mockSettingsService{settings: &settings}

		ports := &Ports{
			Score:     scoreServiceWithTable(),
			Segmenter: &mockSegmenter{},
			Settings:  mockSettings,
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("skora://dimensions/thematic_unity")
		result, err := server.handleDimensionDetailResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"weight": 2.5`)
	})
}
