package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for Skora resources.
	uriScheme = "skora://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for cache statistics.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cache",
		Name:        "cache-stats",
		Description: "Score cache entry counts and hit rates",
		MIMEType:    "application/json",
	}, s.handleCacheResource)

	// Static resource for the dimension table.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "dimensions",
		Name:        "dimensions",
		Description: "Registered scoring dimensions and the content scopes they read",
		MIMEType:    "application/json",
	}, s.handleDimensionsResource)

	// Template for a single dimension.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "dimensions/{tag}",
		Name:        "dimension-detail",
		Description: "Read scopes and composite weight of one scoring dimension",
		MIMEType:    "application/json",
	}, s.handleDimensionDetailResource)
}

// handleCacheResource returns score cache statistics.
func (s *Server) handleCacheResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Cache == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "{}",
			}},
		}, nil
	}

	stats, err := s.ports.Cache.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading cache stats: %w", err)
	}

	type cacheInfo struct {
		Embeddings int64   `json:"embeddings"`
		Dimensions int64   `json:"dimensions"`
		Hits       int64   `json:"hits"`
		Misses     int64   `json:"misses"`
		Evictions  int64   `json:"evictions"`
		HitRate    float64 `json:"hit_rate"`
	}

	data, err := json.MarshalIndent(cacheInfo{
		Embeddings: stats.Embeddings,
		Dimensions: stats.Dimensions,
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Evictions:  stats.Evictions,
		HitRate:    stats.HitRate(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling cache stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDimensionsResource returns every registered dimension with the
// content scopes it reads.
func (s *Server) handleDimensionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	rows := s.ports.Score.DependencyRows()
	tags := s.ports.Score.Dimensions()

	type dimensionInfo struct {
		Tag   string   `json:"tag"`
		Reads []string `json:"reads"`
	}

	infos := make([]dimensionInfo, len(tags))
	for i, tag := range tags {
		infos[i] = dimensionInfo{
			Tag:   tag.String(),
			Reads: scopesReading(rows, tag),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling dimensions: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDimensionDetailResource returns one dimension's read scopes and
// composite weight.
func (s *Server) handleDimensionDetailResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract tag from URI: skora://dimensions/{tag}
	tag := extractDimensionTag(req.Params.URI)
	if tag == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	known := false
	for _, t := range s.ports.Score.Dimensions() {
		if t.String() == tag {
			known = true
			break
		}
	}
	if !known {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Unset weights count as 1 in the composite.
	weight := 1.0
	if s.ports.Settings != nil {
		if settings, err := s.ports.Settings.Get(); err == nil {
			if w, ok := settings.Weights[domain.DimensionTag(tag)]; ok {
				weight = w
			}
		}
	}

	type dimensionDetail struct {
		Tag    string   `json:"tag"`
		Reads  []string `json:"reads"`
		Weight float64  `json:"weight"`
	}

	detail := dimensionDetail{
		Tag:    tag,
		Reads:  scopesReading(s.ports.Score.DependencyRows(), domain.DimensionTag(tag)),
		Weight: weight,
	}

	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling dimension: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// scopesReading returns the sorted scopes whose change invalidates a tag.
func scopesReading(rows map[string][]domain.DimensionTag, tag domain.DimensionTag) []string {
	scopes := make([]string, 0, len(rows))
	for scope, tags := range rows {
		for _, t := range tags {
			if t == tag {
				scopes = append(scopes, scope)
				break
			}
		}
	}
	sort.Strings(scopes)
	return scopes
}

// extractDimensionTag extracts the tag from a URI like skora://dimensions/{tag}.
func extractDimensionTag(uri string) string {
	const prefix = uriScheme + "dimensions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
