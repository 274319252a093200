package mcp

import (
	"context"

	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driving"
)

// mockScoreService is a mock implementation of driving.ScoreService.
type mockScoreService struct {
	snapshot *domain.Snapshot
	changes  domain.ChangeSet
	tags     []domain.DimensionTag
	rows     map[string][]domain.DimensionTag
	err      error
}

func (m *mockScoreService) Score(
	_ context.Context,
	_ domain.StructuredPage,
	_ domain.Target,
) (*domain.Snapshot, error) {
	return m.snapshot, m.err
}

func (m *mockScoreService) Rescore(
	_ context.Context,
	_ *domain.Snapshot,
	_ domain.StructuredPage,
) (*domain.Snapshot, domain.ChangeSet, error) {
	return m.snapshot, m.changes, m.err
}

func (m *mockScoreService) Dimensions() []domain.DimensionTag {
	return m.tags
}

func (m *mockScoreService) DependencyRows() map[string][]domain.DimensionTag {
	return m.rows
}

// mockOptimizeService is a mock implementation of driving.OptimizeService.
type mockOptimizeService struct {
	report *domain.OptimizeReport
	status domain.RunStatus
	err    error
}

func (m *mockOptimizeService) Run(
	_ context.Context,
	_ domain.StructuredPage,
	_ domain.Target,
	_ driving.OptimizeOptions,
) (*domain.OptimizeReport, error) {
	return m.report, m.err
}

func (m *mockOptimizeService) Status() domain.RunStatus {
	return m.status
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	defaults domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error {
	return m.err
}

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.EmbeddingProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetCacheBackend(_ domain.CacheBackend) error {
	return m.err
}

func (m *mockSettingsService) SetWeight(_ domain.DimensionTag, _ float64) error {
	return m.err
}

func (m *mockSettingsService) Validate() error {
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return m.defaults
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.err
}

// mockScoreCache is a mock implementation of driven.ScoreCache.
type mockScoreCache struct {
	vector []float32
	value  float64
	stats  domain.CacheStats
	err    error
}

func (m *mockScoreCache) GetEmbedding(_ context.Context, _ domain.Hash) ([]float32, error) {
	return m.vector, m.err
}

func (m *mockScoreCache) PutEmbedding(_ context.Context, _ domain.Hash, _ []float32) error {
	return m.err
}

func (m *mockScoreCache) GetDimension(
	_ context.Context,
	_ domain.Hash,
	_ domain.DimensionTag,
) (float64, error) {
	return m.value, m.err
}

func (m *mockScoreCache) PutDimension(
	_ context.Context,
	_ domain.Hash,
	_ domain.DimensionTag,
	_ float64,
) error {
	return m.err
}

func (m *mockScoreCache) Stats(_ context.Context) (domain.CacheStats, error) {
	return m.stats, m.err
}

func (m *mockScoreCache) Clear(_ context.Context) error {
	return m.err
}

func (m *mockScoreCache) Close() error {
	return m.err
}

// mockSegmenter is a mock implementation of driven.Segmenter.
type mockSegmenter struct {
	page      domain.StructuredPage
	rendered  []byte
	err       error
	renderErr error
}

func (m *mockSegmenter) Segment(
	_ context.Context,
	_ []byte,
	_ driven.PageFormat,
) (domain.StructuredPage, error) {
	return m.page, m.err
}

func (m *mockSegmenter) Render(_ domain.StructuredPage, _ driven.PageFormat) ([]byte, error) {
	return m.rendered, m.renderErr
}
