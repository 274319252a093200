package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/skora-cli/internal/adapters/driven/cache/sqlite/migrations"
	"github.com/custodia-labs/skora-cli/internal/core/domain"
	"github.com/custodia-labs/skora-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ScoreCache = (*Store)(nil)

// Config holds configuration for the SQLite score cache.
type Config struct {
	// Path is the database file path. Empty defaults to
	// ~/.skora/data/cache.db.
	Path string

	// Model namespaces entries. Vectors and scores computed with one
	// embedding model are never served to another.
	Model string

	// MaxEntries bounds the embedding entry count; least recently used
	// entries are evicted past it. 0 means unbounded.
	MaxEntries int
}

// Store is a SQLite-backed content-addressed score cache. Entries are
// keyed by content hash and survive across runs: re-scoring an unchanged
// document hits the same rows.
type Store struct {
	db         *sql.DB
	path       string
	model      string
	maxEntries int

	mu        sync.Mutex
	hits      int64
	misses    int64
	evictions int64
	closed    bool
}

// NewStore opens (or creates) the cache database at cfg.Path.
func NewStore(cfg Config) (*Store, error) {
	path := cfg.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".skora", "data", "cache.db")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:         db,
		path:       path,
		model:      cfg.Model,
		maxEntries: cfg.MaxEntries,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// GetEmbedding returns the embedding stored for a node hash.
func (s *Store) GetEmbedding(ctx context.Context, hash domain.Hash) ([]float32, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT vector FROM embeddings WHERE model = ? AND hash = ?
	`, s.model, string(hash)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		s.count(&s.misses)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying embedding: %w", err)
	}

	// Touch for LRU ordering.
	if _, err := s.db.ExecContext(ctx, `
		UPDATE embeddings SET last_access = ? WHERE model = ? AND hash = ?
	`, time.Now().UnixNano(), s.model, string(hash)); err != nil {
		return nil, fmt.Errorf("touching embedding: %w", err)
	}

	s.count(&s.hits)
	return bytesToFloat32Slice(blob), nil
}

// PutEmbedding stores an embedding under a node hash. A hash's vector
// never changes, so a second put for the same hash is a no-op.
func (s *Store) PutEmbedding(ctx context.Context, hash domain.Hash, vector []float32) error {
	if err := s.ready(); err != nil {
		return err
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding vector", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (model, hash, vector, last_access)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(model, hash) DO NOTHING
	`, s.model, string(hash), float32SliceToBytes(vector), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}

	return s.prune(ctx)
}

// GetDimension returns a dimension value stored under a score key and tag.
func (s *Store) GetDimension(ctx context.Context, key domain.Hash, tag domain.DimensionTag) (float64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	var value float64
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM dimensions WHERE model = ? AND score_key = ? AND tag = ?
	`, s.model, string(key), string(tag)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		s.count(&s.misses)
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("querying dimension: %w", err)
	}

	s.count(&s.hits)
	return value, nil
}

// PutDimension stores a dimension value. Write-once, like embeddings.
func (s *Store) PutDimension(ctx context.Context, key domain.Hash, tag domain.DimensionTag, value float64) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dimensions (model, score_key, tag, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(model, score_key, tag) DO NOTHING
	`, s.model, string(key), string(tag), value)
	if err != nil {
		return fmt.Errorf("saving dimension: %w", err)
	}
	return nil
}

// Stats reports entry counts across all models plus this session's
// hit/miss/eviction counters.
func (s *Store) Stats(ctx context.Context) (domain.CacheStats, error) {
	if err := s.ready(); err != nil {
		return domain.CacheStats{}, err
	}

	var stats domain.CacheStats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&stats.Embeddings); err != nil {
		return domain.CacheStats{}, fmt.Errorf("counting embeddings: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dimensions").Scan(&stats.Dimensions); err != nil {
		return domain.CacheStats{}, fmt.Errorf("counting dimensions: %w", err)
	}

	s.mu.Lock()
	stats.Hits = s.hits
	stats.Misses = s.misses
	stats.Evictions = s.evictions
	s.mu.Unlock()

	return stats, nil
}

// Clear removes every entry, all models included.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM dimensions"); err != nil {
		return fmt.Errorf("clearing dimensions: %w", err)
	}
	return nil
}

// Close closes the database connection. Closing twice is a no-op;
// other methods fail with domain.ErrCacheClosed afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.db.Close()
}

// ready reports ErrCacheClosed once the store is closed.
func (s *Store) ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrCacheClosed
	}
	return nil
}

// count increments a session counter.
func (s *Store) count(c *int64) {
	s.mu.Lock()
	*c++
	s.mu.Unlock()
}

// prune evicts least recently used embeddings past the entry bound.
// Eviction ignores model boundaries: entries for an abandoned model age
// out first since nothing touches them.
func (s *Store) prune(ctx context.Context) error {
	if s.maxEntries <= 0 {
		return nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count); err != nil {
		return fmt.Errorf("counting embeddings: %w", err)
	}
	if count <= s.maxEntries {
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM embeddings WHERE rowid IN (
			SELECT rowid FROM embeddings ORDER BY last_access ASC, rowid ASC LIMIT ?
		)
	`, count-s.maxEntries)
	if err != nil {
		return fmt.Errorf("evicting embeddings: %w", err)
	}

	if evicted, err := res.RowsAffected(); err == nil {
		s.mu.Lock()
		s.evictions += evicted
		s.mu.Unlock()
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
