// Package sqlite provides a SQLite-backed implementation of the score cache.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Entries are content
// addressed: embedding rows are keyed by (model, node hash) and dimension
// rows by (model, score key, tag), so identical content shares rows across
// documents, candidates, and runs.
//
// Entries are write-once. A content hash's value never changes, so a
// conflicting insert is a no-op rather than an update.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
//
// # Data Location
//
// By default, the database is stored at ~/.skora/data/cache.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode; session counters are mutex-guarded.
package sqlite
