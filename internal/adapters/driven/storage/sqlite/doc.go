// Package sqlite provides a SQLite-backed implementation of the lifecycle
// store port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.docflow/data/docflow.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode, and the conditional-update contract of the
// lifecycle port is satisfied by single conditional UPDATE statements.
package sqlite
