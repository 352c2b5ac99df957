// Package store implements the Store (SPEC_FULL.md §4.7): durable relational
// persistence and query over a single-file embedded database.
//
// Grounded on the host application's internal/db package for the
// embedded-migration-at-open runner shape (glob migration files, track
// applied versions in a schema_migrations table, execute the rest), adapted
// from its Postgres/lib-pq backing to modernc.org/sqlite, and on
// internal/repository for the per-entity CRUD and filter-query idioms.
package store

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"sort"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store wraps the database handle. writeMu serializes all write
// transactions through the pool, matching SPEC_FULL.md §5: "all writes
// serialized through a single pooled connection per transaction; no
// cross-connection write interleaving."
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// Open opens (creating if absent) the embedded database file at path,
// applies the required pragmas, runs pending migrations, and returns a ready
// Store. Pool size follows SPEC_FULL.md §4.7's "bounded size (e.g., 8)".
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "open database", err)
	}
	db.SetMaxOpenConns(8)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, ierr.Wrap(ierr.KindStore, "apply pragma "+p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for callers that need to read tables
// store.Store itself doesn't wrap, such as config's settings overlay.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return ierr.Wrap(ierr.KindStore, "create schema_migrations", err)
	}

	entries, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return ierr.Wrap(ierr.KindStore, "glob migrations", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)`, name).Scan(&exists)
		if err != nil {
			return ierr.Wrap(ierr.KindStore, "check migration "+name, err)
		}
		if exists {
			continue
		}
		sqlBytes, err := migrationFS.ReadFile(name)
		if err != nil {
			return ierr.Wrap(ierr.KindStore, "read migration "+name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return ierr.Wrap(ierr.KindStore, "apply migration "+name, err)
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO schema_migrations (version) VALUES (?)`, name); err != nil {
			return ierr.Wrap(ierr.KindStore, "record migration "+name, err)
		}
	}
	return nil
}

// withWriteTx runs fn inside a transaction with the write lock held, and
// commits iff fn returns nil. Any error rolls the transaction back.
func (s *Store) withWriteTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ierr.Wrap(ierr.KindStore, "begin transaction", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return ierr.Wrap(ierr.KindStore, "commit transaction", err)
	}
	return nil
}

func wrapStoreErr(action string, err error) error {
	if err == nil {
		return nil
	}
	return ierr.Wrap(ierr.KindStore, action, err)
}
