package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
	"github.com/JustinTDCT/cinevaultindex/internal/jobs"
)

// Library is a configured scan root (SPEC_FULL.md §3).
type Library struct {
	ID         string
	Name       string
	Path       string
	Enabled    bool
	RunCleanup bool
}

// CreateLibrary inserts a new library root and returns its generated id.
func (s *Store) CreateLibrary(ctx context.Context, name, path string, runCleanup bool) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO libraries (id, name, path, enabled, run_cleanup) VALUES (?, ?, ?, 1, ?)`,
		id, name, path, boolInt(runCleanup))
	if err != nil {
		return "", ierr.Wrap(ierr.KindStore, "create library", err)
	}
	return id, nil
}

// ListLibraries returns every configured library, enabled or not.
func (s *Store) ListLibraries(ctx context.Context) ([]Library, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, path, enabled, run_cleanup FROM libraries ORDER BY name`)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "list libraries", err)
	}
	defer rows.Close()

	var out []Library
	for rows.Next() {
		var l Library
		var enabled, runCleanup int
		if err := rows.Scan(&l.ID, &l.Name, &l.Path, &enabled, &runCleanup); err != nil {
			return nil, ierr.Wrap(ierr.KindStore, "scan library", err)
		}
		l.Enabled = enabled != 0
		l.RunCleanup = runCleanup != 0
		out = append(out, l)
	}
	return out, rows.Err()
}

// EnabledLibraries satisfies jobs.LibraryLister, feeding the scheduler one
// entry per library that currently has scanning enabled.
func (s *Store) EnabledLibraries() ([]jobs.Library, error) {
	libs, err := s.ListLibraries(context.Background())
	if err != nil {
		return nil, err
	}
	var out []jobs.Library
	for _, l := range libs {
		if !l.Enabled {
			continue
		}
		out = append(out, jobs.Library{ID: l.ID, Path: l.Path})
	}
	return out, nil
}
