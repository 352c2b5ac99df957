package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
)

// AllFilePaths returns every known file path, for the Reconciler's
// existence-probe pass.
func (s *Store) AllFilePaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM files`)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "load file paths", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, ierr.Wrap(ierr.KindStore, "scan file path", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DeleteFilesByPath removes the file rows for the given paths in a single
// transaction.
func (s *Store) DeleteFilesByPath(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(paths)), ",")
		args := make([]any, len(paths))
		for i, p := range paths {
			args[i] = p
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path IN ("+placeholders+")", args...); err != nil {
			return ierr.Wrap(ierr.KindStore, "delete absent files", err)
		}
		return nil
	})
}

// CleanupEmptyParents runs the optional four-pass cleanup from
// SPEC_FULL.md §4.5: episodes with no files, then seasons with no
// episodes, then media with no files and no seasons, then remote titles
// with no referencing media, each a separate statement inside one
// transaction.
func (s *Store) CleanupEmptyParents(ctx context.Context) error {
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		passes := []string{
			`DELETE FROM episodes WHERE id NOT IN (SELECT DISTINCT episode_id FROM files WHERE episode_id IS NOT NULL)`,
			`DELETE FROM seasons WHERE id NOT IN (SELECT DISTINCT season_id FROM episodes)`,
			`DELETE FROM medias WHERE
				id NOT IN (SELECT DISTINCT media_id FROM files WHERE media_id IS NOT NULL)
				AND id NOT IN (SELECT DISTINCT media_id FROM seasons)`,
			`DELETE FROM remote_titles WHERE id NOT IN (SELECT DISTINCT remote_title_id FROM medias WHERE remote_title_id IS NOT NULL)`,
		}
		for _, stmt := range passes {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return ierr.Wrap(ierr.KindStore, "cleanup pass", err)
			}
		}
		return nil
	})
}
