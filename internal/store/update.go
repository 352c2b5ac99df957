package store

import (
	"context"
	"database/sql"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
)

// SetMediaWatched implements the Media-level half of the watched cascade
// (SPEC_FULL.md §4.7): setting a Media watched also sets all its seasons and
// their episodes, and turning it on clears watch_list.
func (s *Store) SetMediaWatched(ctx context.Context, mediaID string, watched bool) error {
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		return cascadeMediaWatched(ctx, tx, mediaID, watched)
	})
}

func cascadeMediaWatched(ctx context.Context, tx *sql.Tx, mediaID string, watched bool) error {
	watchList := 0
	if !watched {
		// leave watch_list untouched when clearing watched
		if _, err := tx.ExecContext(ctx, `UPDATE medias SET watched = ? WHERE id = ?`, boolInt(watched), mediaID); err != nil {
			return ierr.Wrap(ierr.KindStore, "set media watched", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `UPDATE medias SET watched = 1, watch_list = ? WHERE id = ?`, watchList, mediaID); err != nil {
			return ierr.Wrap(ierr.KindStore, "set media watched", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE seasons SET watched = ? WHERE media_id = ?`, boolInt(watched), mediaID); err != nil {
		return ierr.Wrap(ierr.KindStore, "cascade season watched", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE episodes SET watched = ?
		WHERE season_id IN (SELECT id FROM seasons WHERE media_id = ?)`,
		boolInt(watched), mediaID); err != nil {
		return ierr.Wrap(ierr.KindStore, "cascade episode watched", err)
	}
	return nil
}

// SetSeasonWatched sets a Season and its Episodes watched, then recomputes
// the parent Media's watched flag as "all seasons watched".
func (s *Store) SetSeasonWatched(ctx context.Context, seasonID string, watched bool) error {
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		var mediaID string
		if err := tx.QueryRowContext(ctx, `SELECT media_id FROM seasons WHERE id = ?`, seasonID).Scan(&mediaID); err != nil {
			return ierr.Wrap(ierr.KindStore, "locate season", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE seasons SET watched = ? WHERE id = ?`, boolInt(watched), seasonID); err != nil {
			return ierr.Wrap(ierr.KindStore, "set season watched", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE episodes SET watched = ? WHERE season_id = ?`, boolInt(watched), seasonID); err != nil {
			return ierr.Wrap(ierr.KindStore, "cascade episode watched", err)
		}
		return recomputeMediaWatchedFromSeasons(ctx, tx, mediaID)
	})
}

// SetEpisodeWatched sets an Episode watched, then recomputes its Season and
// Media in turn.
func (s *Store) SetEpisodeWatched(ctx context.Context, episodeID string, watched bool) error {
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		var seasonID string
		if err := tx.QueryRowContext(ctx, `SELECT season_id FROM episodes WHERE id = ?`, episodeID).Scan(&seasonID); err != nil {
			return ierr.Wrap(ierr.KindStore, "locate episode", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE episodes SET watched = ? WHERE id = ?`, boolInt(watched), episodeID); err != nil {
			return ierr.Wrap(ierr.KindStore, "set episode watched", err)
		}

		var allWatched bool
		if err := tx.QueryRowContext(ctx,
			`SELECT NOT EXISTS(SELECT 1 FROM episodes WHERE season_id = ? AND watched = 0)`, seasonID).Scan(&allWatched); err != nil {
			return ierr.Wrap(ierr.KindStore, "recompute season watched", err)
		}
		var mediaID string
		if err := tx.QueryRowContext(ctx, `SELECT media_id FROM seasons WHERE id = ?`, seasonID).Scan(&mediaID); err != nil {
			return ierr.Wrap(ierr.KindStore, "locate season media", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE seasons SET watched = ? WHERE id = ?`, boolInt(allWatched), seasonID); err != nil {
			return ierr.Wrap(ierr.KindStore, "update season watched", err)
		}
		return recomputeMediaWatchedFromSeasons(ctx, tx, mediaID)
	})
}

func recomputeMediaWatchedFromSeasons(ctx context.Context, tx *sql.Tx, mediaID string) error {
	var allWatched bool
	if err := tx.QueryRowContext(ctx,
		`SELECT NOT EXISTS(SELECT 1 FROM seasons WHERE media_id = ? AND watched = 0)`, mediaID).Scan(&allWatched); err != nil {
		return ierr.Wrap(ierr.KindStore, "recompute media watched", err)
	}
	if allWatched {
		if _, err := tx.ExecContext(ctx, `UPDATE medias SET watched = 1, watch_list = 0 WHERE id = ?`, mediaID); err != nil {
			return ierr.Wrap(ierr.KindStore, "update media watched", err)
		}
		return nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE medias SET watched = 0 WHERE id = ?`, mediaID); err != nil {
		return ierr.Wrap(ierr.KindStore, "update media watched", err)
	}
	return nil
}

// UpdateRanking is a straight update of a Media's my_ranking field.
func (s *Store) UpdateRanking(ctx context.Context, mediaID string, rank uint8) error {
	_, err := s.db.ExecContext(ctx, `UPDATE medias SET my_ranking = ? WHERE id = ?`, rank, mediaID)
	return wrapStoreErr("update ranking", err)
}

// UpdateWatchList is a straight update of a Media's watch_list flag.
func (s *Store) UpdateWatchList(ctx context.Context, mediaID string, onList bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE medias SET watch_list = ? WHERE id = ?`, boolInt(onList), mediaID)
	return wrapStoreErr("update watch list", err)
}

// SetRemoteTitle implements reassignment (SPEC_FULL.md §4.7): if another
// Media already references newID, this Media's seasons, files, and tag
// associations are re-parented onto it and this Media is deleted; the
// surviving Media's id is returned. Otherwise this Media's remote_title_id
// is updated in place and its own id is returned.
func (s *Store) SetRemoteTitle(ctx context.Context, mediaID, newID string) (string, error) {
	var resultID string
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		var otherID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM medias WHERE remote_title_id = ? AND id != ?`, newID, mediaID).Scan(&otherID)
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx, `UPDATE seasons SET media_id = ? WHERE media_id = ?`, otherID, mediaID); err != nil {
				return ierr.Wrap(ierr.KindStore, "reparent seasons", err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE files SET media_id = ? WHERE media_id = ?`, otherID, mediaID); err != nil {
				return ierr.Wrap(ierr.KindStore, "reparent files", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO media_tags (media_id, tag_id)
				 SELECT ?, tag_id FROM media_tags WHERE media_id = ?
				 ON CONFLICT DO NOTHING`, otherID, mediaID); err != nil {
				return ierr.Wrap(ierr.KindStore, "reparent tags", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM medias WHERE id = ?`, mediaID); err != nil {
				return ierr.Wrap(ierr.KindStore, "delete superseded media", err)
			}
			resultID = otherID
			return nil
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx, `UPDATE medias SET remote_title_id = ? WHERE id = ?`, newID, mediaID); err != nil {
				return ierr.Wrap(ierr.KindStore, "set remote title", err)
			}
			resultID = mediaID
			return nil
		default:
			return ierr.Wrap(ierr.KindStore, "locate conflicting media", err)
		}
	})
	if err != nil {
		return "", err
	}
	return resultID, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
