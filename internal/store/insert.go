package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

// InsertMedias implements the insertion contract from SPEC_FULL.md §4.7: one
// transaction for the whole batch, in which each Media in turn has its
// RemoteTitle upserted, its Media/Season/Episode rows located or created,
// and its files inserted one row each under the matching parent.
func (s *Store) InsertMedias(ctx context.Context, batch []*media.Media) error {
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		for _, m := range batch {
			if m.RemoteTitle != nil {
				if err := upsertRemoteTitle(ctx, tx, m.RemoteTitle); err != nil {
					return err
				}
				m.RemoteTitleID = m.RemoteTitle.ID
			}

			mediaID, err := locateOrCreateMedia(ctx, tx, m)
			if err != nil {
				return err
			}

			for _, season := range m.Seasons {
				seasonID, err := locateOrCreateSeason(ctx, tx, mediaID, season)
				if err != nil {
					return err
				}
				for _, ep := range season.Episodes {
					epID, err := locateOrCreateEpisode(ctx, tx, seasonID, ep)
					if err != nil {
						return err
					}
					for _, f := range ep.Files {
						if err := insertFile(ctx, tx, f, "", epID); err != nil {
							return err
						}
					}
				}
			}
			for _, f := range m.Files {
				if err := insertFile(ctx, tx, f, mediaID, ""); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func upsertRemoteTitle(ctx context.Context, tx *sql.Tx, rt *media.RemoteTitle) error {
	if rt.ID == "" {
		return ierr.New(ierr.KindStore, "remote title missing id")
	}
	var votes sql.NullInt64
	if rt.Votes != nil {
		votes = sql.NullInt64{Int64: int64(*rt.Votes), Valid: true}
	}
	var year sql.NullInt64
	if rt.Year != nil {
		year = sql.NullInt64{Int64: int64(*rt.Year), Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO remote_titles (id, title, year, released, plot, poster, rating, votes, kind)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		rt.ID, rt.Title, year, rt.Released, rt.Plot, rt.Poster, rt.Rating, votes, string(rt.Kind))
	if err != nil {
		return ierr.Wrap(ierr.KindStore, "upsert remote title", err)
	}

	for _, g := range rt.Genres {
		id, err := insertOrGetID(ctx, tx, "genres", g)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO remote_title_genres (remote_title_id, genre_id) VALUES (?, ?)
			 ON CONFLICT DO NOTHING`, rt.ID, id); err != nil {
			return ierr.Wrap(ierr.KindStore, "link genre", err)
		}
	}
	for _, c := range rt.Countries {
		id, err := insertOrGetID(ctx, tx, "countries", c)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO remote_title_countries (remote_title_id, country_id) VALUES (?, ?)
			 ON CONFLICT DO NOTHING`, rt.ID, id); err != nil {
			return ierr.Wrap(ierr.KindStore, "link country", err)
		}
	}
	for _, p := range rt.People {
		id, err := insertOrGetID(ctx, tx, "people", p.Name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO remote_title_people (remote_title_id, person_id, role) VALUES (?, ?, ?)
			 ON CONFLICT DO NOTHING`, rt.ID, id, string(p.Role)); err != nil {
			return ierr.Wrap(ierr.KindStore, "link person", err)
		}
	}
	return nil
}

// insertOrGetID finds the id of an existing row by name in a UK(name) lookup
// table, inserting one with a new uuid if absent.
func insertOrGetID(ctx context.Context, tx *sql.Tx, table, name string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", ierr.Wrap(ierr.KindStore, "lookup "+table, err)
	}
	id = uuid.New().String()
	if _, err := tx.ExecContext(ctx, "INSERT INTO "+table+" (id, name) VALUES (?, ?)", id, name); err != nil {
		return "", ierr.Wrap(ierr.KindStore, "insert "+table, err)
	}
	return id, nil
}

func locateOrCreateMedia(ctx context.Context, tx *sql.Tx, m *media.Media) (string, error) {
	var id string
	var err error
	if m.RemoteTitleID != "" {
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM medias WHERE remote_title_id = ?`, m.RemoteTitleID).Scan(&id)
	} else {
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM medias WHERE name = ? AND year IS ?`, m.Name, nullableInt(m.Year)).Scan(&id)
	}
	if err == nil {
		m.ID = mustParseUUID(id)
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", ierr.Wrap(ierr.KindStore, "locate media", err)
	}

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	id = m.ID.String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO medias (id, name, year, watched, my_ranking, watch_list, remote_title_id)
		VALUES (?, ?, ?, 0, 0, 0, ?)`,
		id, m.Name, nullableInt(m.Year), nullableString(m.RemoteTitleID))
	if err != nil {
		return "", ierr.Wrap(ierr.KindStore, "insert media", err)
	}
	return id, nil
}

func locateOrCreateSeason(ctx context.Context, tx *sql.Tx, mediaID string, s *media.Season) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM seasons WHERE media_id = ? AND season_number = ?`, mediaID, s.SeasonNumber).Scan(&id)
	if err == nil {
		s.ID = mustParseUUID(id)
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", ierr.Wrap(ierr.KindStore, "locate season", err)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	id = s.ID.String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO seasons (id, media_id, season_number, watched) VALUES (?, ?, ?, 0)`,
		id, mediaID, s.SeasonNumber); err != nil {
		return "", ierr.Wrap(ierr.KindStore, "insert season", err)
	}
	return id, nil
}

func locateOrCreateEpisode(ctx context.Context, tx *sql.Tx, seasonID string, e *media.Episode) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM episodes WHERE season_id = ? AND episode_number = ?`, seasonID, e.EpisodeNumber).Scan(&id)
	if err == nil {
		e.ID = mustParseUUID(id)
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", ierr.Wrap(ierr.KindStore, "locate episode", err)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	id = e.ID.String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO episodes (id, season_id, episode_number, watched) VALUES (?, ?, ?, 0)`,
		id, seasonID, e.EpisodeNumber); err != nil {
		return "", ierr.Wrap(ierr.KindStore, "insert episode", err)
	}
	return id, nil
}

func insertFile(ctx context.Context, tx *sql.Tx, f *media.MediaFile, mediaID, episodeID string) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO files (id, media_id, episode_id, file_name, path, quality, language_format)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO NOTHING`,
		f.ID.String(), nullableString(mediaID), nullableString(episodeID),
		f.Name, f.Path, nullableString(f.Quality), string(f.LanguageFormat))
	if err != nil {
		return ierr.Wrap(ierr.KindStore, "insert file", err)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func mustParseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
