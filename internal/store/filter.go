package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

// SortKey selects the ordering applied by Filter.
type SortKey string

const (
	SortByName   SortKey = "name"
	SortByYear   SortKey = "year"
	SortByRating SortKey = "rating"
)

// KindFilter narrows the filter predicate on remote_titles.kind; KindAll
// means no predicate is added.
type KindFilter string

const (
	KindFilterAll    KindFilter = "all"
	KindFilterMovie  KindFilter = "movie"
	KindFilterSeries KindFilter = "series"
)

// PageSize is the design-time page-size constant SPEC_FULL.md §4.7 names.
const PageSize = 50

// Filters mirrors SPEC_FULL.md §4.7's filter predicate list. Zero values
// (empty string, nil slice, nil bool pointer) mean "no predicate".
type Filters struct {
	Name             string
	Kind             KindFilter
	MinRating        *float64
	CountryIDs       []string
	GenreIDs         []string
	ActorIDs         []string
	TagIDs           []string
	ExistRemoteTitle *bool
	ExistMultiFile   *bool
	Watched          *bool
	WatchList        *bool

	Sort      SortKey
	Ascending bool
	Page      int // zero-based
}

// Filter runs the filter query, returning one page of fully-assembled Media.
func (s *Store) Filter(ctx context.Context, f Filters) ([]*media.Media, error) {
	var where []string
	var args []any

	if f.Name != "" {
		where = append(where, `(LOWER(medias.name) LIKE ? OR LOWER(remote_titles.title) LIKE ?)`)
		needle := "%" + strings.ToLower(f.Name) + "%"
		args = append(args, needle, needle)
	}
	if f.Kind != "" && f.Kind != KindFilterAll {
		where = append(where, `remote_titles.kind = ?`)
		args = append(args, string(f.Kind))
	}
	if f.MinRating != nil {
		where = append(where, `CAST(remote_titles.rating AS REAL) >= ?`)
		args = append(args, *f.MinRating)
	}
	for _, id := range f.GenreIDs {
		where = append(where, `EXISTS (SELECT 1 FROM remote_title_genres g WHERE g.remote_title_id = medias.remote_title_id AND g.genre_id = ?)`)
		args = append(args, id)
	}
	for _, id := range f.CountryIDs {
		where = append(where, `EXISTS (SELECT 1 FROM remote_title_countries c WHERE c.remote_title_id = medias.remote_title_id AND c.country_id = ?)`)
		args = append(args, id)
	}
	for _, id := range f.ActorIDs {
		where = append(where, `EXISTS (SELECT 1 FROM remote_title_people p WHERE p.remote_title_id = medias.remote_title_id AND p.person_id = ? AND p.role = 'actor')`)
		args = append(args, id)
	}
	for _, id := range f.TagIDs {
		where = append(where, `EXISTS (SELECT 1 FROM media_tags t WHERE t.media_id = medias.id AND t.tag_id = ?)`)
		args = append(args, id)
	}
	if f.ExistRemoteTitle != nil {
		if *f.ExistRemoteTitle {
			where = append(where, `medias.remote_title_id IS NOT NULL`)
		} else {
			where = append(where, `medias.remote_title_id IS NULL`)
		}
	}
	if f.ExistMultiFile != nil {
		multi := `(
			(SELECT COUNT(*) FROM files WHERE files.media_id = medias.id) > 1
			OR EXISTS (
				SELECT 1 FROM episodes e
				JOIN seasons se ON se.id = e.season_id
				WHERE se.media_id = medias.id
				GROUP BY e.id HAVING (SELECT COUNT(*) FROM files WHERE files.episode_id = e.id) > 1
			)
		)`
		if *f.ExistMultiFile {
			where = append(where, multi)
		} else {
			where = append(where, "NOT "+multi)
		}
	}
	if f.Watched != nil {
		where = append(where, `medias.watched = ?`)
		args = append(args, boolInt(*f.Watched))
	}
	if f.WatchList != nil {
		where = append(where, `medias.watch_list = ?`)
		args = append(args, boolInt(*f.WatchList))
	}

	dir := "ASC"
	if !f.Ascending {
		dir = "DESC"
	}
	var orderBy string
	switch f.Sort {
	case SortByYear:
		orderBy = fmt.Sprintf("NULLIF(remote_titles.year, '') %s, medias.year %s", dir, dir)
	case SortByRating:
		orderBy = fmt.Sprintf("CAST(NULLIF(remote_titles.rating, '') AS REAL) %s, remote_titles.title %s", dir, dir)
	default:
		orderBy = fmt.Sprintf("remote_titles.title %s, medias.name %s", dir, dir)
	}

	query := `
		SELECT DISTINCT medias.id
		FROM medias
		LEFT JOIN remote_titles ON remote_titles.id = medias.remote_title_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, PageSize, f.Page*PageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "run filter query", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, ierr.Wrap(ierr.KindStore, "scan filter row", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "iterate filter rows", err)
	}

	out := make([]*media.Media, 0, len(ids))
	for _, id := range ids {
		m, err := s.GetMediaByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// GetMediaByID assembles a complete Media: its row, RemoteTitle (with
// ancillary sets), seasons ordered by number with their episodes ordered by
// number (each with files), direct files, and tags.
func (s *Store) GetMediaByID(ctx context.Context, id string) (*media.Media, error) {
	m := &media.Media{}
	var idStr string
	var year sql.NullInt64
	var watched, myRanking, watchList int
	var remoteTitleID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, year, watched, my_ranking, watch_list, remote_title_id FROM medias WHERE id = ?`, id,
	).Scan(&idStr, &m.Name, &year, &watched, &myRanking, &watchList, &remoteTitleID)
	if err == sql.ErrNoRows {
		return nil, ierr.NotFoundError("media not found: " + id)
	}
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "load media", err)
	}
	m.ID = mustParseUUID(idStr)
	if year.Valid {
		y := int(year.Int64)
		m.Year = &y
	}
	m.Watched = watched != 0
	m.MyRanking = uint8(myRanking)
	m.WatchList = watchList != 0
	m.IsSeries = false

	if remoteTitleID.Valid {
		m.RemoteTitleID = remoteTitleID.String
		rt, err := s.loadRemoteTitle(ctx, remoteTitleID.String)
		if err != nil {
			return nil, err
		}
		m.RemoteTitle = rt
	}

	seasons, err := s.loadSeasons(ctx, idStr)
	if err != nil {
		return nil, err
	}
	if len(seasons) > 0 {
		m.IsSeries = true
		m.Seasons = seasons
	}

	files, err := s.loadFilesByParent(ctx, "media_id", idStr)
	if err != nil {
		return nil, err
	}
	m.Files = files

	tags, err := s.loadMediaTags(ctx, idStr)
	if err != nil {
		return nil, err
	}
	m.Tags = tags

	return m, nil
}

func (s *Store) loadSeasons(ctx context.Context, mediaID string) ([]*media.Season, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, season_number, watched FROM seasons WHERE media_id = ? ORDER BY season_number ASC`, mediaID)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "load seasons", err)
	}
	defer rows.Close()

	var seasons []*media.Season
	for rows.Next() {
		se := &media.Season{}
		var idStr string
		var watched int
		if err := rows.Scan(&idStr, &se.SeasonNumber, &watched); err != nil {
			return nil, ierr.Wrap(ierr.KindStore, "scan season", err)
		}
		se.ID = mustParseUUID(idStr)
		se.Watched = watched != 0
		seasons = append(seasons, se)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "iterate seasons", err)
	}

	for _, se := range seasons {
		episodes, err := s.loadEpisodes(ctx, se.ID.String())
		if err != nil {
			return nil, err
		}
		se.Episodes = episodes
	}
	return seasons, nil
}

func (s *Store) loadEpisodes(ctx context.Context, seasonID string) ([]*media.Episode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, episode_number, watched FROM episodes WHERE season_id = ? ORDER BY episode_number ASC`, seasonID)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "load episodes", err)
	}
	defer rows.Close()

	var episodes []*media.Episode
	for rows.Next() {
		ep := &media.Episode{}
		var idStr string
		var watched int
		if err := rows.Scan(&idStr, &ep.EpisodeNumber, &watched); err != nil {
			return nil, ierr.Wrap(ierr.KindStore, "scan episode", err)
		}
		ep.ID = mustParseUUID(idStr)
		ep.Watched = watched != 0
		episodes = append(episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "iterate episodes", err)
	}

	for _, ep := range episodes {
		files, err := s.loadFilesByParent(ctx, "episode_id", ep.ID.String())
		if err != nil {
			return nil, err
		}
		ep.Files = files
	}
	return episodes, nil
}

func (s *Store) loadFilesByParent(ctx context.Context, column, parentID string) ([]*media.MediaFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, path, quality, language_format FROM files WHERE `+column+` = ?`, parentID)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "load files", err)
	}
	defer rows.Close()

	var files []*media.MediaFile
	for rows.Next() {
		f := &media.MediaFile{}
		var idStr string
		var quality sql.NullString
		var lang string
		if err := rows.Scan(&idStr, &f.Name, &f.Path, &quality, &lang); err != nil {
			return nil, ierr.Wrap(ierr.KindStore, "scan file", err)
		}
		f.ID = mustParseUUID(idStr)
		if quality.Valid {
			f.Quality = quality.String
		}
		f.LanguageFormat = media.LanguageFormat(lang)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "iterate files", err)
	}
	return files, nil
}

func (s *Store) loadRemoteTitle(ctx context.Context, id string) (*media.RemoteTitle, error) {
	rt := &media.RemoteTitle{ID: id}
	var year, votes sql.NullInt64
	var released, plot, poster, rating, kind sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT title, year, released, plot, poster, rating, votes, kind FROM remote_titles WHERE id = ?`, id,
	).Scan(&rt.Title, &year, &released, &plot, &poster, &rating, &votes, &kind)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "load remote title", err)
	}
	if year.Valid {
		y := int(year.Int64)
		rt.Year = &y
	}
	if votes.Valid {
		v := int(votes.Int64)
		rt.Votes = &v
	}
	rt.Released = released.String
	rt.Plot = plot.String
	rt.Poster = poster.String
	rt.Rating = rating.String
	rt.Kind = media.Kind(kind.String)

	rt.Genres, err = s.loadNames(ctx, "remote_title_genres", "genre_id", "genres", id)
	if err != nil {
		return nil, err
	}
	rt.Countries, err = s.loadNames(ctx, "remote_title_countries", "country_id", "countries", id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT people.id, people.name, remote_title_people.role
		FROM remote_title_people
		JOIN people ON people.id = remote_title_people.person_id
		WHERE remote_title_people.remote_title_id = ?`, id)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "load people", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cp media.CreditedPerson
		var role string
		if err := rows.Scan(&cp.ID, &cp.Name, &role); err != nil {
			return nil, ierr.Wrap(ierr.KindStore, "scan person", err)
		}
		cp.Role = media.PersonRole(role)
		rt.People = append(rt.People, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "iterate people", err)
	}
	return rt, nil
}

func (s *Store) loadNames(ctx context.Context, joinTable, joinCol, entityTable, remoteTitleID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s.name FROM %s
		JOIN %s ON %s.id = %s.%s
		WHERE %s.remote_title_id = ?`, entityTable, joinTable, entityTable, entityTable, joinTable, joinCol, joinTable),
		remoteTitleID)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "load "+entityTable, err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ierr.Wrap(ierr.KindStore, "scan "+entityTable, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) loadMediaTags(ctx context.Context, mediaID string) ([]*media.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tags.id, tags.name FROM media_tags
		JOIN tags ON tags.id = media_tags.tag_id
		WHERE media_tags.media_id = ?`, mediaID)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindStore, "load media tags", err)
	}
	defer rows.Close()
	var tags []*media.Tag
	for rows.Next() {
		t := &media.Tag{}
		var idStr string
		if err := rows.Scan(&idStr, &t.Name); err != nil {
			return nil, ierr.Wrap(ierr.KindStore, "scan media tag", err)
		}
		t.ID = mustParseUUID(idStr)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
