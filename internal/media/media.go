// Package media defines the indexer's core domain types — the logical media
// tree the Merger groups files into and the Store persists — and the builder
// that turns a single filesystem path into a one-file Media.
package media

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JustinTDCT/cinevaultindex/internal/parse"
)

// Kind distinguishes a movie from a series. Kept as a typed string so
// persistence and the wire format share the same literal values.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// LanguageFormat re-exports parse.LanguageFormat so callers outside parse
// don't need to import it directly.
type LanguageFormat = parse.LanguageFormat

const (
	LanguageFormatUnknown = parse.LanguageFormatUnknown
	LanguageFormatSoftSub = parse.LanguageFormatSoftSub
	LanguageFormatHardSub = parse.LanguageFormatHardSub
	LanguageFormatDubbed  = parse.LanguageFormatDubbed
)

// PersonRole is the role a Person played in a RemoteTitle.
type PersonRole string

const (
	RoleActor    PersonRole = "actor"
	RoleDirector PersonRole = "director"
	RoleWriter   PersonRole = "writer"
)

type MediaFile struct {
	ID             uuid.UUID
	Name           string // original-case stem
	Path           string
	Quality        string
	LanguageFormat LanguageFormat
}

type Episode struct {
	ID            uuid.UUID
	EpisodeNumber int
	Watched       bool
	Files         []*MediaFile
}

type Season struct {
	ID           uuid.UUID
	SeasonNumber int
	Watched      bool
	Episodes     []*Episode
}

type Person struct {
	ID       string
	Name     string
	ImageURL string
}

// CreditedPerson pairs a Person with the role they held on a RemoteTitle.
type CreditedPerson struct {
	Person
	Role PersonRole
}

type RemoteTitle struct {
	ID        string
	Title     string
	Year      *int
	Released  string
	Plot      string
	Poster    string
	Rating    string // opaque string; cast to numeric at query/sort time
	Votes     *int
	Kind      Kind
	Genres    []string
	Countries []string
	People    []CreditedPerson
}

type Tag struct {
	ID   uuid.UUID
	Name string
}

// Media is a logical title: a movie (direct Files, no Seasons) or a series
// (Seasons owning Episodes owning Files).
type Media struct {
	ID            uuid.UUID
	Name          string
	Year          *int
	IsSeries      bool
	Watched       bool
	MyRanking     uint8
	WatchList     bool
	RemoteTitleID string
	RemoteTitle   *RemoteTitle
	Seasons       []*Season
	Files         []*MediaFile
	Tags          []*Tag
}

// Kind returns the movie/series tag derived from IsSeries.
func (m *Media) Kind() Kind {
	if m.IsSeries {
		return KindSeries
	}
	return KindMovie
}

// FromPath builds a single-file Media from an absolute filesystem path,
// following SPEC_FULL.md §4.2: the stem (filename without extension,
// lowercased for detection) is run through the FilenameParser; a detected
// (season, episode) pair produces a series-shaped Media with one season and
// one episode, otherwise a movie-shaped Media with one direct file.
func FromPath(path string) *Media {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	origStem := strings.TrimSuffix(base, ext)
	stem := strings.ToLower(origStem)

	file := &MediaFile{
		ID:             uuid.New(),
		Name:           origStem,
		Path:           path,
		LanguageFormat: parse.DetectLanguageFormat(stem),
	}
	if q, ok := parse.DetectQuality(stem); ok {
		file.Quality = q
	}

	m := &Media{
		ID:   uuid.New(),
		Name: parse.DetectTitle(stem),
	}
	if y, ok := parse.DetectYear(stem); ok {
		yy := y
		m.Year = &yy
	}

	if season, episode, ok := parse.DetectSeries(stem); ok && (season != 0 || episode != 0) {
		m.IsSeries = true
		m.Seasons = []*Season{{
			ID:           uuid.New(),
			SeasonNumber: season,
			Episodes: []*Episode{{
				ID:            uuid.New(),
				EpisodeNumber: episode,
				Files:         []*MediaFile{file},
			}},
		}}
		return m
	}

	m.Files = []*MediaFile{file}
	return m
}
