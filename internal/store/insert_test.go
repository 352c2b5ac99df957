package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertMediasMovieRoundTrip(t *testing.T) {
	s := openTestStore(t)
	m := media.FromPath("/library/Who.Am.I.2014.720p.BluRay.mp4")

	if err := s.InsertMedias(context.Background(), []*media.Media{m}); err != nil {
		t.Fatalf("InsertMedias: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM medias WHERE name = ?`, m.Name).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d medias named %q, want 1", count, m.Name)
	}

	var fileCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&fileCount); err != nil {
		t.Fatalf("query files: %v", err)
	}
	if fileCount != 1 {
		t.Fatalf("got %d files, want 1", fileCount)
	}
}

func TestInsertMediasSeriesCreatesSeasonsAndEpisodes(t *testing.T) {
	s := openTestStore(t)
	m := media.FromPath("/library/Loki.S01E02.1080p.mkv")

	if err := s.InsertMedias(context.Background(), []*media.Media{m}); err != nil {
		t.Fatalf("InsertMedias: %v", err)
	}

	var seasons, episodes int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM seasons`).Scan(&seasons); err != nil {
		t.Fatalf("query seasons: %v", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM episodes`).Scan(&episodes); err != nil {
		t.Fatalf("query episodes: %v", err)
	}
	if seasons != 1 || episodes != 1 {
		t.Fatalf("got %d seasons, %d episodes, want 1 and 1", seasons, episodes)
	}
}

func TestInsertMediasDuplicatePathIsNoop(t *testing.T) {
	s := openTestStore(t)
	m := media.FromPath("/library/Dune.2021.1080p.mkv")

	if err := s.InsertMedias(context.Background(), []*media.Media{m}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := s.InsertMedias(context.Background(), []*media.Media{m}); err != nil {
		t.Fatalf("second insert: %v", err)
	}

	var fileCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files WHERE path = ?`, m.Files[0].Path).Scan(&fileCount); err != nil {
		t.Fatalf("query: %v", err)
	}
	if fileCount != 1 {
		t.Fatalf("got %d file rows for re-inserted path, want 1", fileCount)
	}
}
