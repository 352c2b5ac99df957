package store

import (
	"context"
	"testing"

	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

func TestFilterByNameSubstring(t *testing.T) {
	s := openTestStore(t)
	dune := media.FromPath("/lib/Dune.2021.mkv")
	matrix := media.FromPath("/lib/The.Matrix.1999.mkv")
	if err := s.InsertMedias(context.Background(), []*media.Media{dune, matrix}); err != nil {
		t.Fatalf("InsertMedias: %v", err)
	}

	got, err := s.Filter(context.Background(), Filters{Name: "dune"})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 1 || got[0].ID != dune.ID {
		t.Fatalf("got %v, want only dune", got)
	}
}

func TestFilterWatchedPredicate(t *testing.T) {
	s := openTestStore(t)
	dune := media.FromPath("/lib/Dune.2021.mkv")
	if err := s.InsertMedias(context.Background(), []*media.Media{dune}); err != nil {
		t.Fatalf("InsertMedias: %v", err)
	}
	if err := s.SetMediaWatched(context.Background(), dune.ID.String(), true); err != nil {
		t.Fatal(err)
	}

	watched := true
	got, err := s.Filter(context.Background(), Filters{Watched: &watched})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d watched medias, want 1", len(got))
	}

	unwatched := false
	got, err = s.Filter(context.Background(), Filters{Watched: &unwatched})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d unwatched medias, want 0", len(got))
	}
}

func TestGetMediaByIDAssemblesSeasonsAndFiles(t *testing.T) {
	s := openTestStore(t)
	m := insertSeries(t, s)

	got, err := s.GetMediaByID(context.Background(), m.ID.String())
	if err != nil {
		t.Fatalf("GetMediaByID: %v", err)
	}
	if !got.IsSeries || len(got.Seasons) != 1 {
		t.Fatalf("got IsSeries=%v seasons=%d, want series with 1 season", got.IsSeries, len(got.Seasons))
	}
	if len(got.Seasons[0].Episodes) != 2 {
		t.Fatalf("got %d episodes, want 2", len(got.Seasons[0].Episodes))
	}
}

func TestGetMediaByIDNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetMediaByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err == nil {
		t.Fatal("expected not-found error")
	}
}
