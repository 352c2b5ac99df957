package merge

import (
	"testing"

	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

func intp(v int) *int { return &v }

func TestMergeSeriesAcrossSeasons(t *testing.T) {
	input := []*media.Media{
		media.FromPath("/m/loki/S1/Loki.S01E02.720p.WEB.DL.Dubbed.ZarFilm.mkv"),
		media.FromPath("/m/loki/S1/Loki.S01E02.720p.WEB.DL.Dubbed.mkv"),
		media.FromPath("/m/loki/S2/Loki.S02E03.720p.WEB.DL.Dubbed.mkv"),
	}

	out := Merge(input)
	if len(out) != 1 {
		t.Fatalf("got %d medias, want 1", len(out))
	}
	m := out[0]
	if m.Name != "loki" {
		t.Fatalf("name = %q, want loki", m.Name)
	}
	if m.Year != nil {
		t.Fatalf("year = %v, want nil", m.Year)
	}
	if len(m.Seasons) != 2 {
		t.Fatalf("got %d seasons, want 2", len(m.Seasons))
	}
	if m.Seasons[0].SeasonNumber != 1 || m.Seasons[1].SeasonNumber != 2 {
		t.Fatalf("seasons not ordered: %+v", m.Seasons)
	}
	s1 := m.Seasons[0]
	if len(s1.Episodes) != 1 || s1.Episodes[0].EpisodeNumber != 2 {
		t.Fatalf("season 1 episodes wrong: %+v", s1.Episodes)
	}
	if len(s1.Episodes[0].Files) != 2 {
		t.Fatalf("season 1 episode 2 files = %d, want 2", len(s1.Episodes[0].Files))
	}
	s2 := m.Seasons[1]
	if len(s2.Episodes) != 1 || s2.Episodes[0].EpisodeNumber != 3 {
		t.Fatalf("season 2 episodes wrong: %+v", s2.Episodes)
	}
	if len(s2.Episodes[0].Files) != 1 {
		t.Fatalf("season 2 episode 3 files = %d, want 1", len(s2.Episodes[0].Files))
	}
}

func TestMergeYearNoneAbsorption(t *testing.T) {
	withYear := &media.Media{Name: "alien", Year: intp(2020), Files: []*media.MediaFile{{Path: "/a/alien.2020.mkv"}}}
	noYear := &media.Media{Name: "alien", Year: nil, Files: []*media.MediaFile{{Path: "/a/alien.mkv"}}}

	out := Merge([]*media.Media{noYear, withYear})
	if len(out) != 1 {
		t.Fatalf("got %d medias, want 1", len(out))
	}
	m := out[0]
	if m.Year == nil || *m.Year != 2020 {
		t.Fatalf("year = %v, want 2020", m.Year)
	}
	if len(m.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(m.Files))
	}
}

func TestMergeDistinctKnownYearsDoNotMerge(t *testing.T) {
	a := &media.Media{Name: "dune", Year: intp(1984), Files: []*media.MediaFile{{Path: "/a"}}}
	b := &media.Media{Name: "dune", Year: intp(2021), Files: []*media.MediaFile{{Path: "/b"}}}

	out := Merge([]*media.Media{a, b})
	if len(out) != 2 {
		t.Fatalf("got %d medias, want 2 (distinct known years must not merge)", len(out))
	}
}

func TestMergeOutputOrdering(t *testing.T) {
	a := &media.Media{Name: "zeta", Year: intp(2000), Files: []*media.MediaFile{{Path: "/z"}}}
	b := &media.Media{Name: "alpha", Year: intp(1999), Files: []*media.MediaFile{{Path: "/a"}}}

	out := Merge([]*media.Media{a, b})
	if out[0].Name != "alpha" || out[1].Name != "zeta" {
		t.Fatalf("not sorted by name: %v, %v", out[0].Name, out[1].Name)
	}
}
