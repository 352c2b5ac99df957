package parse

import "testing"

func TestDetectTitle(t *testing.T) {
	cases := []struct {
		stem string
		want string
	}{
		{"who.am.i.2014.720p.bluray.hardsub.digimoviez", "who am i"},
		{"loki.s01e02.720p.web.dl.dubbed.zarfilm.net", "loki"},
		{"1080p", ""},
	}
	for _, c := range cases {
		if got := DetectTitle(c.stem); got != c.want {
			t.Errorf("DetectTitle(%q) = %q, want %q", c.stem, got, c.want)
		}
	}
}

func TestDetectTitleIdempotent(t *testing.T) {
	inputs := []string{
		"who.am.i.2014.720p.bluray.hardsub.digimoviez",
		"loki.s01e02.720p.web.dl.dubbed",
		"plain title with no markers",
	}
	for _, in := range inputs {
		once := DetectTitle(in)
		twice := DetectTitle(once)
		if once != twice {
			t.Errorf("DetectTitle not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestDetectYear(t *testing.T) {
	cases := []struct {
		stem     string
		wantYear int
		wantOK   bool
	}{
		{"who.am.i.2014.720p", 2014, true},
		{"movie.1899", 0, false},
		{"movie.2100", 0, false},
		{"no year here", 0, false},
		{"1999.and.2014.both", 2014, true},
	}
	for _, c := range cases {
		y, ok := DetectYear(c.stem)
		if ok != c.wantOK || (ok && y != c.wantYear) {
			t.Errorf("DetectYear(%q) = (%d,%v), want (%d,%v)", c.stem, y, ok, c.wantYear, c.wantOK)
		}
	}
}

func TestDetectQuality(t *testing.T) {
	cases := []struct {
		stem string
		want string
	}{
		{"movie.720p.mkv", "720p"},
		{"movie.hd.mkv", "720p"},
		{"movie.hq", "720p"},
		{"movie.4k", "4k"},
		{"movie plain", ""},
	}
	for _, c := range cases {
		q, ok := DetectQuality(c.stem)
		if c.want == "" {
			if ok {
				t.Errorf("DetectQuality(%q) = %q, want none", c.stem, q)
			}
			continue
		}
		if !ok || q != c.want {
			t.Errorf("DetectQuality(%q) = %q, want %q", c.stem, q, c.want)
		}
	}
}

func TestDetectLanguageFormat(t *testing.T) {
	cases := []struct {
		stem string
		want LanguageFormat
	}{
		{"loki.s01e02.720p.web.dl.dubbed", LanguageFormatDubbed},
		{"movie.farsi", LanguageFormatDubbed},
		{"movie.hardsub", LanguageFormatHardSub},
		{"movie.softsub", LanguageFormatSoftSub},
		{"movie.dubbed.subtitle", LanguageFormatSoftSub},
		{"movie.plain", LanguageFormatUnknown},
	}
	for _, c := range cases {
		if got := DetectLanguageFormat(c.stem); got != c.want {
			t.Errorf("DetectLanguageFormat(%q) = %q, want %q", c.stem, got, c.want)
		}
	}
}

func TestDetectSeries(t *testing.T) {
	cases := []struct {
		stem        string
		wantSeason  int
		wantEpisode int
		wantOK      bool
	}{
		{"loki.s01e02.720p", 1, 2, true},
		{"loki.s1e2.720p", 1, 2, true},
		{"loki s01 e02", 1, 2, true},
		{"who.am.i.2014", 0, 0, false},
	}
	for _, c := range cases {
		s, e, ok := DetectSeries(c.stem)
		if ok != c.wantOK || s != c.wantSeason || e != c.wantEpisode {
			t.Errorf("DetectSeries(%q) = (%d,%d,%v), want (%d,%d,%v)",
				c.stem, s, e, ok, c.wantSeason, c.wantEpisode, c.wantOK)
		}
	}
}
