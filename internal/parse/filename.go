// Package parse implements the pure filename heuristics that turn a media
// file's stem into structured attributes: title, year, quality tag,
// language-format tag, and an optional (season, episode) pair.
//
// Every exported function is pure: no I/O, no global state, and the same
// input always produces the same output. All functions accept the already
// lowercased filename stem (the path segment before the final extension).
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// noiseTags is the fixed, case-insensitive list of release-group and
// quality/codec markers stripped from titles. Kept in lowercase.
var noiseTags = []string{
	"farsi", "dubbed", "dub", "hardsub", "softsub", "bluray", "web-dl",
	"10bit", "x265", "x264", "6ch", "psa", "film2media", "digimoviez",
	"zardfilm.net", "mer30download.com", "extended", "hd720", "hd1080",
	"brrip", "anoxmous", "salamdl",
}

var punctReplacer = strings.NewReplacer(".", " ", "_", " ", "-", " ", "(", " ", ")", " ")

var noiseTagRegexes []*regexp.Regexp

func init() {
	for _, tag := range noiseTags {
		normalized := punctReplacer.Replace(tag)
		words := strings.Fields(normalized)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		pattern := `\b` + strings.Join(words, `\s+`) + `\b`
		noiseTagRegexes = append(noiseTagRegexes, regexp.MustCompile(`(?i)`+pattern))
	}
}

var truncationRegex = regexp.MustCompile(`(?i)(?:(?:19|20)\d{2})|(?:\d{3,4}p)|(?:s\d{2}\s?e\d{2})`)

var multiSpace = regexp.MustCompile(`\s+`)

// DetectTitle extracts a human-readable, lowercase, whitespace-separated
// title from a filename stem.
func DetectTitle(stem string) string {
	if !utf8.ValidString(stem) || stem == "" {
		return ""
	}
	s := punctReplacer.Replace(stem)
	for _, re := range noiseTagRegexes {
		s = re.ReplaceAllString(s, " ")
	}
	if loc := truncationRegex.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var yearToken = regexp.MustCompile(`(19|20)\d{2}`)

// DetectYear returns the last valid 4-digit year in [1900, 2099] found in the
// stem whose neighboring characters are not digits themselves.
func DetectYear(stem string) (int, bool) {
	if !utf8.ValidString(stem) || stem == "" {
		return 0, false
	}
	var found int
	var ok bool
	for _, loc := range yearToken.FindAllStringIndex(stem, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isDigit(stem[start-1]) {
			continue
		}
		if end < len(stem) && isDigit(stem[end]) {
			continue
		}
		y, err := strconv.Atoi(stem[start:end])
		if err != nil {
			continue
		}
		if y < 1900 || y > 2099 {
			continue
		}
		found, ok = y, true
	}
	return found, ok
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

var qualityToken = regexp.MustCompile(`(?i)\b(4k|2160p|1080p|720p|480p|hd|hq)\b`)

// DetectQuality returns the first recognized quality/resolution token in the
// stem, lowercased; "hd" and "hq" normalize to "720p".
func DetectQuality(stem string) (string, bool) {
	if !utf8.ValidString(stem) || stem == "" {
		return "", false
	}
	m := qualityToken.FindString(stem)
	if m == "" {
		return "", false
	}
	m = strings.ToLower(m)
	if m == "hd" || m == "hq" {
		m = "720p"
	}
	return m, true
}

// LanguageFormat is the tagged variant describing how dialogue/subtitles
// were handled for a file.
type LanguageFormat string

const (
	LanguageFormatUnknown LanguageFormat = ""
	LanguageFormatSoftSub LanguageFormat = "soft_sub"
	LanguageFormatHardSub LanguageFormat = "hard_sub"
	LanguageFormatDubbed  LanguageFormat = "dubbed"
)

var (
	subMarker  = regexp.MustCompile(`(?i)sub|subtitle`)
	dubMarker  = regexp.MustCompile(`(?i)\b(dub|dubbed|farsi)\b`)
	hardSubRe  = regexp.MustCompile(`(?i)hard\s*(hardsub|sub|subtitle)`)
	softSubRe  = regexp.MustCompile(`(?i)(softsub|sub|subtitle)`)
)

// DetectLanguageFormat classifies the stem's dub/subtitle markers.
func DetectLanguageFormat(stem string) LanguageFormat {
	if !utf8.ValidString(stem) || stem == "" {
		return LanguageFormatUnknown
	}
	hasSubMarker := subMarker.MatchString(stem)
	hasDubMarker := dubMarker.MatchString(stem)
	if hasDubMarker && !hasSubMarker {
		return LanguageFormatDubbed
	}
	if hardSubRe.MatchString(stem) {
		return LanguageFormatHardSub
	}
	if softSubRe.MatchString(stem) {
		return LanguageFormatSoftSub
	}
	return LanguageFormatUnknown
}

var seriesToken = regexp.MustCompile(`(?i)s(\d{1,2})[\s._-]?e(\d{1,2})`)

// DetectSeries returns the (season, episode) pair embedded in the stem, if
// any. Both numbers are >= 0; a result of (0, 0) denotes "no series" to callers.
func DetectSeries(stem string) (season, episode int, ok bool) {
	if !utf8.ValidString(stem) || stem == "" {
		return 0, 0, false
	}
	m := seriesToken.FindStringSubmatch(stem)
	if m == nil {
		return 0, 0, false
	}
	s, errS := strconv.Atoi(m[1])
	e, errE := strconv.Atoi(m[2])
	if errS != nil || errE != nil {
		return 0, 0, false
	}
	return s, e, true
}
