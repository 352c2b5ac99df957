// Package merge implements the Merger (SPEC_FULL.md §4.3): deduplicating a
// flat list of single-file media.Media into one entry per logical title,
// combining seasons and episodes under the same title.
package merge

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

// bucketKey is the hash-only portion of the grouping key: (title, is_series).
// Year is deliberately excluded so "(title, series, None)" and
// "(title, series, Some(y))" land in the same bucket — equality then tells
// them apart (see keysEqual).
type bucketKey struct {
	title    string
	isSeries bool
}

func hashBucket(k bucketKey) uint64 {
	h := xxhash.New()
	h.WriteString(k.title)
	if k.isSeries {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// yearsEqual implements the tri-valued year equality from SPEC_FULL.md §4.3
// and §9: both unknown is equal, one unknown is equal (the known year wins
// on merge), both known requires numeric equality.
func yearsEqual(a, b *int) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}

func keysEqual(a, b *media.Media) bool {
	return a.Name == b.Name && a.IsSeries == b.IsSeries && yearsEqual(a.Year, b.Year)
}

// bucket holds all entries sharing a hash so a final linear scan can
// apply the real (tri-valued) equality within it.
type bucket struct {
	entries []*media.Media
}

// Merge groups input in arrival order, combining entries with an equal key
// per SPEC_FULL.md §4.3, and returns the combined list sorted by
// (title, year, is_series) ascending. The merge is associative but not
// commutative for year: the first-present year wins.
func Merge(input []*media.Media) []*media.Media {
	buckets := make(map[uint64]*bucket)

	for _, donor := range input {
		key := bucketKey{title: donor.Name, isSeries: donor.IsSeries}
		h := hashBucket(key)
		b, ok := buckets[h]
		if !ok {
			b = &bucket{}
			buckets[h] = b
		}

		merged := false
		for _, recipient := range b.entries {
			if keysEqual(recipient, donor) {
				mergeInto(recipient, donor)
				merged = true
				break
			}
		}
		if !merged {
			b.entries = append(b.entries, donor)
		}
	}

	var out []*media.Media
	for _, b := range buckets {
		out = append(out, b.entries...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		ay, by := yearSortValue(a.Year), yearSortValue(b.Year)
		if ay != by {
			return ay < by
		}
		return !a.IsSeries && b.IsSeries
	})

	return out
}

func yearSortValue(y *int) int {
	if y == nil {
		return -1
	}
	return *y
}

// mergeInto folds donor into recipient per the field-by-field rules in
// SPEC_FULL.md §4.3.
func mergeInto(recipient, donor *media.Media) {
	if recipient.Year == nil {
		recipient.Year = donor.Year
	}
	if recipient.RemoteTitleID == "" {
		recipient.RemoteTitleID = donor.RemoteTitleID
		if recipient.RemoteTitle == nil {
			recipient.RemoteTitle = donor.RemoteTitle
		}
	}

	recipient.Files = append(recipient.Files, donor.Files...)

	for _, donorSeason := range donor.Seasons {
		if existing := findSeason(recipient.Seasons, donorSeason.SeasonNumber); existing != nil {
			mergeSeason(existing, donorSeason)
		} else {
			recipient.Seasons = append(recipient.Seasons, donorSeason)
		}
	}
	sort.Slice(recipient.Seasons, func(i, j int) bool {
		return recipient.Seasons[i].SeasonNumber < recipient.Seasons[j].SeasonNumber
	})
}

func findSeason(seasons []*media.Season, number int) *media.Season {
	for _, s := range seasons {
		if s.SeasonNumber == number {
			return s
		}
	}
	return nil
}

func mergeSeason(recipient, donor *media.Season) {
	for _, donorEp := range donor.Episodes {
		if existing := findEpisode(recipient.Episodes, donorEp.EpisodeNumber); existing != nil {
			existing.Files = append(existing.Files, donorEp.Files...)
		} else {
			recipient.Episodes = append(recipient.Episodes, donorEp)
		}
	}
	sort.Slice(recipient.Episodes, func(i, j int) bool {
		return recipient.Episodes[i].EpisodeNumber < recipient.Episodes[j].EpisodeNumber
	})
}

func findEpisode(episodes []*media.Episode, number int) *media.Episode {
	for _, e := range episodes {
		if e.EpisodeNumber == number {
			return e
		}
	}
	return nil
}
