package zone

// resolver.go matches scraped free-text zone names ("Baneasa nord",
// "str. aviatiei") against canonical registry names. Scraper output is
// inconsistent about diacritics, casing, and suffixes, so an exact
// lookup would miss most rows; a normalized Levenshtein similarity
// with a lenient cutoff recovers the obvious cases without inventing
// matches for garbage input.

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// SimilarityThreshold is the minimum similarity for a match. Below it
// the resolver reports a miss rather than guessing.
const SimilarityThreshold = 0.6

// Resolve returns the registry entry whose name is most similar to
// the given free-text name, case-insensitively. The second return is
// false when the registry is empty, the name is blank, or no entry
// clears the similarity threshold.
//
// Resolve is pure: the same (name, registry) pair always yields the
// same result. Ties break toward the earlier registry entry.
func (r *Registry) Resolve(name string) (Zone, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" || len(r.zones) == 0 {
		return Zone{}, false
	}

	lev := metrics.NewLevenshtein()

	best := -1
	bestScore := 0.0
	for i, z := range r.zones {
		score := strutil.Similarity(needle, strings.ToLower(z.Name), lev)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 || bestScore < SimilarityThreshold {
		return Zone{}, false
	}
	return r.zones[best], true
}
