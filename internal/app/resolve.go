package app

import (
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"mass_housing/internal/domain"
)

// MatchThreshold is the minimum similarity (0–100) for a listing town to
// resolve to a census town. A score of exactly 85 matches; 84 does not.
const MatchThreshold = 85

// ResolveTowns builds the listing-town → census-town mapping. For every
// distinct listing town it scans every distinct census town with a
// normalized edit-distance ratio and keeps the best scorer; ties keep the
// first maximal candidate in census-name sort order, so the mapping is fully
// deterministic. Towns whose best score falls below the threshold are absent
// from the map (unmatched).
//
// The mapping is not injective: two listing names may collapse onto the same
// census town. Downstream merges rely on that leniency to catch misspelled
// duplicates of the same place.
func ResolveTowns(listingTowns, censusTowns []string, threshold int) map[string]string {
	census := distinctSorted(censusTowns)
	out := make(map[string]string, len(listingTowns))
	if len(census) == 0 {
		return out
	}

	for _, lt := range distinctSorted(listingTowns) {
		best := -1
		bestName := ""
		for _, ct := range census {
			if s := fuzzy.Ratio(lt, ct); s > best {
				best, bestName = s, ct
			}
		}
		if best >= threshold {
			out[lt] = bestName
		}
	}
	return out
}

// ListingTowns returns the distinct, sorted town names of a cleaned set.
func ListingTowns(ls []domain.Listing) []string {
	names := make([]string, 0, len(ls))
	for _, l := range ls {
		names = append(names, l.City)
	}
	return distinctSorted(names)
}

func distinctSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
