package index

import (
	"cmp"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const defaultSuggestions = 5

// Suggest returns up to limit known package names similar to name, closest
// first. Names containing name as a subsequence are ranked before names
// that are merely within a small edit distance.
func (ix *Index) Suggest(name string, limit int) []string {
	if limit <= 0 || name == "" {
		return nil
	}

	type candidate struct {
		name     string
		distance int
		subseq   bool
	}
	var found []candidate
	seen := make(map[string]bool)

	for _, r := range fuzzy.RankFindFold(name, ix.names) {
		found = append(found, candidate{name: r.Target, distance: r.Distance, subseq: true})
		seen[r.Target] = true
	}

	maxEdits := max(2, len(name)/3)
	lower := strings.ToLower(name)
	for _, known := range ix.names {
		if seen[known] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(lower, known); d <= maxEdits {
			found = append(found, candidate{name: known, distance: d})
		}
	}

	slices.SortFunc(found, func(a, b candidate) int {
		if a.subseq != b.subseq {
			if a.subseq {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.distance, b.distance), strings.Compare(a.name, b.name))
	})

	out := make([]string, 0, min(limit, len(found)))
	for _, c := range found {
		if len(out) == limit {
			break
		}
		out = append(out, c.name)
	}
	return out
}
