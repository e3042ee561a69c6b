package explore

import (
	"sort"
	"strings"

	"github.com/hyperjump/tana/internal/models"
)

// Dedup removes candidates that repeat another candidate's provider and
// external ID, keeping the earliest occurrence. Candidates without an
// external ID are never considered duplicates.
func Dedup(candidates []models.Candidate) []models.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		key, ok := c.DedupKey()
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, c)
	}
	return out
}

// Rank sorts candidates by global score descending. Unrated candidates sort
// last. Ties break by title, case-insensitively first so "apple" and "Apple"
// group together, then byte order for a stable total order.
func Rank(candidates []models.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.GlobalScore != nil && b.GlobalScore == nil:
			return true
		case a.GlobalScore == nil && b.GlobalScore != nil:
			return false
		case a.GlobalScore != nil && *a.GlobalScore != *b.GlobalScore:
			return *a.GlobalScore > *b.GlobalScore
		}
		af, bf := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if af != bf {
			return af < bf
		}
		return a.Title < b.Title
	})
}

// Truncate caps the candidate list at limit. Non-positive limits leave the
// list unchanged.
func Truncate(candidates []models.Candidate, limit int) []models.Candidate {
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
