package ranking

import "github.com/okian/talentmatch/internal/domain/model"

// MergeRecommended places curated entries at the top in curator order,
// removes their computed duplicates, shifts the computed list down and drops
// the overflow past limit. Ranks are renumbered; matching scores are left for
// the caller to redraw.
func MergeRecommended(ranked, curated []Entry, limit int) []Entry {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	seen := make(map[model.TalentID]struct{}, len(curated))
	out := make([]Entry, 0, len(ranked)+len(curated))
	for _, c := range curated {
		if _, dup := seen[c.TalentID]; dup {
			continue
		}
		seen[c.TalentID] = struct{}{}
		c.IsRecommended = true
		out = append(out, c)
	}
	for _, e := range ranked {
		if _, dup := seen[e.TalentID]; dup {
			continue
		}
		e.IsRecommended = false
		out = append(out, e)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	renumber(out)
	return out
}
