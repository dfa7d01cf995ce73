// Package ranking orders scored candidates, maps ranks to matching scores and
// applies the curated and competing-CM overlays.
package ranking

import (
	"sort"

	"github.com/okian/talentmatch/internal/domain/model"
)

// MaxResults is the maximum length of a ranking.
const MaxResults = 30

// Entry is one talent moving through the ranking stages.
type Entry struct {
	TalentID      model.TalentID
	Name          string
	Base          float64
	Adjustment    float64
	Rank          int
	MatchingScore float64
	IsRecommended bool
	InCompetingCm bool
}

// Reflected is the base power with the image adjustment added.
func (e Entry) Reflected() float64 {
	return e.Base + e.Adjustment
}

// less orders by reflected score desc, then base desc, then id asc.
func less(a, b Entry) bool {
	ra, rb := a.Reflected(), b.Reflected()
	if ra != rb {
		return ra > rb
	}
	if a.Base != b.Base {
		return a.Base > b.Base
	}
	return a.TalentID < b.TalentID
}

// Rank sorts a copy of entries into a total order, keeps the first limit
// (MaxResults when limit is out of range) and numbers them from 1.
func Rank(entries []Entry, limit int) []Entry {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	renumber(out)
	return out
}

func renumber(entries []Entry) {
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
