package ranking

import "github.com/okian/talentmatch/internal/domain/model"

// AnnotateCompetingCm flags entries holding a live competing contract and
// returns how many were flagged. Ranks and scores are untouched.
func AnnotateCompetingCm(entries []Entry, status map[model.TalentID]bool) int {
	flagged := 0
	for i := range entries {
		entries[i].InCompetingCm = status[entries[i].TalentID]
		if entries[i].InCompetingCm {
			flagged++
		}
	}
	return flagged
}

// IDs returns the talent ids of entries in order.
func IDs(entries []Entry) []model.TalentID {
	ids := make([]model.TalentID, len(entries))
	for i, e := range entries {
		ids[i] = e.TalentID
	}
	return ids
}
