// Package scoring computes the per-candidate components of the reflected
// score: the segment base power and the industry image adjustment.
package scoring

import "github.com/okian/talentmatch/internal/domain/model"

// BasePower averages the two segment metrics, reading a missing metric as 0.
func BasePower(s model.SegmentScore) float64 {
	var popularity, strength float64
	if s.Popularity != nil {
		popularity = *s.Popularity
	}
	if s.Strength != nil {
		strength = *s.Strength
	}
	return (popularity + strength) / 2
}

// BasePowers scores every id against its segment row. Ids without a row
// score 0 and are still present in the result.
func BasePowers(ids []model.TalentID, scores map[model.TalentID]model.SegmentScore) map[model.TalentID]float64 {
	out := make(map[model.TalentID]float64, len(ids))
	for _, id := range ids {
		out[id] = BasePower(scores[id])
	}
	return out
}
