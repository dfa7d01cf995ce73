package rankctl

import (
	"fmt"

	"github.com/okian/talentmatch/internal/domain/ranking"
	"github.com/okian/talentmatch/internal/domain/types"
)

const scoreEpsilon = 1e-9

// Verify checks the shape of a ranked list: at most MaxResults entries,
// contiguous ranks from 1, unique talents, curated entries first and every
// matching score inside its rank band.
func Verify(results []types.RankedTalent) error {
	if len(results) > ranking.MaxResults {
		return fmt.Errorf("%w: %d entries exceeds %d", ErrInvalidResult, len(results), ranking.MaxResults)
	}
	seen := make(map[int64]struct{}, len(results))
	curatedDone := false
	for i, r := range results {
		if r.Rank != i+1 {
			return fmt.Errorf("%w: position %d has rank %d", ErrInvalidResult, i+1, r.Rank)
		}
		if _, dup := seen[r.TalentID]; dup {
			return fmt.Errorf("%w: talent %d listed twice", ErrInvalidResult, r.TalentID)
		}
		seen[r.TalentID] = struct{}{}

		if !r.IsRecommended {
			curatedDone = true
		} else if curatedDone {
			return fmt.Errorf("%w: recommended talent %d below a computed entry", ErrInvalidResult, r.TalentID)
		}

		band, ok := ranking.BandFor(r.Rank)
		if !ok {
			return fmt.Errorf("%w: rank %d has no band", ErrInvalidResult, r.Rank)
		}
		if r.MatchingScore < band.Min-scoreEpsilon || r.MatchingScore > band.Max+scoreEpsilon {
			return fmt.Errorf("%w: rank %d score %.1f outside [%.1f, %.1f]",
				ErrInvalidResult, r.Rank, r.MatchingScore, band.Min, band.Max)
		}
	}
	return nil
}
