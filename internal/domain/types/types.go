// Package types contains common types used across the application
package types

// RankedTalent is one row of a ranking result.
type RankedTalent struct {
	TalentID                 int64   `json:"talent_id"`
	Name                     string  `json:"name"`
	Rank                     int     `json:"rank"`
	MatchingScore            float64 `json:"matching_score"`
	BasePowerScore           float64 `json:"base_power_score"`
	ImageAdjustment          float64 `json:"image_adjustment"`
	IsRecommended            bool    `json:"is_recommended"`
	IsCurrentlyInCompetingCm bool    `json:"is_currently_in_competing_cm"`
}
