// Package repository provides read access to talents, scores and campaign
// reference data for the ranking engine.
package repository

import (
	"context"
	"time"

	"github.com/okian/talentmatch/internal/domain/model"
)

// MaxRecommendedSlots is the number of curated positions per industry.
const MaxRecommendedSlots = 3

// CandidateRepository is the data source the ranking engine reads from.
// Implementations must be safe for concurrent use.
type CandidateRepository interface {
	// FetchCandidates returns every active talent eligible for the brief.
	FetchCandidates(ctx context.Context, segment model.Segment, industry model.Industry) ([]model.Talent, error)
	// FetchTalents looks talents up by id, active or not. Unknown ids are
	// absent from the result.
	FetchTalents(ctx context.Context, ids []model.TalentID) (map[model.TalentID]model.Talent, error)
	// FetchSegmentScores returns the popularity metrics of ids in segmentID.
	FetchSegmentScores(ctx context.Context, segmentID int, ids []model.TalentID) (map[model.TalentID]model.SegmentScore, error)
	// FetchImageTraitScores returns the trait scores of ids in segmentID.
	FetchImageTraitScores(ctx context.Context, segmentID int, ids []model.TalentID) (map[model.TalentID]model.TraitScores, error)
	// FetchBudgetBand resolves a band by name or returns ErrUnknownBudgetBand.
	FetchBudgetBand(ctx context.Context, name string) (model.BudgetBand, error)
	// FetchIndustry resolves an industry by name or returns ErrUnknownIndustry.
	FetchIndustry(ctx context.Context, name string) (model.Industry, error)
	// FetchRecommendedSlots returns up to MaxRecommendedSlots curated ids in
	// slot order.
	FetchRecommendedSlots(ctx context.Context, industryID int64) ([]model.TalentID, error)
	// FetchCompetitiveCmStatus reports, for each id, whether it holds a
	// contract in a category competing with industryID that is in force on asOf.
	FetchCompetitiveCmStatus(ctx context.Context, ids []model.TalentID, industryID int64, asOf time.Time) (map[model.TalentID]bool, error)
}
