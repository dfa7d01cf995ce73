package scoring

import (
	"time"

	"github.com/okian/talentmatch/internal/domain/model"
)

// DefaultMinRegulatedAge is the minimum talent age for regulated industries.
const DefaultMinRegulatedAge = 25

// Option applies a configuration option to the ImageScorer.
type Option func(*ImageScorer)

// WithMinRegulatedAge overrides the regulated-industry age gate.
func WithMinRegulatedAge(age int) Option {
	return func(s *ImageScorer) {
		if age > 0 {
			s.minRegulatedAge = age
		}
	}
}

// WithAdjustmentTable replaces the tier table. Invalid tables are ignored.
func WithAdjustmentTable(table AdjustmentTable) Option {
	return func(s *ImageScorer) {
		if table.Validate() == nil {
			s.table = append(AdjustmentTable(nil), table...)
		}
	}
}

// ImageScorer computes the industry-fit adjustment of each candidate from its
// percentile standing on the industry's required trait.
type ImageScorer struct {
	minRegulatedAge int
	table           AdjustmentTable
}

// NewImageScorer creates a scorer with the default table and age gate.
func NewImageScorer(opts ...Option) *ImageScorer {
	s := &ImageScorer{
		minRegulatedAge: DefaultMinRegulatedAge,
		table:           DefaultTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImageResult is the outcome of image scoring over one candidate pool.
type ImageResult struct {
	Trait        model.Trait
	Eligible     []model.TalentID // post-gate pool, input order
	Gated        int              // candidates removed by the age gate
	Standings    map[model.TalentID]float64
	Adjustments  map[model.TalentID]float64
	Distribution Distribution
	Degenerate   bool
}

// MinRegulatedAge returns the configured age gate.
func (s *ImageScorer) MinRegulatedAge() int { return s.minRegulatedAge }

// Table returns a copy of the tier table in use.
func (s *ImageScorer) Table() AdjustmentTable {
	return append(AdjustmentTable(nil), s.table...)
}

// PassesGate reports whether a talent may be ranked for industry on asOf.
// A talent whose age cannot be established fails a regulated gate.
func (s *ImageScorer) PassesGate(t model.Talent, industry model.Industry, asOf time.Time) bool {
	if !industry.Regulated {
		return true
	}
	age, ok := t.AgeAt(asOf)
	return ok && age >= s.minRegulatedAge
}

// Score gates the pool for regulated industries, builds the trait
// distribution over every remaining candidate (zeros included) and maps each
// standing to points.
func (s *ImageScorer) Score(pool []model.Talent, traits map[model.TalentID]model.TraitScores, industry model.Industry, asOf time.Time) ImageResult {
	res := ImageResult{
		Trait:       industry.RequiredTrait,
		Eligible:    make([]model.TalentID, 0, len(pool)),
		Standings:   make(map[model.TalentID]float64, len(pool)),
		Adjustments: make(map[model.TalentID]float64, len(pool)),
	}

	values := make([]float64, 0, len(pool))
	for _, t := range pool {
		if !s.PassesGate(t, industry, asOf) {
			res.Gated++
			continue
		}
		res.Eligible = append(res.Eligible, t.ID)
		values = append(values, traits[t.ID].Score(industry.RequiredTrait))
	}

	res.Distribution = NewDistribution(values)
	res.Degenerate = res.Distribution.Degenerate()

	for i, id := range res.Eligible {
		standing := res.Distribution.Standing(values[i])
		res.Standings[id] = standing
		res.Adjustments[id] = s.points(res, standing)
	}
	return res
}

// AdjustmentFor scores a value that is not part of the pool against the
// pool's distribution.
func (s *ImageScorer) AdjustmentFor(res ImageResult, value float64) float64 {
	return s.points(res, res.Distribution.Standing(value))
}

func (s *ImageScorer) points(res ImageResult, standing float64) float64 {
	if res.Degenerate {
		return 0
	}
	return s.table.Points(standing)
}
