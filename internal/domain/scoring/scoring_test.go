package scoring_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/talentmatch/internal/domain/model"
	"github.com/okian/talentmatch/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func born(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

var asOf = time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)

func TestBasePower(t *testing.T) {
	Convey("Given segment scores", t, func() {
		Convey("Both metrics are averaged", func() {
			So(scoring.BasePower(model.SegmentScore{Popularity: f(80), Strength: f(60)}), ShouldEqual, 70)
		})
		Convey("A missing metric reads as zero", func() {
			So(scoring.BasePower(model.SegmentScore{Popularity: f(80)}), ShouldEqual, 40)
			So(scoring.BasePower(model.SegmentScore{Strength: f(50)}), ShouldEqual, 25)
			So(scoring.BasePower(model.SegmentScore{}), ShouldEqual, 0)
		})
		Convey("Ids without a row are kept at zero", func() {
			got := scoring.BasePowers([]model.TalentID{1, 2}, map[model.TalentID]model.SegmentScore{
				1: {Popularity: f(10), Strength: f(20)},
			})
			So(got, ShouldHaveLength, 2)
			So(got[1], ShouldEqual, 15)
			So(got[2], ShouldEqual, 0)
		})
	})
}

func TestAdjustmentTable(t *testing.T) {
	Convey("Given the default table", t, func() {
		table := scoring.DefaultTable()
		So(table.Validate(), ShouldBeNil)

		Convey("Boundaries are inclusive", func() {
			So(table.Points(0), ShouldEqual, 10)
			So(table.Points(0.15), ShouldEqual, 10)
			So(table.Points(0.16), ShouldEqual, 5)
			So(table.Points(0.30), ShouldEqual, 5)
			So(table.Points(0.5), ShouldEqual, 0)
			So(table.Points(0.80), ShouldEqual, 0)
			So(table.Points(0.81), ShouldEqual, -5)
			So(table.Points(1), ShouldEqual, -5)
		})
	})

	Convey("Given malformed tables", t, func() {
		So(errors.Is(scoring.AdjustmentTable{}.Validate(), scoring.ErrInvalidTable), ShouldBeTrue)
		So(errors.Is(scoring.AdjustmentTable{{MaxStanding: 0.5, Points: 1}, {MaxStanding: 0.4, Points: 0}}.Validate(), scoring.ErrInvalidTable), ShouldBeTrue)
		So(errors.Is(scoring.AdjustmentTable{{MaxStanding: 0.5, Points: 1}}.Validate(), scoring.ErrInvalidTable), ShouldBeTrue)
		So(errors.Is(scoring.AdjustmentTable{{MaxStanding: 0, Points: 1}, {MaxStanding: 1, Points: 0}}.Validate(), scoring.ErrInvalidTable), ShouldBeTrue)
	})
}

func TestDistribution(t *testing.T) {
	Convey("Given a pool of five values", t, func() {
		d := scoring.NewDistribution([]float64{10, 50, 30, 50, 0})

		Convey("Standing is the position over N-1, ties taking the last slot", func() {
			So(d.Standing(50), ShouldEqual, 0.25)
			So(d.Standing(30), ShouldEqual, 0.5)
			So(d.Standing(10), ShouldEqual, 0.75)
			So(d.Standing(0), ShouldEqual, 1)
		})
		Convey("Values outside the pool are clamped", func() {
			So(d.Standing(99), ShouldEqual, 0)
			So(d.Standing(-1), ShouldEqual, 1)
		})
		Convey("It is not degenerate", func() {
			So(d.Degenerate(), ShouldBeFalse)
		})
	})

	Convey("Given a pool where most values are zero", t, func() {
		values := make([]float64, 100)
		for i := 0; i < 5; i++ {
			values[i] = float64(90 - i)
		}
		d := scoring.NewDistribution(values)

		Convey("The zero block stands at the bottom", func() {
			So(d.Standing(0), ShouldEqual, 1)
			So(d.Standing(90), ShouldEqual, 0)
			So(d.Standing(86), ShouldAlmostEqual, 4.0/99, 1e-12)
			So(d.Degenerate(), ShouldBeFalse)
		})
	})

	Convey("Given tiny or flat pools", t, func() {
		So(scoring.NewDistribution(nil).Standing(5), ShouldEqual, 0)
		So(scoring.NewDistribution([]float64{3}).Standing(3), ShouldEqual, 0)
		So(scoring.NewDistribution([]float64{3}).Degenerate(), ShouldBeFalse)
		So(scoring.NewDistribution([]float64{4, 4, 4}).Degenerate(), ShouldBeTrue)
	})
}

func TestImageScorer(t *testing.T) {
	beer := model.Industry{ID: 1, Name: "beer", RequiredTrait: model.TraitCool, Regulated: true}
	snacks := model.Industry{ID: 2, Name: "snacks", RequiredTrait: model.TraitFunny}

	pool := []model.Talent{
		{ID: 1, Name: "adult", BirthDate: born(1990, time.March, 1)},
		{ID: 2, Name: "young", BirthDate: born(2005, time.May, 5)},
		{ID: 3, Name: "unknown"},
		{ID: 4, Name: "exactly 25", BirthDate: born(2001, time.October, 15)},
		{ID: 5, Name: "adult 2", BirthDate: born(1980, time.January, 1)},
	}
	traits := map[model.TalentID]model.TraitScores{
		1: {model.TraitCool: 90, model.TraitFunny: 10},
		2: {model.TraitCool: 99, model.TraitFunny: 80},
		3: {model.TraitCool: 95},
		4: {model.TraitCool: 40},
	}

	Convey("Given a regulated industry", t, func() {
		s := scoring.NewImageScorer()
		res := s.Score(pool, traits, beer, asOf)

		Convey("Under-age and unknown-age talents are gated out", func() {
			So(res.Eligible, ShouldResemble, []model.TalentID{1, 4, 5})
			So(res.Gated, ShouldEqual, 2)
			So(res.Trait, ShouldEqual, model.TraitCool)
		})

		Convey("Standings use the gated pool with missing traits as zero", func() {
			So(res.Standings[1], ShouldEqual, 0)
			So(res.Standings[4], ShouldEqual, 0.5)
			So(res.Standings[5], ShouldEqual, 1)
			So(res.Adjustments[1], ShouldEqual, 10)
			So(res.Adjustments[4], ShouldEqual, 0)
			So(res.Adjustments[5], ShouldEqual, -5)
		})

		Convey("Outside values are projected onto the pool", func() {
			So(s.AdjustmentFor(res, 100), ShouldEqual, 10)
			So(s.AdjustmentFor(res, 50), ShouldEqual, 0)
			So(s.AdjustmentFor(res, 1), ShouldEqual, -5)
		})
	})

	Convey("Given an unregulated industry", t, func() {
		res := scoring.NewImageScorer().Score(pool, traits, snacks, asOf)
		So(res.Eligible, ShouldHaveLength, 5)
		So(res.Gated, ShouldEqual, 0)
		So(res.Adjustments[2], ShouldEqual, 10)
	})

	Convey("Given sparse trait data", t, func() {
		sparse := make([]model.Talent, 0, 100)
		sparseTraits := map[model.TalentID]model.TraitScores{}
		for i := 1; i <= 100; i++ {
			id := model.TalentID(i)
			sparse = append(sparse, model.Talent{ID: id, Name: "talent"})
			if i <= 5 {
				sparseTraits[id] = model.TraitScores{model.TraitFunny: float64(100 - i)}
			}
		}
		res := scoring.NewImageScorer().Score(sparse, sparseTraits, snacks, asOf)

		Convey("Talents without trait data get no bonus", func() {
			So(res.Degenerate, ShouldBeFalse)
			So(res.Adjustments[1], ShouldEqual, scoring.TopTierPoints)
			bonus := 0
			for i := 6; i <= 100; i++ {
				adj := res.Adjustments[model.TalentID(i)]
				So(adj, ShouldNotEqual, scoring.TopTierPoints)
				So(adj, ShouldBeLessThanOrEqualTo, 0)
				if adj > 0 {
					bonus++
				}
			}
			So(bonus, ShouldEqual, 0)
			So(res.Standings[100], ShouldEqual, 1)
		})
	})

	Convey("Given a flat distribution", t, func() {
		flat := map[model.TalentID]model.TraitScores{}
		s := scoring.NewImageScorer()
		res := s.Score(pool, flat, snacks, asOf)
		So(res.Degenerate, ShouldBeTrue)
		for _, id := range res.Eligible {
			So(res.Adjustments[id], ShouldEqual, 0)
		}
		So(s.AdjustmentFor(res, 100), ShouldEqual, 0)
	})

	Convey("Given custom options", t, func() {
		s := scoring.NewImageScorer(
			scoring.WithMinRegulatedAge(30),
			scoring.WithAdjustmentTable(scoring.AdjustmentTable{{MaxStanding: 0.5, Points: 3}, {MaxStanding: 1, Points: -3}}),
		)
		So(s.MinRegulatedAge(), ShouldEqual, 30)
		res := s.Score(pool, traits, beer, asOf)
		So(res.Eligible, ShouldResemble, []model.TalentID{1, 5})
		So(res.Adjustments[1], ShouldEqual, 3)
		So(res.Adjustments[5], ShouldEqual, -3)

		Convey("Invalid options keep the defaults", func() {
			d := scoring.NewImageScorer(scoring.WithMinRegulatedAge(0), scoring.WithAdjustmentTable(nil))
			So(d.MinRegulatedAge(), ShouldEqual, scoring.DefaultMinRegulatedAge)
			So(d.Table(), ShouldResemble, scoring.DefaultTable())
		})
	})
}
