package repository_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/talentmatch/internal/adapters/repository"
	"github.com/okian/talentmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var asOf = time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)

func loadStore() *repository.MemoryStore {
	s, err := repository.LoadFixture("testdata/campaign.yaml")
	if err != nil {
		panic(err)
	}
	return s
}

func TestLoadFixture(t *testing.T) {
	Convey("Given the campaign fixture", t, func() {
		store := loadStore()
		ctx := context.Background()
		f2, _ := model.LookupSegment("F2")

		Convey("Only active talents are candidates, in file order", func() {
			got, err := store.FetchCandidates(ctx, f2, model.Industry{})
			So(err, ShouldBeNil)
			ids := make([]model.TalentID, len(got))
			for i, t := range got {
				ids[i] = t.ID
			}
			So(ids, ShouldResemble, []model.TalentID{1, 2, 3, 4})
		})

		Convey("Talent fields are decoded", func() {
			got, err := store.FetchTalents(ctx, []model.TalentID{2, 3, 5, 404})
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 3)
			So(got[2].NormalizedName, ShouldEqual, "ren kato")
			So(got[2].FeeCeiling.Valid, ShouldBeTrue)
			So(got[2].FeeCeiling.Decimal.IntPart(), ShouldEqual, 45000000)
			So(got[3].FeeCeiling.Valid, ShouldBeFalse)
			So(got[3].BirthDate, ShouldNotBeNil)
			So(got[5].Active, ShouldBeFalse)
		})

		Convey("Segment scores keep missing metrics as nil", func() {
			got, err := store.FetchSegmentScores(ctx, f2.ID, []model.TalentID{1, 2, 3, 4})
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 3)
			So(*got[1].Popularity, ShouldEqual, 80)
			So(got[2].Strength, ShouldBeNil)
			So(got[3].Popularity, ShouldBeNil)
		})

		Convey("Trait scores are scoped to the segment", func() {
			got, err := store.FetchImageTraitScores(ctx, f2.ID, []model.TalentID{1, 3})
			So(err, ShouldBeNil)
			So(got[3].Score(model.TraitCute), ShouldEqual, 80)
			So(got[1].Score(model.TraitCute), ShouldEqual, 0)

			other, err := store.FetchImageTraitScores(ctx, 7, []model.TalentID{1, 3})
			So(err, ShouldBeNil)
			So(other, ShouldBeEmpty)
		})

		Convey("Reference lookups match names case-insensitively", func() {
			ind, err := store.FetchIndustry(ctx, "Beer")
			So(err, ShouldBeNil)
			So(ind.Regulated, ShouldBeTrue)
			So(ind.RequiredTrait, ShouldEqual, model.TraitCool)

			band, err := store.FetchBudgetBand(ctx, "UP TO 30M")
			So(err, ShouldBeNil)
			So(band.Upper.Decimal.IntPart(), ShouldEqual, 30000000)

			open, err := store.FetchBudgetBand(ctx, "over 30M")
			So(err, ShouldBeNil)
			So(open.Upper.Valid, ShouldBeFalse)
		})

		Convey("Unknown references return sentinel errors", func() {
			_, err := store.FetchIndustry(ctx, "tobacco")
			So(errors.Is(err, repository.ErrUnknownIndustry), ShouldBeTrue)
			_, err = store.FetchBudgetBand(ctx, "free")
			So(errors.Is(err, repository.ErrUnknownBudgetBand), ShouldBeTrue)
		})

		Convey("Curated slots keep curator order", func() {
			ids, err := store.FetchRecommendedSlots(ctx, 1)
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []model.TalentID{4})
			none, err := store.FetchRecommendedSlots(ctx, 2)
			So(err, ShouldBeNil)
			So(none, ShouldBeEmpty)
		})

		Convey("Competing CM status honours category and end date", func() {
			got, err := store.FetchCompetitiveCmStatus(ctx, []model.TalentID{1, 2, 3, 4}, 1, asOf)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, map[model.TalentID]bool{1: false, 2: true, 3: false, 4: false})

			later, err := store.FetchCompetitiveCmStatus(ctx, []model.TalentID{2}, 1, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
			So(err, ShouldBeNil)
			So(later[2], ShouldBeFalse)
		})

		Convey("Stats summarize the dataset", func() {
			stats := store.Stats()
			So(stats["talents"], ShouldEqual, 5)
			So(stats["activeTalents"], ShouldEqual, 4)
			So(stats["industries"], ShouldResemble, []string{"beer", "snacks"})
		})

		Convey("A cancelled context is reported", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := store.FetchCandidates(cctx, f2, model.Industry{})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestParseFixture_Invalid(t *testing.T) {
	Convey("Given malformed fixtures", t, func() {
		for _, doc := range []string{
			"talents: [{id: 1, name: x, fee_ceiling: lots}]",
			"talents: [{id: 1, name: x, birth_date: yesterday}]",
			"trait_scores: [{segment: F2, talent_id: 1, scores: {sporty: 3}}]",
			"segment_scores: [{segment: X9, talent_id: 1}]",
			"industries: [{id: 1, name: beer, required_trait: loud}]",
			"unknown_section: []",
		} {
			_, err := repository.ParseFixture(strings.NewReader(doc))
			So(errors.Is(err, repository.ErrInvalidFixture), ShouldBeTrue)
		}
	})

	Convey("Given an empty document", t, func() {
		ds, err := repository.ParseFixture(strings.NewReader(""))
		So(err, ShouldBeNil)
		So(ds.Talents, ShouldBeEmpty)
	})

	Convey("Given a missing file", t, func() {
		_, err := repository.LoadFixture("testdata/missing.yaml")
		So(err, ShouldNotBeNil)
	})
}
