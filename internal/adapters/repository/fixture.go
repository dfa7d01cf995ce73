package repository

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/okian/talentmatch/internal/domain/model"
)

const dateLayout = "2006-01-02"

type fixtureFile struct {
	Talents       []fixtureTalent       `yaml:"talents"`
	SegmentScores []fixtureSegmentScore `yaml:"segment_scores"`
	TraitScores   []fixtureTraitScore   `yaml:"trait_scores"`
	Industries    []fixtureIndustry     `yaml:"industries"`
	BudgetBands   []fixtureBand         `yaml:"budget_bands"`
	Contracts     []fixtureContract     `yaml:"contracts"`
}

type fixtureTalent struct {
	ID         int64   `yaml:"id"`
	Name       string  `yaml:"name"`
	Genre      string  `yaml:"genre"`
	Active     *bool   `yaml:"active"` // default true
	FeeCeiling *string `yaml:"fee_ceiling"`
	BirthDate  string  `yaml:"birth_date"`
}

type fixtureSegmentScore struct {
	Segment    string   `yaml:"segment"`
	TalentID   int64    `yaml:"talent_id"`
	Popularity *float64 `yaml:"popularity"`
	Strength   *float64 `yaml:"strength"`
}

type fixtureTraitScore struct {
	Segment  string             `yaml:"segment"`
	TalentID int64              `yaml:"talent_id"`
	Scores   map[string]float64 `yaml:"scores"`
}

type fixtureIndustry struct {
	ID            int64    `yaml:"id"`
	Name          string   `yaml:"name"`
	RequiredTrait string   `yaml:"required_trait"`
	Regulated     bool     `yaml:"regulated"`
	Competing     []string `yaml:"competing_categories"`
	Recommended   []int64  `yaml:"recommended"`
}

type fixtureBand struct {
	Name  string  `yaml:"name"`
	Lower *string `yaml:"lower"`
	Upper *string `yaml:"upper"`
}

type fixtureContract struct {
	TalentID int64  `yaml:"talent_id"`
	Category string `yaml:"category"`
	EndDate  string `yaml:"end_date"`
}

// LoadFixture reads a YAML dataset file into a MemoryStore.
func LoadFixture(path string) (*MemoryStore, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	ds, err := ParseFixture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewMemoryStore(ds), nil
}

// ParseFixture decodes a YAML dataset.
func ParseFixture(r io.Reader) (Dataset, error) {
	var ff fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ff); err != nil && err != io.EOF {
		return Dataset{}, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	ds := Dataset{
		SegmentScores: map[int]map[model.TalentID]model.SegmentScore{},
		TraitScores:   map[int]map[model.TalentID]model.TraitScores{},
		Recommended:   map[int64][]model.TalentID{},
		Competing:     map[int64][]string{},
	}

	for _, t := range ff.Talents {
		talent, err := t.toModel()
		if err != nil {
			return Dataset{}, err
		}
		ds.Talents = append(ds.Talents, talent)
	}

	for _, row := range ff.SegmentScores {
		seg, ok := model.LookupSegment(row.Segment)
		if !ok {
			return Dataset{}, fmt.Errorf("%w: talent %d: unknown segment %q", ErrInvalidFixture, row.TalentID, row.Segment)
		}
		if ds.SegmentScores[seg.ID] == nil {
			ds.SegmentScores[seg.ID] = map[model.TalentID]model.SegmentScore{}
		}
		ds.SegmentScores[seg.ID][model.TalentID(row.TalentID)] = model.SegmentScore{
			Popularity: row.Popularity,
			Strength:   row.Strength,
		}
	}

	for _, row := range ff.TraitScores {
		seg, ok := model.LookupSegment(row.Segment)
		if !ok {
			return Dataset{}, fmt.Errorf("%w: talent %d: unknown segment %q", ErrInvalidFixture, row.TalentID, row.Segment)
		}
		scores := make(model.TraitScores, len(row.Scores))
		for name, v := range row.Scores {
			tr, err := model.ParseTrait(name)
			if err != nil {
				return Dataset{}, fmt.Errorf("%w: talent %d: %v", ErrInvalidFixture, row.TalentID, err)
			}
			scores[tr] = v
		}
		if ds.TraitScores[seg.ID] == nil {
			ds.TraitScores[seg.ID] = map[model.TalentID]model.TraitScores{}
		}
		ds.TraitScores[seg.ID][model.TalentID(row.TalentID)] = scores
	}

	for _, ind := range ff.Industries {
		tr, err := model.ParseTrait(ind.RequiredTrait)
		if err != nil {
			return Dataset{}, fmt.Errorf("%w: industry %q: %v", ErrInvalidFixture, ind.Name, err)
		}
		ds.Industries = append(ds.Industries, model.Industry{
			ID:            ind.ID,
			Name:          ind.Name,
			RequiredTrait: tr,
			Regulated:     ind.Regulated,
		})
		ds.Competing[ind.ID] = ind.Competing
		for _, id := range ind.Recommended {
			ds.Recommended[ind.ID] = append(ds.Recommended[ind.ID], model.TalentID(id))
		}
	}

	for _, b := range ff.BudgetBands {
		lower, err := nullDecimal(b.Lower)
		if err != nil {
			return Dataset{}, fmt.Errorf("%w: band %q lower: %v", ErrInvalidFixture, b.Name, err)
		}
		upper, err := nullDecimal(b.Upper)
		if err != nil {
			return Dataset{}, fmt.Errorf("%w: band %q upper: %v", ErrInvalidFixture, b.Name, err)
		}
		ds.BudgetBands = append(ds.BudgetBands, model.BudgetBand{Name: b.Name, Lower: lower, Upper: upper})
	}

	for _, c := range ff.Contracts {
		end, err := time.Parse(dateLayout, c.EndDate)
		if err != nil {
			return Dataset{}, fmt.Errorf("%w: contract of talent %d: %v", ErrInvalidFixture, c.TalentID, err)
		}
		ds.Contracts = append(ds.Contracts, model.CmContract{
			TalentID: model.TalentID(c.TalentID),
			Category: c.Category,
			EndDate:  end,
		})
	}
	return ds, nil
}

func (t fixtureTalent) toModel() (model.Talent, error) {
	out := model.Talent{
		ID:             model.TalentID(t.ID),
		Name:           t.Name,
		NormalizedName: model.NormalizeName(t.Name),
		Genre:          t.Genre,
		Active:         t.Active == nil || *t.Active,
	}
	fee, err := nullDecimal(t.FeeCeiling)
	if err != nil {
		return model.Talent{}, fmt.Errorf("%w: talent %d fee_ceiling: %v", ErrInvalidFixture, t.ID, err)
	}
	out.FeeCeiling = fee
	if t.BirthDate != "" {
		b, err := time.Parse(dateLayout, t.BirthDate)
		if err != nil {
			return model.Talent{}, fmt.Errorf("%w: talent %d birth_date: %v", ErrInvalidFixture, t.ID, err)
		}
		out.BirthDate = &b
	}
	return out, nil
}

func nullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil || *s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
