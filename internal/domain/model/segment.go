package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Gender of a target segment.
type Gender string

// Segment genders.
const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// Segment is a gender by age-band audience bucket.
type Segment struct {
	ID     int
	Key    string
	Gender Gender
	AgeMin int
	AgeMax int // 0 means open ended
}

// Label renders the segment the way campaign briefs name it, e.g. "female 20-34".
func (s Segment) Label() string {
	if s.AgeMax == 0 {
		return fmt.Sprintf("%s %d+", s.Gender, s.AgeMin)
	}
	return fmt.Sprintf("%s %d-%d", s.Gender, s.AgeMin, s.AgeMax)
}

// Segments is the fixed enumeration of target segments.
var Segments = []Segment{
	{ID: 1, Key: "F1", Gender: GenderFemale, AgeMin: 13, AgeMax: 19},
	{ID: 2, Key: "F2", Gender: GenderFemale, AgeMin: 20, AgeMax: 34},
	{ID: 3, Key: "F3", Gender: GenderFemale, AgeMin: 35, AgeMax: 49},
	{ID: 4, Key: "F4", Gender: GenderFemale, AgeMin: 50},
	{ID: 5, Key: "M1", Gender: GenderMale, AgeMin: 13, AgeMax: 19},
	{ID: 6, Key: "M2", Gender: GenderMale, AgeMin: 20, AgeMax: 34},
	{ID: 7, Key: "M3", Gender: GenderMale, AgeMin: 35, AgeMax: 49},
	{ID: 8, Key: "M4", Gender: GenderMale, AgeMin: 50},
}

// LookupSegment resolves a segment by key ("F2"), label ("female 20-34") or
// numeric id ("2").
func LookupSegment(ref string) (Segment, bool) {
	ref = strings.TrimSpace(ref)
	for _, s := range Segments {
		if strings.EqualFold(s.Key, ref) || strings.EqualFold(s.Label(), ref) || fmt.Sprint(s.ID) == ref {
			return s, true
		}
	}
	return Segment{}, false
}

// Industry is an advertiser category with a single required image trait.
type Industry struct {
	ID            int64
	Name          string
	RequiredTrait Trait
	Regulated     bool // e.g. alcohol: talents must meet the regulated minimum age
}

// BudgetBand is a named contract-fee range. Only Upper takes part in
// filtering; Lower is informational.
type BudgetBand struct {
	Name  string
	Lower decimal.NullDecimal
	Upper decimal.NullDecimal // NULL means unbounded
}
