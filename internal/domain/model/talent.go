// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TalentID identifies a talent row.
type TalentID int64

// Talent is a candidate performer as stored in the catalogue.
type Talent struct {
	ID             TalentID
	Name           string              // display name
	NormalizedName string              // lower-cased, whitespace-folded name used for matching
	Genre          string              // e.g. "actor", "athlete", "musician"
	Active         bool                // inactive talents are never candidates
	FeeCeiling     decimal.NullDecimal // NULL means unknown, never zero
	BirthDate      *time.Time          // nil when not on record
}

// AgeAt returns the talent's age in whole years on day asOf.
// ok is false when the birth date is unknown.
func (t Talent) AgeAt(asOf time.Time) (age int, ok bool) {
	if t.BirthDate == nil {
		return 0, false
	}
	b := t.BirthDate.UTC()
	a := asOf.UTC()
	age = a.Year() - b.Year()
	if a.Month() < b.Month() || (a.Month() == b.Month() && a.Day() < b.Day()) {
		age--
	}
	return age, true
}

// SegmentScore holds a talent's popularity metrics for one segment.
// Either metric may be missing.
type SegmentScore struct {
	Popularity *float64
	Strength   *float64
}

// CmContract is an advertising contract held by a talent.
type CmContract struct {
	TalentID TalentID
	Category string    // advertiser category tag, e.g. "beer"
	EndDate  time.Time // last day the contract is in force
}

// ActiveOn reports whether the contract is still in force on asOf.
func (c CmContract) ActiveOn(asOf time.Time) bool {
	return !DateOf(c.EndDate).Before(DateOf(asOf))
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeName lower-cases name and folds runs of whitespace to one space.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
