// Package budget implements the contract-fee admission rule applied before
// any scoring takes place.
package budget

import "github.com/okian/talentmatch/internal/domain/model"

// Admits reports whether a talent fits under the band's ceiling.
// An unknown fee and an unbounded band both admit; the band's lower bound
// is never consulted.
func Admits(t model.Talent, band model.BudgetBand) bool {
	if !t.FeeCeiling.Valid || !band.Upper.Valid {
		return true
	}
	return t.FeeCeiling.Decimal.LessThanOrEqual(band.Upper.Decimal)
}

// Filter returns the candidates admitted by band, preserving input order,
// and the number rejected.
func Filter(candidates []model.Talent, band model.BudgetBand) ([]model.Talent, int) {
	out := make([]model.Talent, 0, len(candidates))
	for _, c := range candidates {
		if Admits(c, band) {
			out = append(out, c)
		}
	}
	return out, len(candidates) - len(out)
}
