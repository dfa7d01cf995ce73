package scoring

import (
	"fmt"
)

// Tier maps percentile standings up to and including MaxStanding to a
// point adjustment. Standing 0 is the best position.
type Tier struct {
	MaxStanding float64 `koanf:"max_standing" yaml:"max_standing"`
	Points      float64 `koanf:"points" yaml:"points"`
}

// AdjustmentTable is an ordered list of tiers with ascending MaxStanding.
type AdjustmentTable []Tier

// Default tier boundaries and magnitudes.
const (
	TopTierMaxStanding    = 0.15
	TopTierPoints         = 10.0
	UpperTierMaxStanding  = 0.30
	UpperTierPoints       = 5.0
	MiddleTierMaxStanding = 0.80
	MiddleTierPoints      = 0.0
	BottomTierMaxStanding = 1.0
	BottomTierPoints      = -5.0
)

// DefaultTable returns the standard industry-fit adjustment table.
func DefaultTable() AdjustmentTable {
	return AdjustmentTable{
		{MaxStanding: TopTierMaxStanding, Points: TopTierPoints},
		{MaxStanding: UpperTierMaxStanding, Points: UpperTierPoints},
		{MaxStanding: MiddleTierMaxStanding, Points: MiddleTierPoints},
		{MaxStanding: BottomTierMaxStanding, Points: BottomTierPoints},
	}
}

// Validate checks that the tiers are strictly ascending within (0, 1] and
// that the last tier covers standing 1.
func (t AdjustmentTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	prev := 0.0
	for i, tier := range t {
		if tier.MaxStanding <= prev || tier.MaxStanding > 1 {
			return fmt.Errorf("%w: tier %d max_standing %v out of order", ErrInvalidTable, i, tier.MaxStanding)
		}
		prev = tier.MaxStanding
	}
	if prev != 1 {
		return fmt.Errorf("%w: last tier must end at 1, got %v", ErrInvalidTable, prev)
	}
	return nil
}

// Points returns the adjustment for a standing in [0, 1].
func (t AdjustmentTable) Points(standing float64) float64 {
	for _, tier := range t {
		if standing <= tier.MaxStanding {
			return tier.Points
		}
	}
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].Points
}
