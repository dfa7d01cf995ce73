package model

import "fmt"

// Trait is one of the fixed image attributes used for industry fit.
type Trait string

// The seven image traits.
const (
	TraitFunny       Trait = "funny"
	TraitClean       Trait = "clean"
	TraitDistinctive Trait = "distinctive"
	TraitTrustworthy Trait = "trustworthy"
	TraitCute        Trait = "cute"
	TraitCool        Trait = "cool"
	TraitMature      Trait = "mature"
)

// Traits lists every trait in a stable order.
var Traits = []Trait{
	TraitFunny, TraitClean, TraitDistinctive, TraitTrustworthy,
	TraitCute, TraitCool, TraitMature,
}

// ParseTrait validates a trait name.
func ParseTrait(s string) (Trait, error) {
	for _, t := range Traits {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown trait %q", s)
}

// TraitScores maps each trait to its score for one talent in one segment.
type TraitScores map[Trait]float64

// Score returns the trait value, treating a missing entry as zero.
func (ts TraitScores) Score(t Trait) float64 {
	if ts == nil {
		return 0
	}
	return ts[t]
}
