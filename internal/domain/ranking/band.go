package ranking

import "math"

// Band is a closed matching-score interval for a range of ranks.
type Band struct {
	FirstRank int
	LastRank  int
	Min       float64
	Max       float64
}

// Bands lists the rank buckets in rank order.
var Bands = []Band{
	{FirstRank: 1, LastRank: 3, Min: 97.0, Max: 99.7},
	{FirstRank: 4, LastRank: 10, Min: 93.0, Max: 96.9},
	{FirstRank: 11, LastRank: 20, Min: 89.0, Max: 92.9},
	{FirstRank: 21, LastRank: 30, Min: 86.0, Max: 88.9},
}

// BandFor returns the bucket for rank.
func BandFor(rank int) (Band, bool) {
	for _, b := range Bands {
		if rank >= b.FirstRank && rank <= b.LastRank {
			return b, true
		}
	}
	return Band{}, false
}

// Rand is the random source used to place a score inside its bucket.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// BandMapper turns ranks into matching scores.
type BandMapper struct {
	rng Rand
}

// NewBandMapper creates a mapper drawing from rng.
func NewBandMapper(rng Rand) *BandMapper {
	return &BandMapper{rng: rng}
}

// Score draws a one-decimal score uniformly from the bucket of rank. Ranks
// past the last bucket use the last bucket.
func (m *BandMapper) Score(rank int) float64 {
	b, ok := BandFor(rank)
	if !ok {
		b = Bands[len(Bands)-1]
		if rank < 1 {
			b = Bands[0]
		}
	}
	lo := int(math.Round(b.Min * 10))
	hi := int(math.Round(b.Max * 10))
	return float64(lo+m.rng.Intn(hi-lo+1)) / 10
}

// Apply sets MatchingScore on every entry from its Rank.
func (m *BandMapper) Apply(entries []Entry) {
	for i := range entries {
		entries[i].MatchingScore = m.Score(entries[i].Rank)
	}
}
