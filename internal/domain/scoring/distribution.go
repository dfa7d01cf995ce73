package scoring

import (
	"math"
	"sort"
)

// Distribution is the descending list of trait values of a candidate pool.
type Distribution struct {
	values []float64
}

// NewDistribution copies values and sorts them descending. NaN is read as 0.
func NewDistribution(values []float64) Distribution {
	vs := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			v = 0
		}
		vs[i] = v
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(vs)))
	return Distribution{values: vs}
}

// Len returns the pool size.
func (d Distribution) Len() int { return len(d.values) }

// Standing returns the percentile rank of v over N-1. A value held by the
// pool takes the last position of its tie block, so a crowd of equal values
// (typically zeros for talents without trait data) sinks instead of sharing
// the top. A value outside the pool sits right after every greater value.
// A pool of one (or none) stands at 0; the result is clamped to [0, 1].
func (d Distribution) Standing(v float64) float64 {
	n := len(d.values)
	if n <= 1 {
		return 0
	}
	if math.IsNaN(v) {
		v = 0
	}
	greater := sort.Search(n, func(i int) bool { return d.values[i] <= v })
	notLess := sort.Search(n, func(i int) bool { return d.values[i] < v })
	pos := greater
	if notLess > greater {
		pos = notLess - 1
	}
	s := float64(pos) / float64(n-1)
	if s > 1 {
		return 1
	}
	return s
}

// Degenerate reports whether a pool of two or more holds a single value, in
// which case percentile standing carries no signal.
func (d Distribution) Degenerate() bool {
	n := len(d.values)
	return n > 1 && d.values[0] == d.values[n-1]
}
