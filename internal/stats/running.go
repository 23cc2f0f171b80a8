// Package stats maintains online summary statistics for measurement
// streams. Values are folded in one at a time with Welford's algorithm,
// so long captures cost constant memory and never lose precision to a
// naive sum-of-squares.
package stats

import "math"

// Summary is a point-in-time view of an accumulator. When Count is zero
// the numeric fields are zero and carry no meaning.
type Summary struct {
	Count    uint64  `json:"count"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"stddev"`
}

// Running accumulates count, min, max, mean, and M2 online. Not safe for
// concurrent use; Board adds the locking.
type Running struct {
	count uint64
	min   float64
	max   float64
	mean  float64
	m2    float64
}

// NewRunning returns an empty accumulator.
func NewRunning() *Running {
	r := &Running{}
	r.Reset()
	return r
}

// Add folds one observation in. NaN and infinities are ignored so a bad
// sample can never poison the aggregates.
func (r *Running) Add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	r.count++
	if v < r.min {
		r.min = v
	}
	if v > r.max {
		r.max = v
	}
	delta := v - r.mean
	r.mean += delta / float64(r.count)
	r.m2 += delta * (v - r.mean)
}

// Snapshot returns the current summary. Variance is the population
// variance M2/count.
func (r *Running) Snapshot() Summary {
	if r.count == 0 {
		return Summary{}
	}
	variance := r.m2 / float64(r.count)
	return Summary{
		Count:    r.count,
		Min:      r.min,
		Max:      r.max,
		Mean:     r.mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
	}
}

// Count returns the number of observations folded in so far.
func (r *Running) Count() uint64 {
	return r.count
}

// Reset restores the accumulator to empty. Min and max start at the
// identity values so the first observation sets both.
func (r *Running) Reset() {
	r.count = 0
	r.min = math.Inf(1)
	r.max = math.Inf(-1)
	r.mean = 0
	r.m2 = 0
}
