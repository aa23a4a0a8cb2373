package domain

import (
	"math"
	"slices"
)

// Interval is a single contiguous watched span on the media timeline,
// in seconds. Start is always strictly less than End; zero-length
// intervals are invalid and never stored.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Valid reports whether the interval has positive length.
func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// Length returns the covered span in seconds.
func (iv Interval) Length() float64 {
	return iv.End - iv.Start
}

// roundOut widens the interval to whole seconds: start floored, end
// ceiled. Sub-second float jitter from player tick timestamps would
// otherwise leave hairline gaps between spans that a viewer watched
// back to back, so adjacency is treated generously.
func (iv Interval) roundOut() Interval {
	return Interval{
		Start: math.Floor(iv.Start),
		End:   math.Ceil(iv.End),
	}
}

// Merge incorporates a newly closed segment into the interval set and
// returns the set in normal form. Invalid (zero or negative length)
// segments are dropped and the input set is returned unchanged. The
// new interval is rounded outward before merging.
//
// The returned slice is freshly allocated; the input is not mutated.
func Merge(set []Interval, iv Interval) []Interval {
	if !iv.Valid() {
		return set
	}

	merged := make([]Interval, 0, len(set)+1)
	merged = append(merged, set...)
	merged = append(merged, iv.roundOut())
	return Normalize(merged)
}

// Normalize sorts intervals ascending by start (ties broken by end)
// and collapses overlapping or exactly touching neighbours in a single
// left-to-right sweep. Invalid intervals are discarded.
//
// The result is in normal form: sorted by start and pairwise
// non-overlapping, with cur.End < next.Start for every adjacent pair.
func Normalize(set []Interval) []Interval {
	valid := make([]Interval, 0, len(set))
	for _, iv := range set {
		if iv.Valid() {
			valid = append(valid, iv)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	slices.SortFunc(valid, func(a, b Interval) int {
		if a.Start != b.Start {
			if a.Start < b.Start {
				return -1
			}
			return 1
		}
		switch {
		case a.End < b.End:
			return -1
		case a.End > b.End:
			return 1
		default:
			return 0
		}
	})

	out := make([]Interval, 0, len(valid))
	cur := valid[0]
	for _, iv := range valid[1:] {
		if iv.Start <= cur.End {
			// Overlap or exact touch - extend the accumulator.
			cur.End = math.Max(cur.End, iv.End)
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	return append(out, cur)
}

// TotalWatched sums the unique covered seconds of a normalized set.
func TotalWatched(set []Interval) float64 {
	var total float64
	for _, iv := range set {
		total += iv.Length()
	}
	return total
}

// Coverage returns the percentage of duration covered by the set,
// clamped to [0, 100]. While the media duration is unknown (zero or
// negative) coverage is defined as 0 - not an error and never NaN.
func Coverage(set []Interval, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	pct := 100 * TotalWatched(set) / duration
	return math.Min(100, pct)
}
