package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_OverlappingSegmentsCollapse(t *testing.T) {
	// Watched (0,10), then (20,30), then (9,21) bridging the gap.
	var set []Interval
	set = Merge(set, Interval{Start: 0, End: 10})
	set = Merge(set, Interval{Start: 20, End: 30})
	set = Merge(set, Interval{Start: 9, End: 21})

	require.Len(t, set, 1)
	assert.Equal(t, Interval{Start: 0, End: 31}, set[0])
	assert.InDelta(t, 31.0, Coverage(set, 100), 1e-9)
}

func TestMerge_DisjointSegmentsStaySeparate(t *testing.T) {
	var set []Interval
	set = Merge(set, Interval{Start: 5, End: 10})
	set = Merge(set, Interval{Start: 40, End: 45})

	require.Len(t, set, 2)
	assert.Equal(t, Interval{Start: 5, End: 10}, set[0])
	assert.Equal(t, Interval{Start: 40, End: 45}, set[1])
	assert.InDelta(t, 20.0, Coverage(set, 50), 1e-9)
}

func TestMerge_ExactTouchCollapses(t *testing.T) {
	set := Merge(nil, Interval{Start: 0, End: 10})
	set = Merge(set, Interval{Start: 10, End: 20})

	require.Len(t, set, 1)
	assert.Equal(t, Interval{Start: 0, End: 20}, set[0])
}

func TestMerge_RejectsDegenerateIntervals(t *testing.T) {
	set := Merge(nil, Interval{Start: 5, End: 10})

	assert.Len(t, Merge(set, Interval{Start: 12.3, End: 12.3}), 1)
	assert.Len(t, Merge(set, Interval{Start: 9, End: 3}), 1)
	assert.Nil(t, Merge(nil, Interval{}))
}

func TestMerge_RoundsOutward(t *testing.T) {
	set := Merge(nil, Interval{Start: 4.7, End: 9.2})

	require.Len(t, set, 1)
	assert.Equal(t, Interval{Start: 4, End: 10}, set[0])

	// Sub-second jitter between back-to-back segments must not leave
	// a hairline gap.
	set = Merge(set, Interval{Start: 10.1, End: 15.0})
	require.Len(t, set, 1)
	assert.Equal(t, Interval{Start: 4, End: 15}, set[0])
}

func TestMerge_Idempotent(t *testing.T) {
	set := Merge(nil, Interval{Start: 0, End: 30})
	covered := Interval{Start: 5, End: 25}

	once := Merge(set, covered)
	twice := Merge(once, covered)

	assert.Equal(t, once, twice)
}

func TestMerge_OrderIndependent(t *testing.T) {
	segments := []Interval{
		{Start: 0, End: 10},
		{Start: 20, End: 30},
		{Start: 9, End: 21},
		{Start: 50, End: 60},
		{Start: 55, End: 58},
	}

	permutations := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}

	var want []Interval
	for i, perm := range permutations {
		var set []Interval
		for _, idx := range perm {
			set = Merge(set, segments[idx])
		}
		if i == 0 {
			want = set
			continue
		}
		assert.Equal(t, want, set, "permutation %v", perm)
	}
}

func TestNormalize_NormalFormInvariant(t *testing.T) {
	messy := []Interval{
		{Start: 40, End: 45},
		{Start: 0, End: 3},
		{Start: 2, End: 8},
		{Start: 8, End: 12},
		{Start: 60, End: 61},
		{Start: 7, End: 7}, // degenerate, dropped
	}

	set := Normalize(messy)

	for i := 1; i < len(set); i++ {
		assert.Less(t, set[i-1].End, set[i].Start,
			"adjacent intervals must neither overlap nor touch")
	}
	for _, iv := range set {
		assert.True(t, iv.Valid())
	}
}

func TestCoverage_MonotonicAndClamped(t *testing.T) {
	duration := 100.0
	segments := []Interval{
		{Start: 0, End: 40},
		{Start: 30, End: 80},
		{Start: 70, End: 100},
		{Start: 0, End: 100},
	}

	var set []Interval
	prev := 0.0
	for _, seg := range segments {
		set = Merge(set, seg)
		cov := Coverage(set, duration)
		assert.GreaterOrEqual(t, cov, prev, "coverage must not decrease")
		assert.LessOrEqual(t, cov, 100.0)
		prev = cov
	}
	assert.InDelta(t, 100.0, prev, 1e-9)
}

func TestCoverage_ClampsOverflow(t *testing.T) {
	// Outward rounding can push the covered total past the duration.
	set := Merge(nil, Interval{Start: 0, End: 99.5})
	assert.Equal(t, 100.0, Coverage(set, 99.5))
}

func TestCoverage_UnknownDurationIsZero(t *testing.T) {
	set := Merge(nil, Interval{Start: 10, End: 50})

	cov := Coverage(set, 0)
	assert.Equal(t, 0.0, cov)
	assert.False(t, math.IsNaN(cov))
	assert.Equal(t, 0.0, Coverage(set, -1))
}

func TestTotalWatched(t *testing.T) {
	set := []Interval{{Start: 0, End: 10}, {Start: 20, End: 25}}
	assert.InDelta(t, 15.0, TotalWatched(set), 1e-9)
	assert.Equal(t, 0.0, TotalWatched(nil))
}
