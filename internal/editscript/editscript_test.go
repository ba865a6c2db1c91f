package editscript

import (
	"math/rand"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apply replays script against x, taking inserted elements from y.
func apply(t *testing.T, x, y []int, script []Change) []int {
	t.Helper()

	var out []int
	pos0, pos1 := 0, 0
	for _, ch := range script {
		require.GreaterOrEqual(t, ch.Line0, pos0, "changes must be ordered")
		require.Equal(t, ch.Line0-pos0, ch.Line1-pos1, "unchanged gap must be the same length on both sides")
		require.True(t, ch.Deleted > 0 || ch.Inserted > 0, "empty change")

		out = append(out, x[pos0:ch.Line0]...)
		out = append(out, y[ch.Line1:ch.Line1+ch.Inserted]...)
		pos0 = ch.Line0 + ch.Deleted
		pos1 = ch.Line1 + ch.Inserted
	}
	require.Equal(t, len(x)-pos0, len(y)-pos1)
	out = append(out, x[pos0:]...)
	return out
}

func cost(script []Change) int {
	n := 0
	for _, ch := range script {
		n += ch.Deleted + ch.Inserted
	}
	return n
}

// minimalCost is an independent edit distance (insertions + deletions) computed by diffmatchpatch's bisection.
func minimalCost(x, y []int) int {
	toRunes := func(s []int) []rune {
		r := make([]rune, len(s))
		for i, v := range s {
			r[i] = rune('a' + v)
		}
		return r
	}
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	n := 0
	for _, d := range dmp.DiffMainRunes(toRunes(x), toRunes(y), false) {
		if d.Type != diffmatchpatch.DiffEqual {
			n += len([]rune(d.Text))
		}
	}
	return n
}

func randomSeq(r *rand.Rand, n, alphabet int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = 1 + r.Intn(alphabet)
	}
	return s
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		x, y []int
		want []Change
	}{
		{name: "both empty", x: nil, y: nil, want: nil},
		{name: "identical", x: []int{1, 2, 3}, y: []int{1, 2, 3}, want: nil},
		{name: "x empty", x: nil, y: []int{1, 2}, want: []Change{{Line0: 0, Line1: 0, Deleted: 0, Inserted: 2}}},
		{name: "y empty", x: []int{1, 2}, y: nil, want: []Change{{Line0: 0, Line1: 0, Deleted: 2, Inserted: 0}}},
		{name: "first differs", x: []int{1, 2, 3, 4}, y: []int{5, 2, 3, 4}, want: []Change{{Line0: 0, Line1: 0, Deleted: 1, Inserted: 1}}},
		{name: "middle differs", x: []int{1, 2, 3}, y: []int{1, 4, 3}, want: []Change{{Line0: 1, Line1: 1, Deleted: 1, Inserted: 1}}},
		{name: "disjoint", x: []int{1, 2, 3, 4}, y: []int{5, 6, 7, 8}, want: []Change{{Line0: 0, Line1: 0, Deleted: 4, Inserted: 4}}},
		{name: "pure insert", x: []int{1, 3}, y: []int{1, 2, 3}, want: []Change{{Line0: 1, Line1: 1, Deleted: 0, Inserted: 1}}},
		{name: "pure delete", x: []int{1, 2, 3}, y: []int{1, 3}, want: []Change{{Line0: 1, Line1: 1, Deleted: 1, Inserted: 0}}},
		{
			name: "two separate edits",
			x:    []int{1, 2, 3, 4, 5, 6},
			y:    []int{1, 7, 3, 4, 8, 6},
			want: []Change{{Line0: 1, Line1: 1, Deleted: 1, Inserted: 1}, {Line0: 4, Line1: 4, Deleted: 1, Inserted: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, minimal := range []bool{false, true} {
				got := Compare(tt.x, tt.y, Options{Minimal: minimal})
				assert.Equal(t, tt.want, got, "minimal=%v", minimal)
				assert.Equal(t, tt.y, nilIfEmpty(apply(t, tt.x, tt.y, got)))
			}
		})
	}
}

func nilIfEmpty(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestCompareMinimalMatchesEditDistance(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		x := randomSeq(r, r.Intn(60), 1+r.Intn(6))
		y := randomSeq(r, r.Intn(60), 1+r.Intn(6))

		got := Compare(x, y, Options{Minimal: true})
		require.Equal(t, nilIfEmpty(y), nilIfEmpty(apply(t, x, y, got)))
		require.Equal(t, minimalCost(x, y), cost(got), "x=%v y=%v", x, y)
	}
}

func TestCompareHeuristicsStayValid(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		x := randomSeq(r, r.Intn(400), 1+r.Intn(40))
		y := append([]int(nil), x...)
		// Sprinkle edits so there is still structure to find.
		for k := r.Intn(30); k > 0 && len(y) > 0; k-- {
			y[r.Intn(len(y))] = 1 + r.Intn(60)
		}

		got := Compare(x, y, Options{SpeedLargeFiles: true})
		require.Equal(t, nilIfEmpty(y), nilIfEmpty(apply(t, x, y, got)))
		assert.GreaterOrEqual(t, cost(got), minimalCost(x, y))
	}
}

func TestCompareTooExpensive(t *testing.T) {
	// Long random sequences over a tiny alphabet force the cost cutoff.
	r := rand.New(rand.NewSource(3))
	x := randomSeq(r, 3000, 3)
	y := randomSeq(r, 3000, 3)

	got := Compare(x, y, Options{SpeedLargeFiles: true})
	require.Equal(t, y, apply(t, x, y, got))
}

func TestCompareIdentical(t *testing.T) {
	// Classes say everything matches, but the first and last elements are not byte-identical. Only the identical ends are stripped.
	x := []int{1, 1, 1, 1}
	y := []int{1, 1, 1, 1}
	calls := 0
	identical := func(i, j int) bool {
		calls++
		return i == 1 && j == 1
	}
	got := Compare(x, y, Options{Identical: identical})
	assert.Empty(t, got)
	assert.Positive(t, calls)
}

func TestCompareDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	x := randomSeq(r, 500, 8)
	y := randomSeq(r, 500, 8)

	first := Compare(x, y, Options{})
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Compare(x, y, Options{}))
	}
}

func TestDiscardConfusingLines(t *testing.T) {
	// Elements with no counterpart are discarded and pre-marked changed; the shared ones survive.
	c := newComparison([]int{1, 2, 9, 3}, []int{1, 2, 3, 8}, Options{})
	c.discardConfusingLines()

	assert.Equal(t, []int{1, 2, 3}, c.files[0].undiscarded)
	assert.Equal(t, []int{0, 1, 3}, c.files[0].realindexes)
	assert.Equal(t, flags{false, false, true, false}, c.files[0].changed)
	assert.Equal(t, flags{false, false, false, true}, c.files[1].changed)

	// Minimal keeps everything.
	c = newComparison([]int{1, 2, 9, 3}, []int{1, 2, 3, 8}, Options{Minimal: true})
	c.discardConfusingLines()
	assert.Len(t, c.files[0].undiscarded, 4)
	assert.Equal(t, flags{false, false, false, false}, c.files[0].changed)
}

func TestShiftBoundariesMergesRuns(t *testing.T) {
	// Deleting one of two adjacent identical elements: the change slides to the last one.
	got := Compare([]int{1, 2, 2, 3}, []int{1, 2, 3}, Options{Identical: func(int, int) bool { return false }})
	assert.Equal(t, []Change{{Line0: 2, Line1: 2, Deleted: 1, Inserted: 0}}, got)
}
