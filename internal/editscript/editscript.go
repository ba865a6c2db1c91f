// Package editscript computes an edit script between two sequences of equivalence class IDs.
//
// The algorithm is the O(ND) middle-snake search with the GNU diff heuristics layered on top: lines that appear too often (or never) on the other side are
// discarded up front, long searches are cut off once they become too expensive, and change boundaries are shifted afterwards so that runs of changes merge
// and line up with changes on the other side.
//
// All working storage is allocated per call to Compare, so concurrent calls are safe.
package editscript

import (
	"math"

	"github.com/codalotl/align3/internal/invariant"
)

// snakeLimit is the diagonal run length considered a "big snake" by the speedLargeFiles heuristic.
const snakeLimit = 20

// Change is one contiguous edit: Deleted elements of x starting at Line0 are replaced by Inserted elements of y starting at Line1.
//
// Line0 and Line1 are indexes into the full x and y passed to Compare.
type Change struct {
	Line0    int
	Line1    int
	Deleted  int
	Inserted int
}

// Options controls Compare.
type Options struct {
	// Minimal disables the discard pass and the cost cutoffs, so the script has the minimum number of edits.
	Minimal bool

	// SpeedLargeFiles enables the big-snake heuristic for very long searches.
	SpeedLargeFiles bool

	// Identical, if set, reports whether x[i] and y[j] are byte-identical. Identical leading and trailing elements are stripped before any search. If nil, class
	// equality is used.
	Identical func(i, j int) bool
}

// Compare returns the changes that turn x into y, in increasing order of Line0 (and Line1).
//
// Elements of x and y are equivalence class IDs: two elements match iff their IDs are equal. IDs must be non-negative. ID 0 never matches anything during
// the discard pass, so callers normally start real classes at 1.
func Compare(x, y []int, opts Options) []Change {
	identical := opts.Identical
	if identical == nil {
		identical = func(i, j int) bool { return x[i] == y[j] }
	}

	prefix := 0
	for prefix < len(x) && prefix < len(y) && identical(prefix, prefix) {
		prefix++
	}
	suffix := 0
	for suffix < len(x)-prefix && suffix < len(y)-prefix && identical(len(x)-1-suffix, len(y)-1-suffix) {
		suffix++
	}

	bx := x[prefix : len(x)-suffix]
	by := y[prefix : len(y)-suffix]
	if len(bx) == 0 && len(by) == 0 {
		return nil
	}

	c := newComparison(bx, by, opts)
	c.run()

	script := buildScript(c.files[0].changed, c.files[1].changed, len(bx), len(by))
	for i := range script {
		script[i].Line0 += prefix
		script[i].Line1 += prefix
	}
	return script
}

// flags is a per-element change vector that reads as false outside of its range.
type flags []bool

func (f flags) at(i int) bool {
	if i < 0 || i >= len(f) {
		return false
	}
	return f[i]
}

// side holds the per-sequence state of one comparison.
type side struct {
	equivs      []int // class of each buffered element
	changed     flags // changed[i] is true if element i is deleted/inserted
	undiscarded []int // classes of the elements that survived the discard pass
	realindexes []int // realindexes[k] is the index in equivs of undiscarded[k]
}

type comparison struct {
	files [2]side

	// xvec and yvec alias files[0].undiscarded and files[1].undiscarded.
	xvec []int
	yvec []int

	// fdiag and bdiag are indexed by diagonal + diagOff.
	fdiag   []int
	bdiag   []int
	diagOff int

	minimal         bool
	speedLargeFiles bool
	tooExpensive    int
}

func newComparison(x, y []int, opts Options) *comparison {
	c := &comparison{minimal: opts.Minimal, speedLargeFiles: opts.SpeedLargeFiles}
	c.files[0].equivs = x
	c.files[1].equivs = y
	for f := range c.files {
		n := len(c.files[f].equivs)
		c.files[f].changed = make(flags, n)
		c.files[f].undiscarded = make([]int, 0, n)
		c.files[f].realindexes = make([]int, 0, n)
	}
	return c
}

func (c *comparison) run() {
	c.discardConfusingLines()

	c.xvec = c.files[0].undiscarded
	c.yvec = c.files[1].undiscarded

	n0, n1 := len(c.xvec), len(c.yvec)
	diags := n0 + n1 + 3
	c.fdiag = make([]int, diags)
	c.bdiag = make([]int, diags)
	c.diagOff = n1 + 1

	c.tooExpensive = 1
	for d := diags; d != 0; d >>= 2 {
		c.tooExpensive <<= 1
	}
	c.tooExpensive = max(256, c.tooExpensive)

	c.compareseq(0, n0, 0, n1, c.minimal)

	c.shiftBoundaries()
}

// discardConfusingLines removes elements that have no match on the other side, or that match too many elements, unless they are surrounded by other kept
// elements. Discarded elements are marked changed up front; the search only sees the survivors.
//
// Discard codes: 0 keep, 1 discard, 2 provisional (discard only if the surroundings are also discarded).
func (c *comparison) discardConfusingLines() {
	equivMax := 1
	for f := range c.files {
		for _, e := range c.files[f].equivs {
			equivMax = max(equivMax, e+1)
		}
	}

	var counts [2][]int
	for f := range c.files {
		counts[f] = make([]int, equivMax)
		for _, e := range c.files[f].equivs {
			counts[f][e]++
		}
	}

	var discarded [2][]byte
	for f := range c.files {
		equivs := c.files[f].equivs
		end := len(equivs)
		discards := make([]byte, end)
		other := counts[1-f]

		many := 5
		for tem := (end / 64) >> 2; tem > 0; tem >>= 2 {
			many *= 2
		}

		for i, e := range equivs {
			if e == 0 {
				continue
			}
			nmatch := other[e]
			if nmatch == 0 {
				discards[i] = 1
			} else if nmatch > many {
				discards[i] = 2
			}
		}
		discarded[f] = discards
	}

	for f := range c.files {
		discards := discarded[f]
		end := len(discards)

		for i := 0; i < end; i++ {
			if discards[i] == 2 {
				discards[i] = 0
				continue
			}
			if discards[i] == 0 {
				continue
			}

			// Find the end of this run of discardable elements and count the provisionals in it.
			provisional := 0
			j := i
			for ; j < end; j++ {
				if discards[j] == 0 {
					break
				}
				if discards[j] == 2 {
					provisional++
				}
			}

			// Provisionals at the end of the run stay.
			for j > i && discards[j-1] == 2 {
				j--
				discards[j] = 0
				provisional--
			}

			length := j - i

			// Mostly provisionals: keep them all.
			if provisional*4 > length {
				for j > i {
					j--
					if discards[j] == 2 {
						discards[j] = 0
					}
				}
				continue
			}

			minimum := 1
			for tem := (length >> 2) >> 2; tem > 0; tem >>= 2 {
				minimum <<= 1
			}
			minimum++

			// Cancel provisional discards that form long subruns of their own.
			consec := 0
			for j = 0; j < length; j++ {
				if discards[i+j] != 2 {
					consec = 0
					continue
				}
				consec++
				if consec == minimum {
					j -= consec // back up and cancel the whole subrun
				} else if consec > minimum {
					discards[i+j] = 0
				}
			}

			// Cancel provisionals at the start of the run until three non-provisionals in a row are seen, or a non-provisional
			// at least 8 elements in.
			consec = 0
			for j = 0; j < length; j++ {
				if j >= 8 && discards[i+j] == 1 {
					break
				}
				if discards[i+j] == 2 {
					consec = 0
					discards[i+j] = 0
				} else if discards[i+j] == 0 {
					consec = 0
				} else {
					consec++
				}
				if consec == 3 {
					break
				}
			}

			i += length - 1

			// Same at the end of the run.
			consec = 0
			for j = 0; j < length; j++ {
				if j >= 8 && discards[i-j] == 1 {
					break
				}
				if discards[i-j] == 2 {
					consec = 0
					discards[i-j] = 0
				} else if discards[i-j] == 0 {
					consec = 0
				} else {
					consec++
				}
				if consec == 3 {
					break
				}
			}
		}
	}

	for f := range c.files {
		s := &c.files[f]
		for i, e := range s.equivs {
			if c.minimal || discarded[f][i] == 0 {
				s.undiscarded = append(s.undiscarded, e)
				s.realindexes = append(s.realindexes, i)
			} else {
				s.changed[i] = true
			}
		}
	}
}

// partition is a split point found by diag.
type partition struct {
	xmid, ymid int
	loMinimal  bool // find a minimal script for the lower half
	hiMinimal  bool // find a minimal script for the upper half
}

// diag finds the midpoint of the shortest edit script for xvec[xoff:xlim] vs yvec[yoff:ylim], searching forward and backward at once. It returns the
// split point and an estimate of the script cost. The cost is only exact if findMinimal is set.
func (c *comparison) diag(xoff, xlim, yoff, ylim int, findMinimal bool) (partition, int) {
	fd, bd, off := c.fdiag, c.bdiag, c.diagOff
	xv, yv := c.xvec, c.yvec

	dmin := xoff - ylim
	dmax := xlim - yoff
	fmid := xoff - yoff
	bmid := xlim - ylim
	fmin, fmax := fmid, fmid
	bmin, bmax := bmid, bmid
	odd := (fmid-bmid)&1 != 0

	fd[off+fmid] = xoff
	bd[off+bmid] = xlim

	for cost := 1; ; cost++ {
		bigSnake := false

		// Extend the forward search by one edit step in each diagonal.
		if fmin > dmin {
			fmin--
			fd[off+fmin-1] = -1
		} else {
			fmin++
		}
		if fmax < dmax {
			fmax++
			fd[off+fmax+1] = -1
		} else {
			fmax--
		}
		for d := fmax; d >= fmin; d -= 2 {
			tlo, thi := fd[off+d-1], fd[off+d+1]
			x := thi
			if tlo >= thi {
				x = tlo + 1
			}
			oldx := x
			y := x - d
			for x < xlim && y < ylim && xv[x] == yv[y] {
				x++
				y++
			}
			if x-oldx > snakeLimit {
				bigSnake = true
			}
			fd[off+d] = x
			if odd && bmin <= d && d <= bmax && bd[off+d] <= x {
				return partition{xmid: x, ymid: y, loMinimal: true, hiMinimal: true}, 2*cost - 1
			}
		}

		// Same for the backward search.
		if bmin > dmin {
			bmin--
			bd[off+bmin-1] = math.MaxInt
		} else {
			bmin++
		}
		if bmax < dmax {
			bmax++
			bd[off+bmax+1] = math.MaxInt
		} else {
			bmax--
		}
		for d := bmax; d >= bmin; d -= 2 {
			tlo, thi := bd[off+d-1], bd[off+d+1]
			x := thi - 1
			if tlo < thi {
				x = tlo
			}
			oldx := x
			y := x - d
			for x > xoff && y > yoff && xv[x-1] == yv[y-1] {
				x--
				y--
			}
			if oldx-x > snakeLimit {
				bigSnake = true
			}
			bd[off+d] = x
			if !odd && fmin <= d && d <= fmax && x <= fd[off+d] {
				return partition{xmid: x, ymid: y, loMinimal: true, hiMinimal: true}, 2 * cost
			}
		}

		if findMinimal {
			continue
		}

		// Heuristic: after a while, accept a diagonal that ends in a long snake and has made good progress.
		if cost > 200 && bigSnake && c.speedLargeFiles {
			best := 0
			var part partition
			found := false

			for d := fmax; d >= fmin; d -= 2 {
				dd := d - fmid
				x := fd[off+d]
				y := x - d
				v := (x - xoff) + (y - yoff) - dd
				if v > 12*(cost+abs(dd)) && best < v && xoff+snakeLimit <= x && x < xlim && yoff+snakeLimit <= y && y < ylim {
					// The snake must be at least snakeLimit long.
					for k := 1; xv[x-k] == yv[y-k]; k++ {
						if k == snakeLimit {
							best = v
							part = partition{xmid: x, ymid: y}
							found = true
							break
						}
					}
				}
			}
			if found {
				part.loMinimal = true
				part.hiMinimal = false
				return part, 2*cost - 1
			}

			best = 0
			for d := bmax; d >= bmin; d -= 2 {
				dd := d - bmid
				x := bd[off+d]
				y := x - d
				v := (xlim - x) + (ylim - y) + dd
				if v > 12*(cost+abs(dd)) && best < v && xoff < x && x <= xlim-snakeLimit && yoff < y && y <= ylim-snakeLimit {
					for k := 0; xv[x+k] == yv[y+k]; k++ {
						if k == snakeLimit-1 {
							best = v
							part = partition{xmid: x, ymid: y}
							found = true
							break
						}
					}
				}
			}
			if found {
				part.loMinimal = false
				part.hiMinimal = true
				return part, 2*cost - 1
			}
		}

		// Heuristic: the search is too expensive. Take the diagonal that got furthest and split there.
		if cost >= c.tooExpensive {
			fxybest := -1
			fxbest := 0
			for d := fmax; d >= fmin; d -= 2 {
				x := min(fd[off+d], xlim)
				y := x - d
				if ylim < y {
					x = ylim + d
					y = ylim
				}
				if fxybest < x+y {
					fxybest = x + y
					fxbest = x
				}
			}

			bxybest := math.MaxInt
			bxbest := 0
			for d := bmax; d >= bmin; d -= 2 {
				x := max(xoff, bd[off+d])
				y := x - d
				if y < yoff {
					x = yoff + d
					y = yoff
				}
				if x+y < bxybest {
					bxybest = x + y
					bxbest = x
				}
			}

			// Use whichever of the two searches made more progress.
			if (xlim+ylim)-bxybest < fxybest-(xoff+yoff) {
				return partition{xmid: fxbest, ymid: fxybest - fxbest, loMinimal: true, hiMinimal: false}, 2*cost - 1
			}
			return partition{xmid: bxbest, ymid: bxybest - bxbest, loMinimal: false, hiMinimal: true}, 2*cost - 1
		}
	}
}

// compareseq marks the changed elements of xvec[xoff:xlim] vs yvec[yoff:ylim] by recursive bisection.
func (c *comparison) compareseq(xoff, xlim, yoff, ylim int, findMinimal bool) {
	xv, yv := c.xvec, c.yvec

	for xoff < xlim && yoff < ylim && xv[xoff] == yv[yoff] {
		xoff++
		yoff++
	}
	for xlim > xoff && ylim > yoff && xv[xlim-1] == yv[ylim-1] {
		xlim--
		ylim--
	}

	switch {
	case xoff == xlim:
		for ; yoff < ylim; yoff++ {
			c.files[1].changed[c.files[1].realindexes[yoff]] = true
		}
	case yoff == ylim:
		for ; xoff < xlim; xoff++ {
			c.files[0].changed[c.files[0].realindexes[xoff]] = true
		}
	default:
		part, cost := c.diag(xoff, xlim, yoff, ylim, findMinimal)
		if cost == 1 {
			// Both ends were trimmed, so the remaining ranges can't differ by a single edit.
			invariant.Failf(invariant.Structure, "edit script: unit-cost split in [%d,%d)x[%d,%d)", xoff, xlim, yoff, ylim)
		}
		c.compareseq(xoff, part.xmid, yoff, part.ymid, part.loMinimal)
		c.compareseq(part.xmid, xlim, part.ymid, ylim, part.hiMinimal)
	}
}

// shiftBoundaries slides each run of changes so that runs merge where possible, then moves each run as far toward the end as it can go, except that a run
// stays aligned with a run of changes in the other sequence if it can be.
func (c *comparison) shiftBoundaries() {
	for f := range c.files {
		changed := c.files[f].changed
		other := c.files[1-f].changed
		equivs := c.files[f].equivs
		iEnd := len(equivs)

		i, j := 0, 0
		for {
			// Scan forward to the start of the next run, keeping j in step with the unchanged elements of the other sequence.
			for i < iEnd && !changed.at(i) {
				for {
					v := other.at(j)
					j++
					if !v {
						break
					}
				}
				i++
			}
			if i == iEnd {
				break
			}

			start := i
			for {
				i++
				if !changed.at(i) {
					break
				}
			}
			for other.at(j) {
				j++
			}

			var corresponding int
			for {
				runlength := i - start

				// Move the run back while the element before it equals its last element, merging with earlier runs.
				for start != 0 && equivs[start-1] == equivs[i-1] {
					start--
					changed[start] = true
					i--
					changed[i] = false
					for changed.at(start - 1) {
						start--
					}
					for {
						j--
						if !other.at(j) {
							break
						}
					}
				}

				// corresponding is the last end position at which the run lined up with a run in the other sequence.
				corresponding = iEnd
				if other.at(j - 1) {
					corresponding = i
				}

				// Move the run forward while its first element equals the element after it, merging with later runs.
				for i != iEnd && equivs[start] == equivs[i] {
					changed[start] = false
					start++
					changed[i] = true
					i++
					for changed.at(i) {
						i++
					}
					for {
						j++
						if !other.at(j) {
							break
						}
						corresponding = i
					}
				}

				if runlength == i-start {
					break
				}
			}

			// Move the run back to where it lined up with the other sequence, if it ever did.
			for corresponding < i {
				start--
				changed[start] = true
				i--
				changed[i] = false
				for {
					j--
					if !other.at(j) {
						break
					}
				}
			}
		}
	}
}

// buildScript turns the change vectors into a forward list of changes.
func buildScript(changed0, changed1 flags, len0, len1 int) []Change {
	var script []Change
	i0, i1 := len0, len1
	for i0 >= 0 || i1 >= 0 {
		if changed0.at(i0-1) || changed1.at(i1-1) {
			line0, line1 := i0, i1
			for changed0.at(i0 - 1) {
				i0--
			}
			for changed1.at(i1 - 1) {
				i1--
			}
			script = append(script, Change{Line0: i0, Line1: i1, Deleted: line0 - i0, Inserted: line1 - i1})
		}
		i0--
		i1--
	}

	for l, r := 0, len(script)-1; l < r; l, r = l+1, r-1 {
		script[l], script[r] = script[r], script[l]
	}
	return script
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
