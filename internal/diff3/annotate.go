package diff3

import (
	"github.com/codalotl/align3/internal/finediff"
	"github.com/codalotl/align3/internal/invariant"
	"github.com/codalotl/align3/internal/source"
)

// Check panics with an invariant.Completeness error unless the lines of version v that appear in the alignment are exactly 0..n-1, in order.
func (b *Builder) Check(v source.Selector, n int) {
	want := 0
	for i, h := range b.order {
		l := b.rows[h].Line(v)
		if l < 0 {
			continue
		}
		if l != want {
			invariant.Failf(invariant.Completeness, "version %s: row %d holds line %d, want line %d", v, i, l, want)
		}
		want++
	}
	if want != n {
		invariant.Failf(invariant.Completeness, "version %s: alignment holds %d lines, want %d", v, want, n)
	}
}

// MarkWhite sets the White and Comment flags of every row from the match views of A, B and C.
func (b *Builder) MarkWhite(texts [3]*source.Text, ignoreComments bool) {
	for _, h := range b.order {
		r := &b.rows[h]
		for _, v := range source.Selectors {
			white, comment := true, false
			if l := r.Line(v); l >= 0 {
				line := texts[v].Line(l)
				comment = line.PureComment()
				white = line.Blank() || (ignoreComments && comment)
			}
			switch v {
			case source.A:
				r.WhiteA, r.CommentA = white, comment
			case source.B:
				r.WhiteB, r.CommentB = white, comment
			default:
				r.WhiteC, r.CommentC = white, comment
			}
		}
	}
}

// FineOptions configure FineDiff.
type FineOptions struct {
	IgnoreComments   bool // rows whose lines are both comment-only count as equal
	IgnoreWhiteSpace bool // rows whose lines are both blank count as equal
	Diff             finediff.Options
}

// FineDiff annotates every row holding lines of both versions of p with their character diff, if the lines differ. t1 and t2 are the display views of p's
// versions. Rows whose two lines are both ignorable under opts get p's equality flag set.
//
// It reports whether every row has identical text for p, with neither side missing a line the other has. Calls for different pairs may run concurrently.
func (b *Builder) FineDiff(p Pair, t1, t2 *source.Text, opts FineOptions) bool {
	v1, v2 := p.Versions()
	b.log.With(p.String()).Log("Enter: FineDiff rows=%d", len(b.order))

	totalEqual := true
	for _, h := range b.order {
		r := &b.rows[h]
		k1, k2 := r.Line(v1), r.Line(v2)
		if (k1 >= 0) != (k2 >= 0) {
			totalEqual = false
		}
		if k1 < 0 || k2 < 0 {
			continue
		}

		s1, s2 := t1.String(k1), t2.String(k2)
		if s1 != s2 {
			totalEqual = false
			r.setFine(p, finediff.Coalesce(finediff.Compute(s1, s2, opts.Diff)))
		}

		if ignorable(t1.Line(k1), opts) && ignorable(t2.Line(k2), opts) {
			r.setEqual(p, true)
		}
	}

	b.log.With(p.String()).Log("Leave: FineDiff equal=%v", totalEqual)
	return totalEqual
}

func ignorable(l source.Line, opts FineOptions) bool {
	return (opts.IgnoreComments && l.Skippable()) || (opts.IgnoreWhiteSpace && l.Blank())
}
