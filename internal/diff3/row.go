package diff3

import (
	"github.com/codalotl/align3/internal/diff"
	"github.com/codalotl/align3/internal/source"
)

// Absent is the line reference of a version that has no line on a row.
const Absent = -1

// Row is one row of the alignment.
type Row struct {
	A, B, C int // line of each version, or Absent

	// Pairwise equality: equal, or different only in ignored white space.
	EqAB, EqAC, EqBC bool

	// White is true if the version's line is absent, blank, or (when comments are ignored) a pure comment.
	WhiteA, WhiteB, WhiteC bool

	// Comment is true if the version's line is a pure comment.
	CommentA, CommentB, CommentC bool

	// Character diffs of rows whose lines differ. nil if the lines are identical or a side is absent.
	FineAB, FineBC, FineCA diff.List
}

func newRow() Row {
	return Row{A: Absent, B: Absent, C: Absent}
}

// Line returns the line of version v, or Absent.
func (r *Row) Line(v source.Selector) int {
	switch v {
	case source.A:
		return r.A
	case source.B:
		return r.B
	}
	return r.C
}

func (r *Row) setLine(v source.Selector, line int) {
	switch v {
	case source.A:
		r.A = line
	case source.B:
		r.B = line
	default:
		r.C = line
	}
}

// White reports the white flag of version v.
func (r *Row) White(v source.Selector) bool {
	switch v {
	case source.A:
		return r.WhiteA
	case source.B:
		return r.WhiteB
	}
	return r.WhiteC
}

// Comment reports the pure-comment flag of version v.
func (r *Row) Comment(v source.Selector) bool {
	switch v {
	case source.A:
		return r.CommentA
	case source.B:
		return r.CommentB
	}
	return r.CommentC
}

// Equal reports the equality flag of pair p.
func (r *Row) Equal(p Pair) bool {
	switch p {
	case PairAB:
		return r.EqAB
	case PairBC:
		return r.EqBC
	}
	return r.EqAC
}

func (r *Row) setEqual(p Pair, eq bool) {
	switch p {
	case PairAB:
		r.EqAB = eq
	case PairBC:
		r.EqBC = eq
	default:
		r.EqAC = eq
	}
}

// Fine returns the character diff of pair p.
func (r *Row) Fine(p Pair) diff.List {
	switch p {
	case PairAB:
		return r.FineAB
	case PairBC:
		return r.FineBC
	}
	return r.FineCA
}

func (r *Row) setFine(p Pair, l diff.List) {
	switch p {
	case PairAB:
		r.FineAB = l
	case PairBC:
		r.FineBC = l
	default:
		r.FineCA = l
	}
}

// empty reports whether r holds no line and no equality. Rows with a stale equality flag but no lines are kept, as they always have been.
func (r *Row) empty() bool {
	return r.A < 0 && r.B < 0 && r.C < 0 && !r.EqAB && !r.EqAC && !r.EqBC
}

// Pair names an adjacent version pair, in the order the fine diff compares them.
type Pair int

const (
	PairAB Pair = iota // A against B
	PairBC             // B against C
	PairCA             // C against A
)

// Versions returns the two versions of p in comparison order.
func (p Pair) Versions() (source.Selector, source.Selector) {
	switch p {
	case PairAB:
		return source.A, source.B
	case PairBC:
		return source.B, source.C
	}
	return source.C, source.A
}

func (p Pair) String() string {
	v1, v2 := p.Versions()
	return v1.String() + v2.String()
}

// Change is a bit set naming which of a view's two comparison slots differ. For a view of A the slots are B then C; for B they are C then A; for C they are
// A then B.
type Change uint8

const (
	ChangeSlot1 Change = 1 << iota
	ChangeSlot2
)

// LineInfo describes one version's line on a row the way a side-by-side view of that version shows it.
type LineInfo struct {
	Line  int       // the version's line, or Absent
	Fine1 diff.List // character diff against slot 1
	Fine2 diff.List // character diff against slot 2

	// Presence is set for slots where one side has a line and the other doesn't.
	Presence Change

	// Content is set for slots whose lines are not equal. White rows on both sides count as equal.
	Content Change
}

// Info returns how version v's line on r compares with the other two versions. If triple is false, C is ignored.
func (r *Row) Info(v source.Selector, triple bool) LineInfo {
	eqAB := r.EqAB || (r.WhiteA && r.WhiteB)
	eqAC := r.EqAC || (r.WhiteA && r.WhiteC)
	eqBC := r.EqBC || (r.WhiteB && r.WhiteC)

	presenceDiffers := func(other int, line int) bool { return (other < 0) != (line < 0) }
	bit := func(set bool, c Change) Change {
		if set {
			return c
		}
		return 0
	}

	var info LineInfo
	switch v {
	case source.A:
		info.Line = r.A
		info.Fine1, info.Fine2 = r.FineAB, r.FineCA
		info.Presence = bit(presenceDiffers(r.B, r.A), ChangeSlot1) | bit(presenceDiffers(r.C, r.A) && triple, ChangeSlot2)
		info.Content = bit(!eqAB, ChangeSlot1) | bit(!(eqAC || !triple), ChangeSlot2)
	case source.B:
		info.Line = r.B
		info.Fine1, info.Fine2 = r.FineBC, r.FineAB
		info.Presence = bit(presenceDiffers(r.C, r.B) && triple, ChangeSlot1) | bit(presenceDiffers(r.A, r.B), ChangeSlot2)
		info.Content = bit(!(eqBC || !triple), ChangeSlot1) | bit(!eqAB, ChangeSlot2)
	default:
		info.Line = r.C
		info.Fine1, info.Fine2 = r.FineCA, r.FineBC
		info.Presence = bit(presenceDiffers(r.A, r.C), ChangeSlot1) | bit(presenceDiffers(r.B, r.C), ChangeSlot2)
		info.Content = bit(!eqAC, ChangeSlot1) | bit(!eqBC, ChangeSlot2)
	}
	return info
}
