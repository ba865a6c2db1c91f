package diff3

import (
	"github.com/codalotl/align3/internal/diff"
	"github.com/codalotl/align3/internal/invariant"
	"github.com/codalotl/align3/internal/simplelogger"
	"github.com/codalotl/align3/internal/source"
)

// Builder owns the row arena and the current order of an alignment. A Builder is not safe for concurrent use, except that FineDiff may run concurrently
// for different pairs.
type Builder struct {
	rows  []Row
	order []Handle
	log   simplelogger.Logger
}

// NewBuilder returns an empty Builder that logs phase boundaries to log.
func NewBuilder(log simplelogger.Logger) *Builder {
	return &Builder{log: log}
}

func (b *Builder) alloc(r Row) Handle {
	b.rows = append(b.rows, r)
	return Handle(len(b.rows) - 1)
}

func (b *Builder) push(r Row) {
	b.order = append(b.order, b.alloc(r))
}

// Len returns the number of rows in the current order.
func (b *Builder) Len() int {
	return len(b.order)
}

// Line returns the line of version v on the i-th row, or Absent.
func (b *Builder) Line(i int, v source.Selector) int {
	return b.rows[b.order[i]].Line(v)
}

// Row returns the i-th row of the current order. The pointer is valid until the next phase runs.
func (b *Builder) Row(i int) *Row {
	return &b.rows[b.order[i]]
}

// Rows returns a copy of the rows in order.
func (b *Builder) Rows() []Row {
	out := make([]Row, len(b.order))
	for i, h := range b.order {
		out[i] = b.rows[h]
	}
	return out
}

// SeedAB discards any previous alignment and builds rows from the A-B diff list: one row per equal line pair, one row per paired changed line, then rows
// for the leftover lines of the longer side.
func (b *Builder) SeedAB(ab diff.List) {
	b.log.Log("Enter: SeedAB spans=%d", len(ab))
	b.rows, b.order = b.rows[:0], b.order[:0]

	lineA, lineB := 0, 0
	for _, d := range ab {
		for ; d.Equal > 0; d.Equal-- {
			b.push(Row{A: lineA, B: lineB, C: Absent, EqAB: true})
			lineA++
			lineB++
		}
		for ; d.Deleted > 0 && d.Inserted > 0; d.Deleted, d.Inserted = d.Deleted-1, d.Inserted-1 {
			b.push(Row{A: lineA, B: lineB, C: Absent})
			lineA++
			lineB++
		}
		for ; d.Deleted > 0; d.Deleted-- {
			b.push(Row{A: lineA, B: Absent, C: Absent})
			lineA++
		}
		for ; d.Inserted > 0; d.Inserted-- {
			b.push(Row{A: Absent, B: lineB, C: Absent})
			lineB++
		}
	}
	b.log.Log("Leave: SeedAB rows=%d", len(b.order))
}

// MergeAC places C's lines using the A-C diff list. A C line equal to an A line goes on that A line's row and inherits the row's A-B equality as its
// B-C equality. Every other C line gets a new row in front of the next row not yet passed.
func (b *Builder) MergeAC(ac diff.List) {
	b.log.Log("Enter: MergeAC spans=%d", len(ac))
	old := b.order
	out := make([]Handle, 0, len(old)+ac.Len2())
	i3 := 0
	lineA, lineC := 0, 0

	for _, d := range ac {
		for ; d.Equal > 0; d.Equal-- {
			for i3 < len(old) && b.rows[old[i3]].A != lineA {
				out = append(out, old[i3])
				i3++
			}
			if i3 == len(old) {
				invariant.Failf(invariant.Structure, "MergeAC: no row holds A line %d", lineA)
			}
			r := &b.rows[old[i3]]
			r.C = lineC
			r.EqAC = true
			r.EqBC = r.EqAB
			out = append(out, old[i3])
			i3++
			lineA++
			lineC++
		}
		for ; d.Deleted > 0 && d.Inserted > 0; d.Deleted, d.Inserted = d.Deleted-1, d.Inserted-1 {
			out = append(out, b.alloc(Row{A: Absent, B: Absent, C: lineC}))
			lineA++
			lineC++
		}
		lineA += d.Deleted
		for ; d.Inserted > 0; d.Inserted-- {
			out = append(out, b.alloc(Row{A: Absent, B: Absent, C: lineC}))
			lineC++
		}
	}
	b.order = append(out, old[i3:]...)
	b.log.Log("Leave: MergeAC rows=%d", len(b.order))
}

// ReconcileBC uses the B-C diff list to bring equal B and C lines onto the same row. When the two lines sit on different rows, the line of the later row
// moves up to the earlier row unless the later row's own A equality holds it in place. Lines of the moving version found between the two rows are pushed
// out in front of the earlier row so that order is kept.
func (b *Builder) ReconcileBC(bc diff.List) {
	b.log.Log("Enter: ReconcileBC spans=%d", len(bc))
	c := b.newChain()
	i3b, i3c := c.head, c.head
	lineB, lineC := 0, 0

	for _, d := range bc {
		for ; d.Equal > 0; d.Equal-- {
			for c.row(i3b).B != lineB {
				i3b = c.succ(i3b)
			}
			for c.row(i3c).C != lineC {
				i3c = c.succ(i3c)
			}

			switch {
			case i3b == i3c:
				c.row(i3b).EqBC = true
			case c.before(i3c, i3b):
				if !c.row(i3b).EqAB {
					c.pullB(i3c, i3b, lineB)
				}
			default:
				if !c.row(i3c).EqAC {
					c.pullC(i3b, i3c, lineC)
				}
			}

			lineB++
			lineC++
			i3b = c.succ(i3b)
			i3c = c.succ(i3c)
		}

		for ; d.Deleted > 0; d.Deleted-- {
			i3 := i3b
			for c.row(i3).B != lineB {
				i3 = c.succ(i3)
			}
			if i3 != i3b && !c.row(i3).EqAB {
				// B line belongs above the rows that separate it from the cursor.
				c.row(i3).B = Absent
				r := newRow()
				r.B = lineB
				c.insertBefore(i3b, r)
			} else {
				i3b = i3
			}
			lineB++
			i3b = c.succ(i3b)

			if d.Inserted > 0 {
				d.Inserted--
				lineC++
			}
		}
		lineC += d.Inserted
	}
	c.commit()
	b.log.Log("Leave: ReconcileBC rows=%d", len(b.order))
}

// pullB moves line B from row to onto the earlier row from, which holds the equal C line. B lines between the two rows are pushed in front of from. If
// some row in between holds an A-B equality, A lines up to and including that row move along with the B lines.
func (c *chain) pullB(from, to Handle, lineB int) {
	disturbing := 0
	for h := from; h != to; h = c.succ(h) {
		if c.row(h).B >= 0 {
			disturbing++
		}
	}

	if disturbing > 0 {
		lastEqualA := end
		for h := from; h != to; h = c.succ(h) {
			if c.row(h).EqAB {
				lastEqualA = h
			}
		}
		beforeOrOn := lastEqualA != end

		for h := from; h != to; h = c.succ(h) {
			r := c.row(h)
			if r.B >= 0 || (beforeOrOn && r.A >= 0) {
				nr := newRow()
				nr.B = r.B
				r.B = Absent
				if beforeOrOn {
					nr.A = r.A
					nr.EqAB = r.EqAB
					r.A = Absent
					r.EqAC = false
				}
				r.EqAB = false
				r.EqBC = false
				c.insertBefore(from, nr)
			}
			if h == lastEqualA {
				beforeOrOn = false
			}
		}
	}

	rt := c.row(to)
	rt.B = Absent
	rt.EqAB = false
	rt.EqBC = false

	rf := c.row(from)
	rf.B = lineB
	rf.EqBC = true
	rf.EqAB = rf.EqAC
}

// pullC is pullB with the roles of B and C swapped.
func (c *chain) pullC(from, to Handle, lineC int) {
	disturbing := 0
	for h := from; h != to; h = c.succ(h) {
		if c.row(h).C >= 0 {
			disturbing++
		}
	}

	if disturbing > 0 {
		lastEqualA := end
		for h := from; h != to; h = c.succ(h) {
			if c.row(h).EqAC {
				lastEqualA = h
			}
		}
		beforeOrOn := lastEqualA != end

		for h := from; h != to; h = c.succ(h) {
			r := c.row(h)
			if r.C >= 0 || (beforeOrOn && r.A >= 0) {
				nr := newRow()
				nr.C = r.C
				r.C = Absent
				if beforeOrOn {
					nr.A = r.A
					nr.EqAC = r.EqAC
					r.A = Absent
					r.EqAB = false
				}
				r.EqAC = false
				r.EqBC = false
				c.insertBefore(from, nr)
			}
			if h == lastEqualA {
				beforeOrOn = false
			}
		}
	}

	rt := c.row(to)
	rt.C = Absent
	rt.EqAC = false
	rt.EqBC = false

	rf := c.row(from)
	rf.C = lineC
	rf.EqBC = true
	rf.EqAC = rf.EqAB
}
