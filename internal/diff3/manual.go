package diff3

import (
	"github.com/codalotl/align3/internal/manualalign"
	"github.com/codalotl/align3/internal/source"
)

// CorrectManual rearranges rows so that each manual entry's first lines share a row. Processing stops at the first entry that pins fewer than two versions.
// For an entry that pins exactly two versions, lines of the unpinned version are also pulled above the entry's row until one is found that is equal to its
// row's partner line.
func (b *Builder) CorrectManual(manual manualalign.List) {
	if len(manual) == 0 {
		return
	}
	b.log.Log("Enter: CorrectManual entries=%d", len(manual))
	c := b.newChain()

entries:
	for _, e := range manual {
		missing := source.Selector(-1)
		switch e.Pinned() {
		case 0, 1:
			break entries
		case 2:
			for _, v := range source.Selectors {
				if e.First(v) < 0 {
					missing = v
				}
			}
		}

		i3, wi := end, source.Selector(-1)
	find:
		for h := c.head; h != end; h = c.next[h] {
			for _, v := range source.Selectors {
				if l := c.row(h).Line(v); l >= 0 && l == e.First(v) {
					i3, wi = h, v
					break find
				}
			}
		}
		if i3 == end {
			continue
		}
		dest := i3

		for ; i3 != end; i3 = c.next[i3] {
			wi2 := source.Selector(-1)
			for _, v := range source.Selectors {
				if l := c.row(i3).Line(v); v != wi && l >= 0 && l == e.First(v) {
					wi2 = v
					break
				}
			}

			if wi2 < 0 {
				// The other versions' lines on this row don't belong to the entry: move them above dest.
				r := c.row(i3)
				nr := newRow()
				switch wi {
				case source.A:
					nr.B, nr.C, nr.EqBC = r.B, r.C, r.EqBC
					r.B, r.C = Absent, Absent
				case source.B:
					nr.A, nr.C, nr.EqAC = r.A, r.C, r.EqAC
					r.A, r.C = Absent, Absent
				case source.C:
					nr.A, nr.B, nr.EqAB = r.A, r.B, r.EqAB
					r.A, r.B = Absent, Absent
				}
				r.EqAB, r.EqAC, r.EqBC = false, false, false
				c.insertBefore(dest, nr)
				continue
			}

			if i3 != dest {
				r, d := c.row(i3), c.row(dest)
				d.setLine(wi2, r.Line(wi2))
				r.setLine(wi2, Absent)
				switch wi2 {
				case source.A:
					r.EqAB, r.EqAC = false, false
				case source.B:
					r.EqAB, r.EqBC = false, false
				case source.C:
					r.EqBC, r.EqAC = false, false
				}
			}

			if missing >= 0 {
			pull:
				for ; i3 != end; i3 = c.next[i3] {
					r := c.row(i3)
					if r.Line(missing) < 0 {
						continue
					}
					nr := newRow()
					switch missing {
					case source.A:
						if r.EqAB {
							break pull
						}
						nr.A = r.A
						r.A = Absent
						r.EqAB, r.EqAC = false, false
					case source.B:
						if r.EqAB {
							break pull
						}
						nr.B = r.B
						r.B = Absent
						r.EqAB, r.EqBC = false, false
					case source.C:
						if r.EqAC {
							break pull
						}
						nr.C = r.C
						r.C = Absent
						r.EqAC, r.EqBC = false, false
					}
					c.insertBefore(dest, nr)
				}
			}
			break
		}
	}
	c.commit()
	b.log.Log("Leave: CorrectManual rows=%d", len(b.order))
}

// TrimOptions configure Trim.
type TrimOptions struct {
	// IgnoreWhiteSpace makes the content check that decides whether a moved line becomes equal to its new partners skip ASCII white space. Trailing
	// white space still counts: "a " and "a" differ, " a" and "a" are equal.
	IgnoreWhiteSpace bool
}

// Trim compacts the alignment. Empty rows are removed; then, scanning rows top to bottom, lines that could sit on an earlier row without crossing
// another line of their version or a manual alignment edge are moved up. Three moves are tried per row, in order:
//   - a single line moves up next to an equal pair of the two other versions,
//   - a single line with no equality on its row moves up to the first free slot,
//   - an equal pair moves up to the first row where both slots are free.
//
// A manual entry's first row resets all cursors, so no line moves above it. texts are the match views of A, B and C.
func (b *Builder) Trim(texts [3]*source.Text, manual manualalign.List, opts TrimOptions) {
	b.log.Log("Enter: Trim rows=%d", len(b.order))
	b.removeEmpty()

	equal := func(v1 source.Selector, l1 int, v2 source.Selector, l2 int) bool {
		return lineContentEqual(texts[v1].String(l1), texts[v2].String(l2), opts.IgnoreWhiteSpace)
	}
	valid := manual.IsValidMove

	c := b.newChain()
	i3A, i3B, i3C := c.head, c.head, c.head
	lineA, lineB, lineC := 0, 0, 0
	mi := 0

	line := 0
	for i3 := c.head; i3 != end; i3, line = c.next[i3], line+1 {
		r := c.row(i3)

		if mi < len(manual) {
			e := manual[mi]
			if (r.A >= 0 && r.A == e.First(source.A)) || (r.B >= 0 && r.B == e.First(source.B)) || (r.C >= 0 && r.C == e.First(source.C)) {
				i3A, i3B, i3C = i3, i3, i3
				lineA, lineB, lineC = line, line, line
				mi++
			}
		}

		// Single line next to an equal pair.
		if ra := c.row(i3A); line > lineA && r.A >= 0 && ra.B >= 0 && ra.EqBC && equal(source.A, r.A, source.B, ra.B) &&
			valid(r.A, ra.B, source.A, source.B) && valid(r.A, ra.C, source.A, source.C) {
			ra.A = r.A
			ra.EqAB, ra.EqAC = true, true
			r.A = Absent
			r.EqAB, r.EqAC = false, false
			i3A = c.next[i3A]
			lineA++
		}
		if rb := c.row(i3B); line > lineB && r.B >= 0 && rb.A >= 0 && rb.EqAC && equal(source.B, r.B, source.A, rb.A) &&
			valid(r.B, rb.A, source.B, source.A) && valid(r.B, rb.C, source.B, source.C) {
			rb.B = r.B
			rb.EqAB, rb.EqBC = true, true
			r.B = Absent
			r.EqAB, r.EqBC = false, false
			i3B = c.next[i3B]
			lineB++
		}
		if rc := c.row(i3C); line > lineC && r.C >= 0 && rc.A >= 0 && rc.EqAB && equal(source.C, r.C, source.A, rc.A) &&
			valid(r.C, rc.A, source.C, source.A) && valid(r.C, rc.B, source.C, source.B) {
			rc.C = r.C
			rc.EqAC, rc.EqBC = true, true
			r.C = Absent
			r.EqAC, r.EqBC = false, false
			i3C = c.next[i3C]
			lineC++
		}

		// Single line without any equality.
		if ra := c.row(i3A); line > lineA && r.A >= 0 && !r.EqAB && !r.EqAC &&
			valid(r.A, ra.B, source.A, source.B) && valid(r.A, ra.C, source.A, source.C) {
			ra.A = r.A
			r.A = Absent
			if ra.B >= 0 && equal(source.A, ra.A, source.B, ra.B) {
				ra.EqAB = true
			}
			if (ra.EqAB && ra.EqBC) || (ra.C >= 0 && equal(source.A, ra.A, source.C, ra.C)) {
				ra.EqAC = true
			}
			i3A = c.next[i3A]
			lineA++
		}
		if rb := c.row(i3B); line > lineB && r.B >= 0 && !r.EqAB && !r.EqBC &&
			valid(r.B, rb.A, source.B, source.A) && valid(r.B, rb.C, source.B, source.C) {
			rb.B = r.B
			r.B = Absent
			if rb.A >= 0 && equal(source.A, rb.A, source.B, rb.B) {
				rb.EqAB = true
			}
			if (rb.EqAB && rb.EqAC) || (rb.C >= 0 && equal(source.B, rb.B, source.C, rb.C)) {
				rb.EqBC = true
			}
			i3B = c.next[i3B]
			lineB++
		}
		if rc := c.row(i3C); line > lineC && r.C >= 0 && !r.EqAC && !r.EqBC &&
			valid(r.C, rc.A, source.C, source.A) && valid(r.C, rc.B, source.C, source.B) {
			rc.C = r.C
			r.C = Absent
			if rc.A >= 0 && equal(source.A, rc.A, source.C, rc.C) {
				rc.EqAC = true
			}
			if (rc.EqAC && rc.EqAB) || (rc.B >= 0 && equal(source.B, rc.B, source.C, rc.C)) {
				rc.EqBC = true
			}
			i3C = c.next[i3C]
			lineC++
		}

		// Equal pair.
		switch {
		case line > lineA && line > lineB && r.A >= 0 && r.EqAB && !r.EqAC:
			i, l := i3B, lineB
			if lineA > lineB {
				i, l = i3A, lineA
			}
			if ri := c.row(i); valid(ri.C, r.A, source.C, source.A) && valid(ri.C, r.B, source.C, source.B) {
				ri.A, ri.B = r.A, r.B
				ri.EqAB = true
				if ri.C >= 0 && equal(source.A, ri.A, source.C, ri.C) {
					ri.EqAC, ri.EqBC = true, true
				}
				r.A, r.B = Absent, Absent
				r.EqAB = false
				i3A, i3B = c.next[i], c.next[i]
				lineA, lineB = l+1, l+1
			}
		case line > lineA && line > lineC && r.A >= 0 && r.EqAC && !r.EqAB:
			i, l := i3C, lineC
			if lineA > lineC {
				i, l = i3A, lineA
			}
			if ri := c.row(i); valid(ri.B, r.A, source.B, source.A) && valid(ri.B, r.C, source.B, source.C) {
				ri.A, ri.C = r.A, r.C
				ri.EqAC = true
				if ri.B >= 0 && equal(source.A, ri.A, source.B, ri.B) {
					ri.EqAB, ri.EqBC = true, true
				}
				r.A, r.C = Absent, Absent
				r.EqAC = false
				i3A, i3C = c.next[i], c.next[i]
				lineA, lineC = l+1, l+1
			}
		case line > lineB && line > lineC && r.B >= 0 && r.EqBC && !r.EqAC:
			i, l := i3C, lineC
			if lineB > lineC {
				i, l = i3B, lineB
			}
			if ri := c.row(i); valid(ri.A, r.B, source.A, source.B) && valid(ri.A, r.C, source.A, source.C) {
				ri.B, ri.C = r.B, r.C
				ri.EqBC = true
				if ri.A >= 0 && equal(source.A, ri.A, source.B, ri.B) {
					ri.EqAB, ri.EqAC = true, true
				}
				r.B, r.C = Absent, Absent
				r.EqBC = false
				i3B, i3C = c.next[i], c.next[i]
				lineB, lineC = l+1, l+1
			}
		}

		if r.A >= 0 {
			lineA, i3A = line+1, c.next[i3]
		}
		if r.B >= 0 {
			lineB, i3B = line+1, c.next[i3]
		}
		if r.C >= 0 {
			lineC, i3C = line+1, c.next[i3]
		}
	}
	c.commit()
	b.removeEmpty()
	b.log.Log("Leave: Trim rows=%d", len(b.order))
}

func (b *Builder) removeEmpty() {
	order := b.order[:0]
	for _, h := range b.order {
		if !b.rows[h].empty() {
			order = append(order, h)
		}
	}
	b.order = order
}

// lineContentEqual compares two lines, skipping ASCII white space if ignoreWhite is set. The scan stops as soon as either side runs out, so trailing spaces on
// only one side make the lines unequal.
func lineContentEqual(s1, s2 string, ignoreWhite bool) bool {
	if !ignoreWhite {
		return s1 == s2
	}
	r1, r2 := []rune(s1), []rune(s2)
	i, j := 0, 0
	for i < len(r1) && j < len(r2) {
		for i < len(r1) && isSpace(r1[i]) {
			i++
		}
		for j < len(r2) && isSpace(r2[j]) {
			j++
		}
		if i == len(r1) && j == len(r2) {
			return true
		}
		if i == len(r1) || j == len(r2) {
			return false
		}
		if r1[i] != r2[j] {
			return false
		}
		i++
		j++
	}
	return i == len(r1) && j == len(r2)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
