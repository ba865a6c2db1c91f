// Package manualalign holds user-declared alignment ranges: ranges of lines in two or three versions that must end up on the same rows, and whose edges no
// automatic line move may cross.
package manualalign

import (
	"slices"

	"github.com/codalotl/align3/internal/diff"
	"github.com/codalotl/align3/internal/source"
)

// Absent marks a version that an Entry does not constrain.
const Absent = -1

// Entry is up to one [first, last] line range per version. The ranges of all constrained versions are aligned with each other.
type Entry struct {
	first [3]int
	last  [3]int
}

// NewEntry returns an Entry that constrains only version v to [first, last].
func NewEntry(v source.Selector, first, last int) Entry {
	e := Entry{first: [3]int{Absent, Absent, Absent}, last: [3]int{Absent, Absent, Absent}}
	e.first[v] = first
	e.last[v] = last
	return e
}

// First returns the first line of v's range, or Absent.
func (e Entry) First(v source.Selector) int {
	return e.first[v]
}

// Last returns the last line of v's range, or Absent.
func (e Entry) Last(v source.Selector) int {
	return e.last[v]
}

// Contains reports whether line is inside v's range.
func (e Entry) Contains(line int, v source.Selector) bool {
	return line >= 0 && line >= e.first[v] && line <= e.last[v]
}

// Pinned returns the number of versions e constrains.
func (e Entry) Pinned() int {
	n := 0
	for _, v := range source.Selectors {
		if e.first[v] >= 0 {
			n++
		}
	}
	return n
}

func (e Entry) empty() bool {
	return e.Pinned() == 0 && e.last == [3]int{Absent, Absent, Absent}
}

// IsValidMove reports whether aligning line1 of v1 with line2 of v2 keeps both lines on the same side of e's first-line edge and of its last-line+1 edge. Edges
// are only checked when e constrains both versions.
func (e Entry) IsValidMove(line1, line2 int, v1, v2 source.Selector) bool {
	l1, l2 := e.first[v1], e.first[v2]
	if l1 < 0 || l2 < 0 {
		return true
	}
	if crosses(line1, line2, l1, l2) {
		return false
	}
	return !crosses(line1, line2, e.last[v1]+1, e.last[v2]+1)
}

func crosses(line1, line2, edge1, edge2 int) bool {
	return (line1 >= edge1 && line2 < edge2) || (line1 < edge1 && line2 >= edge2)
}

// Rows is an ordered alignment, as seen by FirstRow.
type Rows interface {
	Len() int
	Line(row int, v source.Selector) int // line of v on row, or a negative number if none
}

// FirstRow returns the index of the first row holding one of e's first lines, or -1.
func (e Entry) FirstRow(rows Rows) int {
	for i := 0; i < rows.Len(); i++ {
		for _, v := range source.Selectors {
			if e.first[v] >= 0 && rows.Line(i, v) == e.first[v] {
				return i
			}
		}
	}
	return -1
}

// List is an ordered, compact collection of entries: for each version, the constrained ranges come first and are sorted.
type List []Entry

// Insert adds the range [first, last] for version v. Existing ranges of v that it overlaps are dropped, the new range is placed before the first range of v
// that lies entirely after it, and the list is compacted so that no entry without a range of v precedes one with a range of v. Entries left without any
// range are removed.
func (l *List) Insert(v source.Selector, first, last int) {
	entries := *l

	pos := len(entries)
	for i := range entries {
		l1, l2 := &entries[i].first[v], &entries[i].last[v]
		if *l1 < 0 || *l2 < 0 {
			continue
		}
		if (first <= *l1 && last >= *l1) || (first <= *l2 && last >= *l2) {
			*l1, *l2 = Absent, Absent
		}
		if first < *l1 && last < *l1 {
			pos = i
			break
		}
	}
	entries = slices.Insert(entries, pos, NewEntry(v, first, last))

	for _, w := range source.Selectors {
		empty := 0
		for i := range entries {
			if entries[empty].first[w] >= 0 {
				empty++
				continue
			}
			if entries[i].first[w] >= 0 {
				entries[empty].first[w], entries[i].first[w] = entries[i].first[w], entries[empty].first[w]
				entries[empty].last[w], entries[i].last[w] = entries[i].last[w], entries[empty].last[w]
				empty++
			}
		}
	}

	*l = slices.DeleteFunc(entries, Entry.empty)
}

// Clear removes all entries.
func (l *List) Clear() {
	*l = nil
}

// IsValidMove reports whether aligning line1 of v1 with line2 of v2 crosses no entry's edge. A move involving a missing line (negative) is always valid.
func (l List) IsValidMove(line1, line2 int, v1, v2 source.Selector) bool {
	if line1 < 0 || line2 < 0 {
		return true
	}
	for _, e := range l {
		if !e.IsValidMove(line1, line2, v1, v2) {
			return false
		}
	}
	return true
}

// RunDiff diffs s1 (version v1) against s2 (version v2) so that every entry pinning both versions lines up: the diff is split at each such entry's first line and
// after its last line, and the diff lists of the pieces are concatenated. s1 and s2 must cover whole versions.
func (l List) RunDiff(s1, s2 diff.Sequence, v1, v2 source.Selector, opts diff.Options) diff.List {
	var out diff.List
	begin1, begin2 := 0, 0
	run := func(end1, end2 int) {
		out = append(out, diff.Build(s1.Window(begin1, end1-begin1), s2.Window(begin2, end2-begin2), opts)...)
		begin1, begin2 = end1, end2
	}
	// Ranges past the end of a version (stale entries) or behind the current split are ignored.
	fits := func(end1, end2 int) bool {
		return end1 >= begin1 && end2 >= begin2 && end1 <= s1.Count && end2 <= s2.Count
	}

	for _, e := range l {
		end1, end2 := e.first[v1], e.first[v2]
		if end1 < 0 || end2 < 0 || !fits(end1, end2) {
			continue
		}
		run(end1, end2)

		end1, end2 = e.last[v1], e.last[v2]
		if end1 >= 0 && end2 >= 0 && fits(end1+1, end2+1) {
			run(end1+1, end2+1)
		}
	}
	run(s1.Count, s2.Count)
	return out
}
