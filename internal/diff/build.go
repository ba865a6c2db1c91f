package diff

import (
	"github.com/codalotl/align3/internal/editscript"
	"github.com/codalotl/align3/internal/equiv"
	"github.com/codalotl/align3/internal/invariant"
)

// Sequence is a window [First, First+Count) onto the lines of one version.
type Sequence struct {
	Lines   []string // all lines of the version
	First   int
	Count   int
	HasData bool // false for a version that was never loaded (ex: the missing C of a two-way compare)
}

// Whole returns a Sequence covering all of lines.
func Whole(lines []string, hasData bool) Sequence {
	return Sequence{Lines: lines, Count: len(lines), HasData: hasData}
}

// Window returns the sub-sequence [first, first+count) of s's version. first is an absolute line index.
func (s Sequence) Window(first, count int) Sequence {
	return Sequence{Lines: s.Lines, First: first, Count: count, HasData: s.HasData}
}

func (s Sequence) lines() []string {
	return s.Lines[s.First : s.First+s.Count]
}

// Options controls Build.
type Options struct {
	Classifier      equiv.Classifier // line equivalence rules
	Minimal         bool             // search for a minimal edit script
	SpeedLargeFiles bool
}

// Build returns the diff list from s1 to s2. The result always satisfies Validate(s1.Count, s2.Count).
//
// If either side has no data or no lines, the result is a single span: all-equal if neither side has data and their counts match, all-changed otherwise.
func Build(s1, s2 Sequence, opts Options) List {
	n1, n2 := s1.Count, s2.Count

	if !s1.HasData || !s2.HasData || n1 == 0 || n2 == 0 {
		if !s1.HasData && !s2.HasData && n1 == n2 {
			return List{{Equal: n1}}
		}
		return List{{Deleted: n1, Inserted: n2}}
	}

	a, b := s1.lines(), s2.lines()
	ca, cb, _ := opts.Classifier.Classify(a, b)
	script := editscript.Compare(ca, cb, editscript.Options{
		Minimal:         opts.Minimal,
		SpeedLargeFiles: opts.SpeedLargeFiles,
		Identical:       func(i, j int) bool { return a[i] == b[j] },
	})

	var list List
	cur1, cur2 := 0, 0
	for _, ch := range script {
		list = append(list, Span{Equal: ch.Line0 - cur1, Deleted: ch.Deleted, Inserted: ch.Inserted})
		cur1 = ch.Line0 + ch.Deleted
		cur2 = ch.Line1 + ch.Inserted
	}

	if len(list) == 0 {
		eq := min(n1, n2)
		list = List{{Equal: eq, Deleted: n1 - eq, Inserted: n2 - eq}}
	} else {
		rest1, rest2 := n1-cur1, n2-cur2
		eq := min(rest1, rest2)
		if eq == 0 {
			last := &list[len(list)-1]
			last.Deleted += rest1
			last.Inserted += rest2
		} else {
			list = append(list, Span{Equal: eq, Deleted: rest1 - eq, Inserted: rest2 - eq})
		}
	}

	if err := list.Validate(n1, n2); err != nil {
		invariant.Failf(invariant.SpanSum, "line diff: %v", err)
	}
	return list
}
