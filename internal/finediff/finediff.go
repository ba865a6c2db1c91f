// Package finediff computes character-level diffs between two lines that were aligned on the same row.
//
// Three engines are available: the default windowed greedy matcher, the line diff primitive applied to single characters, and diffmatchpatch with semantic
// cleanup. All of them return a diff.List over runes. Coalesce then folds short equal islands into their neighboring change so highlighting doesn't flicker.
package finediff

import (
	"fmt"
	"unicode/utf8"
	"unsafe"

	"github.com/codalotl/align3/internal/diff"
	"github.com/codalotl/align3/internal/invariant"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Engine selects the character diff algorithm.
type Engine string

const (
	EngineWindow    Engine = "window"    // greedy matcher with a bounded search window (default)
	EnginePrimitive Engine = "primitive" // the line diff primitive on runes
	EngineSemantic  Engine = "semantic"  // diffmatchpatch with semantic cleanup
)

// DefaultMaxSearchRange is the default search window of EngineWindow, in runes.
const DefaultMaxSearchRange = 500

// minEqualRun is the shortest equal run that Coalesce leaves alone.
const minEqualRun = 4

// maxListBytes caps the memory of one fine diff list.
const maxListBytes = 50 << 20

var maxSpans = maxListBytes / int(unsafe.Sizeof(diff.Span{}))

// Options controls Compute.
type Options struct {
	Engine         Engine // "" means EngineWindow
	MaxSearchRange int    // EngineWindow only; <= 0 means DefaultMaxSearchRange
}

// Compute returns the character diff list from s1 to s2, counted in runes. The list is not coalesced.
//
// Compute panics with an *invariant.Error if the list would exceed the size cap or fails its sum invariant.
func Compute(s1, s2 string, opts Options) diff.List {
	r1, r2 := []rune(s1), []rune(s2)

	var list diff.List
	switch opts.Engine {
	case "", EngineWindow:
		searchRange := opts.MaxSearchRange
		if searchRange <= 0 {
			searchRange = DefaultMaxSearchRange
		}
		list = window(r1, r2, 2, searchRange)
	case EnginePrimitive:
		list = primitive(r1, r2)
	case EngineSemantic:
		list = semantic(s1, s2)
	default:
		panic(fmt.Sprintf("finediff: unknown engine %q", opts.Engine))
	}

	if err := list.Validate(len(r1), len(r2)); err != nil {
		invariant.Failf(invariant.SpanSum, "fine diff: %v", err)
	}
	return list
}

// Coalesce folds every equal run shorter than 4 runes that precedes a change into that change, except for the first span when the line also has an equal run
// of 4 or more. It modifies and returns list.
func Coalesce(list diff.List) diff.List {
	useful := false
	for _, s := range list {
		if s.Equal >= minEqualRun {
			useful = true
			break
		}
	}

	for i := range list {
		s := &list[i]
		if s.Equal < minEqualRun && (s.Deleted > 0 || s.Inserted > 0) && !(useful && i == 0) {
			s.Deleted += s.Equal
			s.Inserted += s.Equal
			s.Equal = 0
		}
	}
	return list
}

// window is a greedy matcher: after the common run, it looks for the nearest pair of equal runes (by i1+i2) within maxSearchRange runes of s2. Unless match
// is 1, a candidate must be close to the diagonal or be followed by another matching rune. Each step then checks whether the runes just before the new
// position also match, and if so backs up and redoes the step, since the first match found is not always the best one.
func window(s1, s2 []rune, match, maxSearchRange int) diff.List {
	n1, n2 := len(s1), len(s2)
	var list diff.List
	p1, p2 := 0, 0

	for {
		if len(list) >= maxSpans {
			invariant.Failf(invariant.SizeCap, "fine diff: more than %d spans for lines of %d and %d runes", maxSpans, n1, n2)
		}

		equal := 0
		for p1 < n1 && p2 < n2 && s1[p1] == s2[p2] {
			p1++
			p2++
			equal++
		}

		bestValid := false
		best1, best2 := 0, 0
		for i1 := 0; ; i1++ {
			if p1+i1 == n1 || (bestValid && i1 >= best1+best2) {
				break
			}
			for i2 := 0; i2 < maxSearchRange; i2++ {
				if p2+i2 == n2 || (bestValid && i1+i2 >= best1+best2) {
					break
				}
				if s2[p2+i2] != s1[p1+i1] {
					continue
				}
				last1, last2 := p1+i1+1 == n1, p2+i2+1 == n2
				strict := match == 1 || abs(i1-i2) < 3 || (last1 && last2) || (!last1 && !last2 && s2[p2+i2+1] == s1[p1+i1+1])
				if strict && (!bestValid || i1+i2 < best1+best2) {
					best1, best2 = i1, i2
					bestValid = true
					break
				}
			}
		}

		// The strict search may have skipped equal runes just before the match.
		for best1 >= 1 && best2 >= 1 && s1[p1+best1-1] == s2[p2+best2-1] {
			best1--
			best2--
		}

		endReached := false
		if bestValid {
			list = append(list, diff.Span{Equal: equal, Deleted: best1, Inserted: best2})
			p1 += best1
			p2 += best2
		} else {
			list = append(list, diff.Span{Equal: equal, Deleted: n1 - p1, Inserted: n2 - p2})
			endReached = true
		}

		unmatched := 0
		pu1, pu2 := p1-1, p2-1
		for pu1 >= 0 && pu2 >= 0 && s1[pu1] == s2[pu2] {
			unmatched++
			pu1--
			pu2--
		}

		if unmatched > 0 {
			// Back up over the runes that match from the end and redo the matching from there.
			d := list[len(list)-1]
			orig := d
			list = list[:len(list)-1]

			for unmatched > 0 {
				if d.Deleted > 0 && d.Inserted > 0 {
					d.Deleted--
					d.Inserted--
					unmatched--
				} else if d.Equal > 0 {
					d.Equal--
					unmatched--
				}

				if d.Equal == 0 && (d.Deleted == 0 || d.Inserted == 0) && unmatched > 0 {
					if len(list) == 0 {
						break
					}
					prev := list[len(list)-1]
					d.Equal += prev.Equal
					d.Deleted += prev.Deleted
					d.Inserted += prev.Inserted
					list = list[:len(list)-1]
					endReached = false
				}
			}

			if endReached {
				list = append(list, orig)
			} else {
				p1 = pu1 + 1 + unmatched
				p2 = pu2 + 1 + unmatched
				list = append(list, d)
			}
		}

		if endReached {
			return list
		}
	}
}

// primitive runs the line diff builder with one rune per line.
func primitive(r1, r2 []rune) diff.List {
	split := func(rs []rune) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = string(r)
		}
		return out
	}
	return diff.Build(diff.Whole(split(r1), true), diff.Whole(split(r2), true), diff.Options{})
}

// semantic diffs with diffmatchpatch and converts the result to spans.
func semantic(s1, s2 string) diff.List {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(s1, s2, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var list diff.List
	var cur diff.Span
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			if cur.Deleted > 0 || cur.Inserted > 0 {
				list = append(list, cur)
				cur = diff.Span{}
			}
			cur.Equal += n
		case diffmatchpatch.DiffDelete:
			cur.Deleted += n
		case diffmatchpatch.DiffInsert:
			cur.Inserted += n
		}
	}
	if cur != (diff.Span{}) || len(list) == 0 {
		list = append(list, cur)
	}
	return list
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
