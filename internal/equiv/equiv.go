// Package equiv groups lines into equivalence classes under the engine's ignore rules.
//
// Two lines share a class when they are equal after dropping white space (IgnoreWhiteSpace), dropping digits, '-' and '.' (IgnoreNumbers) and lower-casing (IgnoreCase). Classes
// are found with a rolling hash, h = c + rotl(h, 7) over the kept runes; a hash hit is confirmed by exact equality first and LinesDiffer second, so collisions never merge
// unequal lines. Class 0 is reserved and never assigned; real classes start at 1.
package equiv

import (
	"math/bits"
	"unicode"
	"unicode/utf8"
)

// Classifier holds the ignore rules.
type Classifier struct {
	IgnoreWhiteSpace bool
	IgnoreNumbers    bool
	IgnoreCase       bool
}

type class struct {
	rep string // a line in this class
}

// Classify assigns a class to every line of a and b, sharing one class table between them. count is one past the largest class assigned.
func (c Classifier) Classify(a, b []string) (ca, cb []int, count int) {
	t := table{c: c, buckets: make(map[uint64][]int, len(a)+len(b)), classes: []class{{}}}
	ca = make([]int, len(a))
	for i, s := range a {
		ca[i] = t.find(s)
	}
	cb = make([]int, len(b))
	for i, s := range b {
		cb[i] = t.find(s)
	}
	return ca, cb, len(t.classes)
}

type table struct {
	c       Classifier
	buckets map[uint64][]int
	classes []class
}

func (t *table) find(s string) int {
	h := t.c.Hash(s)
	diffLenCompareAnyway := t.c.IgnoreWhiteSpace || t.c.IgnoreNumbers
	sameLenCompareAnyway := diffLenCompareAnyway || t.c.IgnoreCase

	bucket := t.buckets[h]
	for _, id := range bucket {
		rep := t.classes[id].rep
		if len(rep) == len(s) {
			if rep == s {
				return id
			}
			if !sameLenCompareAnyway {
				continue
			}
		} else if !diffLenCompareAnyway {
			continue
		}
		if !t.c.LinesDiffer(rep, s) {
			return id
		}
	}

	id := len(t.classes)
	t.classes = append(t.classes, class{rep: s})
	t.buckets[h] = append(bucket, id)
	return id
}

// Hash returns the rolling hash of s under c's ignore rules.
func (c Classifier) Hash(s string) uint64 {
	var h uint64
	for _, r := range s {
		if c.ignorable(r) {
			continue
		}
		if c.IgnoreCase {
			r = unicode.ToLower(r)
		}
		h = uint64(r) + bits.RotateLeft64(h, 7)
	}
	return h
}

func (c Classifier) ignorable(r rune) bool {
	return (c.IgnoreWhiteSpace && unicode.IsSpace(r)) ||
		(c.IgnoreNumbers && (unicode.IsDigit(r) || r == '-' || r == '.'))
}

// LinesDiffer reports whether s1 and s2 differ under c's ignore rules.
func (c Classifier) LinesDiffer(s1, s2 string) bool {
	i, j := 0, 0
	for {
		r1, n1 := utf8.DecodeRuneInString(s1[i:])
		r2, n2 := utf8.DecodeRuneInString(s2[j:])
		if n1 > 0 && n2 > 0 && r1 == r2 {
			i += n1
			j += n2
			continue
		}

		for n1 > 0 && c.ignorable(r1) {
			i += n1
			r1, n1 = utf8.DecodeRuneInString(s1[i:])
		}
		for n2 > 0 && c.ignorable(r2) {
			j += n2
			r2, n2 = utf8.DecodeRuneInString(s2[j:])
		}

		switch {
		case n1 > 0 && n2 > 0:
			if r1 == r2 || (c.IgnoreCase && unicode.ToLower(r1) == unicode.ToLower(r2)) {
				i += n1
				j += n2
				continue
			}
			return true
		case n1 == 0 && n2 == 0:
			return false
		default:
			return true
		}
	}
}
