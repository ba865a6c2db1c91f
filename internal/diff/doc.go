// Package diff builds two-way diff lists between line sequences.
//
// Representation: A List is an ordered slice of Spans. Each Span is a run of Equal aligned lines, followed by Deleted lines present only in the first
// sequence and Inserted lines present only in the second:
//
//	first:  [Equal lines][Deleted lines ]
//	second: [Equal lines][Inserted lines]
//
// A Span's non-equal part has an Op:
//   - OpEqual: Deleted == 0 && Inserted == 0
//   - OpInsert: Deleted == 0 && Inserted > 0
//   - OpDelete: Deleted > 0 && Inserted == 0
//   - OpReplace: both are positive
//
// Invariants (checked by Validate):
//   - sum(Span.Equal + Span.Deleted) == length of the first sequence
//   - sum(Span.Equal + Span.Inserted) == length of the second sequence
//   - every field is non-negative
//
// The same List type is used for line-level diffs (Build) and for character-level diffs within a line (package finediff).
//
// Getting a list: Use Build with two Sequences:
//
//	l := diff.Build(diff.Whole(linesA, true), diff.Whole(linesB, true), diff.Options{Classifier: equiv.Classifier{IgnoreWhiteSpace: true}})
//
// Build never returns a List that fails Validate: a violation is an internal consistency failure and panics with an *invariant.Error.
package diff
