// Package invariant reports internal consistency failures of the alignment engine.
//
// A violated invariant means the engine itself is broken, not that the input is bad. Code that detects one calls Failf, which panics with an *Error. The public entry points
// recover that panic with Recover and hand the *Error back to the caller, so a host can log it and abort the current compare without the process going down. Panics that are
// not an *Error are re-raised untouched.
package invariant

import "fmt"

// Kind classifies an internal consistency failure.
type Kind int

const (
	// SpanSum: a two-way diff list does not add up to the lengths of its sequences.
	SpanSum Kind = iota + 1

	// Completeness: some version's lines do not appear exactly once, in order, in the alignment.
	Completeness

	// SizeCap: a fine diff grew past the hard ceiling on intermediate results.
	SizeCap

	// Structure: any other broken internal assumption (ex: a row handle that points nowhere).
	Structure
)

func (k Kind) String() string {
	switch k {
	case SpanSum:
		return "span-sum"
	case Completeness:
		return "completeness"
	case SizeCap:
		return "size-cap"
	case Structure:
		return "structure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is an internal consistency failure.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("internal consistency failure (%s): %s", e.Kind, e.Detail)
}

// Failf panics with an *Error of kind k.
func Failf(k Kind, format string, args ...any) {
	panic(&Error{Kind: k, Detail: fmt.Sprintf(format, args...)})
}

// Recover converts a panicking *Error into *errp. It must be deferred directly:
//
//	defer invariant.Recover(&err)
//
// Any other panic value is re-raised.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*errp = e
		return
	}
	panic(r)
}
