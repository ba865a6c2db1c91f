package align3

import (
	"slices"
	"time"

	"github.com/codalotl/align3/internal/manualalign"
)

// Status summarizes how the versions of a compare relate as a whole.
type Status struct {
	BinaryEqualAB bool // A and B have byte-for-byte identical data
	BinaryEqualAC bool
	BinaryEqualBC bool

	// TextEqualAB is true if every row holds identical A and B text and no row holds a line of only one of them. It is false if either version is empty,
	// binary or absent.
	TextEqualAB bool
	TextEqualAC bool
	TextEqualBC bool
}

// Result is one alignment. It is immutable; Realign returns a new Result.
type Result struct {
	RunID   string // unique per run; also the prefix of the run's log lines
	Rows    []Row
	Status  Status
	Elapsed time.Duration
	Triple  bool // C took part

	versions [3]*Version
	manual   manualalign.List
	tabSize  int
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.Rows)
}

// Line returns the line of version v on row i, or Absent.
func (r *Result) Line(i int, v Selector) int {
	return r.Rows[i].Line(v)
}

// Info returns how version v's line on row i compares with the other versions.
func (r *Result) Info(i int, v Selector) LineInfo {
	return r.Rows[i].Info(v, r.Triple)
}

// Version returns the version aligned as v.
func (r *Result) Version(v Selector) *Version {
	return r.versions[v]
}

// Text returns the text of line of version v, as loaded.
func (r *Result) Text(v Selector, line int) string {
	return r.versions[v].Display().String(line)
}

// Manual returns the manual alignment entries the result was built with.
func (r *Result) Manual() []ManualEntry {
	return slices.Clone(r.manual)
}

// ManualFirstRow returns the first row holding a first line of the i-th manual entry, or -1 if no row does.
func (r *Result) ManualFirstRow(i int) int {
	if i < 0 || i >= len(r.manual) {
		return -1
	}
	return r.manual[i].FirstRow(r)
}
