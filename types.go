package align3

import (
	"github.com/codalotl/align3/internal/config"
	"github.com/codalotl/align3/internal/diff"
	"github.com/codalotl/align3/internal/diff3"
	"github.com/codalotl/align3/internal/invariant"
	"github.com/codalotl/align3/internal/manualalign"
	"github.com/codalotl/align3/internal/source"
)

type (
	// Version is one loaded input. Create it with Engine.NewVersion or AbsentVersion.
	Version = source.Version

	// Selector names a version: A, B or C.
	Selector = source.Selector

	// Row is one row of an alignment. Line fields are Absent when the version has no line on the row.
	Row = diff3.Row

	// Pair names a version pair of the fine diff: PairAB, PairBC or PairCA.
	Pair = diff3.Pair

	// LineInfo is how one version's line on a row compares with the two others.
	LineInfo = diff3.LineInfo

	// Change is a bit set of LineInfo comparison slots.
	Change = diff3.Change

	// Span is one step of a character diff: Equal runes, then Deleted runes of the first side and Inserted runes of the second.
	Span = diff.Span

	// Options are the comparison settings.
	Options = config.Options

	// ManualEntry is one manual alignment entry.
	ManualEntry = manualalign.Entry

	// InternalError reports that the engine broke one of its own invariants. It is never caused by the input alone.
	InternalError = invariant.Error
)

const (
	A = source.A
	B = source.B
	C = source.C
)

const (
	PairAB = diff3.PairAB
	PairBC = diff3.PairBC
	PairCA = diff3.PairCA
)

const (
	ChangeSlot1 = diff3.ChangeSlot1
	ChangeSlot2 = diff3.ChangeSlot2
)

// Absent is the line number of a version missing from a row.
const Absent = diff3.Absent

// DefaultOptions returns the default comparison settings.
func DefaultOptions() Options {
	return config.Default()
}

// LoadOptions returns the default settings overridden by the YAML file at path (if it exists) and by ALIGN3_* environment variables.
func LoadOptions(path string) (Options, error) {
	l := config.New().WithDefaults()
	if path != "" {
		l.WithFile(path)
	}
	opts, _, err := l.WithEnv(config.EnvPrefix).Load()
	return opts, err
}

// AbsentVersion returns a version without data, the missing C of a two-way compare.
func AbsentVersion(name string) *Version {
	return source.Absent(name)
}
