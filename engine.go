package align3

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/codalotl/align3/internal/config"
	"github.com/codalotl/align3/internal/diff"
	"github.com/codalotl/align3/internal/diff3"
	"github.com/codalotl/align3/internal/equiv"
	"github.com/codalotl/align3/internal/finediff"
	"github.com/codalotl/align3/internal/invariant"
	"github.com/codalotl/align3/internal/manualalign"
	"github.com/codalotl/align3/internal/simplelogger"
	"github.com/codalotl/align3/internal/source"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrMissingVersion is returned by Compare when A or B is nil.
	ErrMissingVersion = errors.New("align3: versions A and B are required")

	// ErrNoCompare is returned by Realign when the engine has not compared anything yet.
	ErrNoCompare = errors.New("align3: nothing to realign")
)

// Engine aligns versions under fixed Options. It keeps the manual alignment entries and the inputs and pairwise diff lists of the last run, so Realign can
// redo the alignment after the entries change. An Engine is safe for concurrent use; runs are serialized.
type Engine struct {
	opts Options
	tel  telemetry

	mu     sync.Mutex
	manual manualalign.List
	last   *state
}

// state is the input of one run and the pairwise lists computed for it.
type state struct {
	a, b, c *Version

	diffed bool
	manual manualalign.List // entries the lists were split with
	ab     diff.List
	ac     diff.List
	bc     diff.List
}

func (st *state) version(v Selector) *Version {
	switch v {
	case A:
		return st.a
	case B:
		return st.b
	}
	return st.c
}

// New returns an Engine using opts, or an error if opts are invalid.
func New(opts Options, options ...EngineOption) (*Engine, error) {
	if err := config.Validate(opts); err != nil {
		return nil, err
	}
	e := &Engine{opts: opts}
	for _, o := range options {
		o(e)
	}
	return e, nil
}

// Options returns the engine's options.
func (e *Engine) Options() Options {
	return e.opts
}

// NewVersion loads data as a version compared under the engine's options. nil data yields an absent version. data must not be modified afterwards.
func (e *Engine) NewVersion(name string, data []byte) *Version {
	return source.NewVersion(name, data, source.Options{
		IgnoreComments: e.opts.IgnoreComments,
		IgnoreCase:     !e.opts.CaseSensitive,
	})
}

// InsertManual adds a manual alignment entry for lines [first, last] of version v. Ranges of v that overlap it are dropped. The entry takes effect on the
// next Compare or Realign.
func (e *Engine) InsertManual(v Selector, first, last int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manual.Insert(v, first, last)
}

// ClearManual removes all manual alignment entries.
func (e *Engine) ClearManual() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manual.Clear()
}

// Manual returns a copy of the manual alignment entries.
func (e *Engine) Manual() []ManualEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.manual)
}

// Compare aligns a, b and c. c may be nil (or absent) for a two-way compare.
//
// Cancelling ctx stops the run at the next phase boundary with ctx.Err(). If the engine breaks one of its internal invariants the error is an
// *InternalError.
func (e *Engine) Compare(ctx context.Context, a, b, c *Version) (*Result, error) {
	if a == nil || b == nil {
		return nil, ErrMissingVersion
	}
	if c == nil {
		c = source.Absent("")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st := &state{a: a, b: b, c: c}
	res, err := e.run(ctx, "compare", st)
	if err == nil {
		e.last = st
	}
	return res, err
}

// Realign aligns the versions of the last successful Compare again, with the current manual alignment entries. The pairwise diffs are reused when the
// entries have not changed since they were computed.
func (e *Engine) Realign(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.last == nil {
		return nil, ErrNoCompare
	}
	return e.run(ctx, "realign", e.last)
}

// run wraps align with a span and metrics. e.mu must be held.
func (e *Engine) run(ctx context.Context, op string, st *state) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx, span := e.tel.start(ctx, "align3."+op,
		attribute.String("align3.run_id", runID),
		attribute.Bool("align3.triple", st.c.HasData()),
		attribute.Int("align3.lines.a", st.a.LineCount()),
		attribute.Int("align3.lines.b", st.b.LineCount()),
		attribute.Int("align3.lines.c", st.c.LineCount()),
		attribute.Int("align3.manual", len(e.manual)),
	)

	res, err := e.align(ctx, runID, st)

	elapsed := time.Since(start)
	rows := 0
	if res != nil {
		res.Elapsed = elapsed
		rows = len(res.Rows)
		span.SetAttributes(attribute.Int("align3.rows", rows))
	}
	e.tel.record(ctx, op, elapsed, rows, err)
	endSpan(span, err)
	return res, err
}

// align runs the pipeline. e.mu must be held.
func (e *Engine) align(ctx context.Context, runID string, st *state) (res *Result, err error) {
	defer invariant.Recover(&err)

	if err := config.Validate(e.opts); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := simplelogger.New(runID[:8])
	triple := st.c.HasData()
	manual := slices.Clone(e.manual)
	log.Log("Enter: align triple=%v lines=%d/%d/%d manual=%d", triple, st.a.LineCount(), st.b.LineCount(), st.c.LineCount(), len(manual))

	if err := e.pairLists(ctx, st, manual, triple, log); err != nil {
		return nil, err
	}

	b := diff3.NewBuilder(log)
	texts := [3]*source.Text{st.a.Match(), st.b.Match(), st.c.Match()}
	trimOpts := diff3.TrimOptions{IgnoreWhiteSpace: e.opts.IgnoreWhiteSpace}

	type step struct {
		name string
		fn   func()
	}
	correct := []step{
		{"correct_manual", func() { b.CorrectManual(manual) }},
		{"trim", func() { b.Trim(texts, manual, trimOpts) }},
	}
	steps := []step{{"seed_ab", func() { b.SeedAB(st.ab) }}}
	switch {
	case triple:
		steps = append(steps, step{"merge_ac", func() { b.MergeAC(st.ac) }})
		steps = append(steps, correct...)
		if e.opts.AlignBC {
			steps = append(steps, step{"reconcile_bc", func() { b.ReconcileBC(st.bc) }})
			steps = append(steps, correct...)
		}
	case len(manual) > 0:
		steps = append(steps, correct...)
	}
	steps = append(steps,
		step{"check", func() {
			b.Check(A, st.a.LineCount())
			b.Check(B, st.b.LineCount())
			b.Check(C, st.c.LineCount())
		}},
		step{"mark_white", func() { b.MarkWhite(texts, e.opts.IgnoreComments) }},
	)

	for _, s := range steps {
		if err := e.phase(ctx, s.name, b, s.fn); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	textEqual, err := e.fineDiffs(ctx, st, b)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	status := Status{
		BinaryEqualAB: st.a.BinaryEqual(st.b),
		BinaryEqualAC: st.a.BinaryEqual(st.c),
		BinaryEqualBC: st.c.BinaryEqual(st.b),
		TextEqualAB:   textEqual[diff3.PairAB],
		TextEqualBC:   textEqual[diff3.PairBC],
		TextEqualAC:   textEqual[diff3.PairCA],
	}
	if st.a.SizeBytes() == 0 {
		status.TextEqualAB, status.TextEqualAC = false, false
	}
	if st.b.SizeBytes() == 0 {
		status.TextEqualAB, status.TextEqualBC = false, false
	}

	log.Log("Leave: align rows=%d status=%+v", b.Len(), status)
	return &Result{
		RunID:    runID,
		Rows:     b.Rows(),
		Status:   status,
		Triple:   triple,
		versions: [3]*Version{st.a, st.b, st.c},
		manual:   manual,
		tabSize:  e.opts.TabSize,
	}, nil
}

// phase runs one alignment step in its own span, unless ctx is already done.
func (e *Engine) phase(ctx context.Context, name string, b *diff3.Builder, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, span := e.tel.start(ctx, "align3.phase."+name, attribute.Int("align3.rows", b.Len()))
	defer span.End()
	fn()
	return nil
}

// pairLists fills st's pairwise diff lists unless they were already computed with the same manual entries.
func (e *Engine) pairLists(ctx context.Context, st *state, manual manualalign.List, triple bool, log simplelogger.Logger) error {
	if st.diffed && slices.Equal(st.manual, manual) {
		log.Log("pair lists reused")
		return nil
	}
	st.diffed = false

	opts := diff.Options{
		Classifier: equiv.Classifier{
			IgnoreWhiteSpace: e.opts.IgnoreWhiteSpace,
			IgnoreNumbers:    e.opts.IgnoreNumbers,
			IgnoreCase:       !e.opts.CaseSensitive,
		},
		Minimal:         e.opts.Minimal,
		SpeedLargeFiles: e.opts.SpeedLargeFiles,
	}
	seq := func(v *Version) diff.Sequence {
		t := v.Match()
		return diff.Whole(t.Strings(0, t.Len()), v.HasData())
	}
	seqs := [3]diff.Sequence{seq(st.a), seq(st.b), seq(st.c)}

	pair := func(dst *diff.List, v1, v2 Selector) func() error {
		return func() (err error) {
			defer invariant.Recover(&err)
			_, span := e.tel.start(ctx, "align3.pair_diff", attribute.String("align3.pair", v1.String()+v2.String()))
			defer span.End()
			*dst = manual.RunDiff(seqs[v1], seqs[v2], v1, v2, opts)
			ops := map[string]int{}
			for _, s := range *dst {
				ops[s.Op().String()]++
			}
			span.SetAttributes(attribute.Bool("align3.changed", dst.Changed()))
			log.With(v1.String()+v2.String()).Log("pair diff spans=%d ops=%v", len(*dst), ops)
			return nil
		}
	}
	jobs := []func() error{pair(&st.ab, A, B)}
	if triple {
		jobs = append(jobs, pair(&st.ac, A, C))
		if e.opts.AlignBC {
			jobs = append(jobs, pair(&st.bc, B, C))
		}
	}
	if err := e.fanOut(ctx, jobs); err != nil {
		return err
	}

	st.diffed = true
	st.manual = manual
	return nil
}

// fineDiffs annotates the rows with the fine diff of every pair whose versions both hold text. It returns the text equality of each pair.
func (e *Engine) fineDiffs(ctx context.Context, st *state, b *diff3.Builder) ([3]bool, error) {
	var equal [3]bool
	opts := diff3.FineOptions{
		IgnoreComments:   e.opts.IgnoreComments,
		IgnoreWhiteSpace: e.opts.IgnoreWhiteSpace,
		Diff: finediff.Options{
			Engine:         e.opts.FineDiff.Engine,
			MaxSearchRange: e.opts.FineDiff.MaxSearchRange,
		},
	}

	var jobs []func() error
	for _, p := range []diff3.Pair{diff3.PairAB, diff3.PairBC, diff3.PairCA} {
		v1, v2 := p.Versions()
		x, y := st.version(v1), st.version(v2)
		if !x.HasData() || !y.HasData() || !x.IsText() || !y.IsText() {
			continue
		}
		jobs = append(jobs, func() (err error) {
			defer invariant.Recover(&err)
			_, span := e.tel.start(ctx, "align3.fine_diff", attribute.String("align3.pair", p.String()))
			defer span.End()
			equal[p] = b.FineDiff(p, x.Display(), y.Display(), opts)
			return nil
		})
	}
	err := e.fanOut(ctx, jobs)
	return equal, err
}

// fanOut runs jobs, concurrently if the Parallel option is set. Sequential runs check ctx between jobs.
func (e *Engine) fanOut(ctx context.Context, jobs []func() error) error {
	if !e.opts.Parallel || len(jobs) < 2 {
		for _, job := range jobs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := job(); err != nil {
				return err
			}
		}
		return ctx.Err()
	}

	var g errgroup.Group
	for _, job := range jobs {
		g.Go(job)
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
