package align3

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codalotl/align3/internal/diff"
	"github.com/codalotl/align3/internal/finediff"
	"github.com/codalotl/align3/internal/invariant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const x = Absent

func newEngine(t *testing.T, mutate func(*Options)) *Engine {
	t.Helper()
	opts := DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func load(e *Engine, name string, lines ...string) *Version {
	return e.NewVersion(name, []byte(strings.Join(lines, "\n")))
}

func triples(res *Result) [][3]int {
	out := make([][3]int, len(res.Rows))
	for i, r := range res.Rows {
		out[i] = [3]int{r.A, r.B, r.C}
	}
	return out
}

// assertComplete checks that every line of every version appears exactly once, in order.
func assertComplete(t *testing.T, res *Result) {
	t.Helper()
	for _, v := range []Selector{A, B, C} {
		want := 0
		for i := range res.Rows {
			l := res.Line(i, v)
			if l == Absent {
				continue
			}
			require.Equal(t, want, l, "version %s row %d", v, i)
			want++
		}
		require.Equal(t, res.Version(v).LineCount(), want, "version %s", v)
	}
}

func TestCompare_Identical(t *testing.T) {
	e := newEngine(t, nil)
	a, b, c := load(e, "a", "x", "y", "z"), load(e, "b", "x", "y", "z"), load(e, "c", "x", "y", "z")

	res, err := e.Compare(context.Background(), a, b, c)
	require.NoError(t, err)
	assert.True(t, res.Triple)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, [][3]int{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}, triples(res))
	for i, r := range res.Rows {
		assert.True(t, r.EqAB && r.EqAC && r.EqBC, "row %d", i)
		assert.Empty(t, r.FineAB)
		assert.Empty(t, r.FineBC)
		assert.Empty(t, r.FineCA)
	}
	assert.Equal(t, Status{
		BinaryEqualAB: true, BinaryEqualAC: true, BinaryEqualBC: true,
		TextEqualAB: true, TextEqualAC: true, TextEqualBC: true,
	}, res.Status)
}

func TestCompare_TwoWay(t *testing.T) {
	e := newEngine(t, nil)
	a, b := load(e, "a", "a", "b", "c"), load(e, "b", "a", "x", "c")

	for _, c := range []*Version{nil, AbsentVersion("c")} {
		res, err := e.Compare(context.Background(), a, b, c)
		require.NoError(t, err)
		assert.False(t, res.Triple)
		assert.Equal(t, [][3]int{{0, 0, x}, {1, 1, x}, {2, 2, x}}, triples(res))
		assert.Equal(t, []bool{true, false, true}, []bool{res.Rows[0].EqAB, res.Rows[1].EqAB, res.Rows[2].EqAB})
		assert.NotEmpty(t, res.Rows[1].FineAB)
		assert.Equal(t, Status{}, res.Status)

		info := res.Info(1, A)
		assert.Equal(t, 1, info.Line)
		assert.Equal(t, ChangeSlot1, info.Content)
		assert.Zero(t, info.Presence)
		assert.Equal(t, "x", res.Text(B, 1))
	}
}

func TestCompare_TwoWayFirstLineReplaced(t *testing.T) {
	e := newEngine(t, nil)
	a, b := load(e, "a", "x", "b", "c", "d"), load(e, "b", "y", "b", "c", "d")

	res, err := e.Compare(context.Background(), a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, diff.List{{Equal: 0, Deleted: 1, Inserted: 1}, {Equal: 3}}, e.last.ab)
	assert.Equal(t, [][3]int{{0, 0, x}, {1, 1, x}, {2, 2, x}, {3, 3, x}}, triples(res))
	assert.Equal(t, []bool{false, true, true, true}, []bool{res.Rows[0].EqAB, res.Rows[1].EqAB, res.Rows[2].EqAB, res.Rows[3].EqAB})
	assertComplete(t, res)
}

func TestCompare_EmptyVersionStatus(t *testing.T) {
	e := newEngine(t, nil)
	cases := []struct {
		name string
		a, b []byte
		c    *Version
		want Status
	}{
		{name: "both empty", a: []byte{}, b: []byte{}, want: Status{BinaryEqualAB: true}},
		{name: "empty b", a: []byte("x"), b: []byte{}, want: Status{}},
		{name: "empty a", a: []byte{}, b: []byte("x"), want: Status{}},
		{name: "both empty three-way", a: []byte{}, b: []byte{}, c: e.NewVersion("c", []byte("x")), want: Status{BinaryEqualAB: true}},
		{name: "empty b three-way", a: []byte("x"), b: []byte{}, c: e.NewVersion("c", []byte("x")), want: Status{BinaryEqualAC: true, TextEqualAC: true}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := e.Compare(context.Background(), e.NewVersion("a", c.a), e.NewVersion("b", c.b), c.c)
			require.NoError(t, err)
			assert.Equal(t, c.want, res.Status)
		})
	}
}

func TestCompare_InsertedCLine(t *testing.T) {
	e := newEngine(t, nil)
	a, b, c := load(e, "a", "1", "2", "3"), load(e, "b", "1", "2", "3"), load(e, "c", "1", "new", "2", "3")

	res, err := e.Compare(context.Background(), a, b, c)
	require.NoError(t, err)
	assert.Equal(t, [][3]int{{0, 0, 0}, {x, x, 1}, {1, 1, 2}, {2, 2, 3}}, triples(res))
	assert.Equal(t, Status{BinaryEqualAB: true, TextEqualAB: true}, res.Status)

	info := res.Info(1, C)
	assert.Equal(t, ChangeSlot1|ChangeSlot2, info.Presence)
	assert.Equal(t, ChangeSlot1|ChangeSlot2, info.Content)
}

func TestCompare_AlignBC(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.AlignBC = true })
	a, b, c := load(e, "a", "1", "2"), load(e, "b", "x", "2"), load(e, "c", "x", "2")

	res, err := e.Compare(context.Background(), a, b, c)
	require.NoError(t, err)
	assertComplete(t, res)

	found := false
	for _, r := range res.Rows {
		if r.B == 0 && r.C == 0 {
			found = true
			assert.True(t, r.EqBC)
		}
	}
	assert.True(t, found, "B0 and C0 should share a row")
	assert.True(t, res.Status.TextEqualBC)
	assert.True(t, res.Status.BinaryEqualBC)
	assert.False(t, res.Status.TextEqualAB)
}

func TestCompare_IgnoreWhiteSpace(t *testing.T) {
	cases := []struct {
		ignore bool
		wantEq bool
	}{
		{ignore: true, wantEq: true},
		{ignore: false, wantEq: false},
	}
	for _, c := range cases {
		e := newEngine(t, func(o *Options) { o.IgnoreWhiteSpace = c.ignore })
		res, err := e.Compare(context.Background(), load(e, "a", "a b"), load(e, "b", "a  b"), nil)
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, c.wantEq, res.Rows[0].EqAB, "ignore=%v", c.ignore)
		assert.False(t, res.Status.TextEqualAB)
	}
}

func TestCompare_IgnoreCase(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.CaseSensitive = false })
	res, err := e.Compare(context.Background(), load(e, "a", "Hello", "x"), load(e, "b", "hello", "x"), nil)
	require.NoError(t, err)
	assert.Equal(t, [][3]int{{0, 0, x}, {1, 1, x}}, triples(res))
	assert.True(t, res.Rows[0].EqAB)
	assert.NotEmpty(t, res.Rows[0].FineAB)
}

func TestCompare_DegenerateInputs(t *testing.T) {
	e := newEngine(t, nil)
	text := load(e, "text", "x")

	cases := []struct {
		name string
		a, b *Version
		want [][3]int
		bin  bool
	}{
		{name: "binary a", a: e.NewVersion("bin", []byte("a\x00b")), b: text, want: [][3]int{{x, 0, x}}},
		{name: "empty a", a: e.NewVersion("empty", []byte{}), b: text, want: [][3]int{{x, 0, x}}},
		{name: "absent a", a: AbsentVersion("a"), b: text, want: [][3]int{{x, 0, x}}},
		{name: "both empty", a: e.NewVersion("e1", []byte{}), b: e.NewVersion("e2", []byte{}), want: [][3]int{}, bin: true},
		{name: "binary equal", a: e.NewVersion("b1", []byte("\x00")), b: e.NewVersion("b2", []byte("\x00")), want: [][3]int{}, bin: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := e.Compare(context.Background(), c.a, c.b, nil)
			require.NoError(t, err)
			assert.Equal(t, c.want, triples(res))
			assert.Equal(t, c.bin, res.Status.BinaryEqualAB)
			assert.False(t, res.Status.TextEqualAB)
			assertComplete(t, res)
		})
	}
}

func TestCompare_Errors(t *testing.T) {
	e := newEngine(t, nil)
	a := load(e, "a", "x")

	_, err := e.Compare(context.Background(), nil, a, nil)
	assert.ErrorIs(t, err, ErrMissingVersion)
	_, err = e.Compare(context.Background(), a, nil, a)
	assert.ErrorIs(t, err, ErrMissingVersion)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Compare(ctx, a, a, a)
	assert.ErrorIs(t, err, context.Canceled)

	bad := DefaultOptions()
	bad.TabSize = 0
	_, err = New(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")
	_, err = New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TabSize")

	e.opts.TabSize = 0
	_, err = e.Compare(context.Background(), a, a, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")
	var ie *InternalError
	assert.False(t, errors.As(err, &ie))
}

func TestCompare_InternalError(t *testing.T) {
	e := newEngine(t, nil)
	a, b := load(e, "a", "x", "y"), load(e, "b", "x", "y")

	// Cached lists that don't match the versions make the completeness check fail.
	st := &state{a: a, b: b, c: AbsentVersion(""), diffed: true, ab: diff.List{{Equal: 5}}}
	e.mu.Lock()
	res, err := e.run(context.Background(), "compare", st)
	e.mu.Unlock()

	assert.Nil(t, res)
	var ie *InternalError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, invariant.Completeness, ie.Kind)
}

func TestManualAlignment(t *testing.T) {
	e := newEngine(t, nil)
	a, b := load(e, "a", "p", "q", "r"), load(e, "b", "q", "r", "p")

	e.InsertManual(A, 0, 0)
	e.InsertManual(B, 2, 2)
	require.Len(t, e.Manual(), 1)

	res, err := e.Compare(context.Background(), a, b, nil)
	require.NoError(t, err)
	assertComplete(t, res)

	row := res.ManualFirstRow(0)
	require.GreaterOrEqual(t, row, 0)
	assert.Equal(t, 0, res.Rows[row].A)
	assert.Equal(t, 2, res.Rows[row].B)
	assert.True(t, res.Rows[row].EqAB)
	assert.Equal(t, -1, res.ManualFirstRow(1))
	assert.Len(t, res.Manual(), 1)

	e.ClearManual()
	assert.Empty(t, e.Manual())
}

func TestRealign(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.Realign(context.Background())
	assert.ErrorIs(t, err, ErrNoCompare)

	a, b, c := load(e, "a", "p", "q", "r"), load(e, "b", "q", "r", "p"), load(e, "c", "p", "q", "r")
	first, err := e.Compare(context.Background(), a, b, c)
	require.NoError(t, err)

	again, err := e.Realign(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Rows, again.Rows)
	assert.NotEqual(t, first.RunID, again.RunID)

	e.InsertManual(A, 0, 0)
	e.InsertManual(B, 2, 2)
	pinned, err := e.Realign(context.Background())
	require.NoError(t, err)
	assertComplete(t, pinned)
	row := pinned.ManualFirstRow(0)
	require.GreaterOrEqual(t, row, 0)
	assert.Equal(t, 0, pinned.Rows[row].A)
	assert.Equal(t, 2, pinned.Rows[row].B)

	e.ClearManual()
	cleared, err := e.Realign(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Rows, cleared.Rows)
}

func randomLines(rng *rand.Rand) []string {
	alphabet := []string{"a", "b", "c", "d", "", " a", "// c", "a b"}
	lines := make([]string, rng.Intn(12))
	for i := range lines {
		lines[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return lines
}

func TestCompare_RandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	mutations := []func(*Options){
		nil,
		func(o *Options) { o.AlignBC = true },
		func(o *Options) { o.IgnoreComments = true; o.IgnoreNumbers = true },
		func(o *Options) { o.IgnoreWhiteSpace = false; o.Minimal = false },
		func(o *Options) { o.FineDiff.Engine = finediff.EngineSemantic; o.AlignBC = true },
	}

	for iter := 0; iter < 200; iter++ {
		mutate := mutations[iter%len(mutations)]
		seq := newEngine(t, mutate)
		par := newEngine(t, func(o *Options) {
			if mutate != nil {
				mutate(o)
			}
			o.Parallel = true
		})

		la, lb, lc := randomLines(rng), randomLines(rng), randomLines(rng)
		if iter%3 == 0 {
			for _, e := range []*Engine{seq, par} {
				e.InsertManual(A, 0, 0)
				e.InsertManual(C, 0, 0)
			}
		}

		res, err := seq.Compare(context.Background(), load(seq, "a", la...), load(seq, "b", lb...), load(seq, "c", lc...))
		require.NoError(t, err, "iter %d", iter)
		assertComplete(t, res)

		again, err := seq.Compare(context.Background(), load(seq, "a", la...), load(seq, "b", lb...), load(seq, "c", lc...))
		require.NoError(t, err)
		assert.Equal(t, res.Rows, again.Rows, "iter %d: not deterministic", iter)

		pres, err := par.Compare(context.Background(), load(par, "a", la...), load(par, "b", lb...), load(par, "c", lc...))
		require.NoError(t, err)
		assert.Equal(t, res.Rows, pres.Rows, "iter %d: parallel differs", iter)
		assert.Equal(t, res.Status, pres.Status, "iter %d", iter)
	}
}

func TestManualAlignment_RandomPins(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iter := 0; iter < 200; iter++ {
		alignBC := iter%2 == 0
		triple := iter%4 < 2
		e := newEngine(t, func(o *Options) { o.AlignBC = alignBC })

		a, b := load(e, "a", randomLines(rng)...), load(e, "b", randomLines(rng)...)
		var c *Version
		if triple {
			c = load(e, "c", randomLines(rng)...)
		}
		if a.LineCount() == 0 || b.LineCount() == 0 || (triple && c.LineCount() == 0) {
			continue
		}

		pins := map[Selector]int{A: rng.Intn(a.LineCount()), B: rng.Intn(b.LineCount())}
		if triple {
			pins[C] = rng.Intn(c.LineCount())
		}
		for _, v := range []Selector{A, B, C} {
			if l, ok := pins[v]; ok {
				e.InsertManual(v, l, l)
			}
		}

		res, err := e.Compare(context.Background(), a, b, c)
		require.NoError(t, err, "iter %d", iter)
		assertComplete(t, res)

		row := -1
		for i := range res.Rows {
			if res.Rows[i].A == pins[A] {
				row = i
			}
		}
		require.GreaterOrEqual(t, row, 0, "iter %d", iter)
		assert.Equal(t, row, res.ManualFirstRow(0), "iter %d", iter)
		assert.Equal(t, pins[B], res.Rows[row].B, "iter %d: alignBC=%v triple=%v pins=%v", iter, alignBC, triple, pins)
		if triple {
			assert.Equal(t, pins[C], res.Rows[row].C, "iter %d: alignBC=%v pins=%v", iter, alignBC, pins)
		}
	}
}

func TestDump(t *testing.T) {
	e := newEngine(t, nil)
	res, err := e.Compare(context.Background(), load(e, "base", "same", "old\tline"), load(e, "mine", "same", "new\tline"), nil)
	require.NoError(t, err)

	plain := res.Dump(false)
	lines := strings.Split(strings.TrimSuffix(plain, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "base")
	assert.Contains(t, lines[0], "mine")
	assert.True(t, strings.HasPrefix(lines[1], "   0 =.."))
	assert.True(t, strings.HasPrefix(lines[2], "   1 ..."))
	assert.Contains(t, lines[2], "old     line")
	assert.Contains(t, lines[2], "new     line")
	assert.NotContains(t, plain, "\x1b")

	colored := res.Dump(true)
	assert.Contains(t, colored, "\x1b[48;5;224m")
	assert.Contains(t, colored, "\x1b[48;5;217m")
	assert.Contains(t, colored, "\x1b[48;5;114m")
}

func TestDump_Truncates(t *testing.T) {
	e := newEngine(t, nil)
	long := strings.Repeat("x", maxDumpWidth+20)
	res, err := e.Compare(context.Background(), load(e, "a", long), load(e, "b", "y"), nil)
	require.NoError(t, err)

	plain := res.Dump(false)
	assert.NotContains(t, plain, long)
	assert.Contains(t, plain, strings.Repeat("x", maxDumpWidth))
}

func TestChangedRunes(t *testing.T) {
	cases := []struct {
		name   string
		list   diff.List
		text   string
		second bool
		want   []bool
	}{
		{name: "unchanged", list: diff.List{{Equal: 3}}, text: "abc", want: nil},
		{name: "replace first side", list: diff.List{{Equal: 1, Deleted: 1, Inserted: 2}, {Equal: 1}}, text: "abc", want: []bool{false, true, false}},
		{name: "replace second side", list: diff.List{{Equal: 1, Deleted: 1, Inserted: 2}, {Equal: 1}}, text: "axyc", second: true, want: []bool{false, true, true, false}},
		{name: "insert leaves first side", list: diff.List{{Equal: 2, Inserted: 1}}, text: "ab", want: []bool{false, false}},
		{name: "delete leaves second side", list: diff.List{{Deleted: 1, Equal: 2}}, text: "bc", second: true, want: []bool{false, false}},
		{name: "delete", list: diff.List{{Equal: 0, Deleted: 1}, {Equal: 2}}, text: "abc", want: []bool{true, false, false}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, changedRunes(c.list, c.text, c.second))
		})
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "align3.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tab_size: 4\nignore_numbers: true\n"), 0o644))
	t.Setenv("ALIGN3_ALIGN_BC", "true")

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	want := DefaultOptions()
	want.TabSize = 4
	want.IgnoreNumbers = true
	want.AlignBC = true
	assert.Equal(t, want, opts)

	t.Setenv("ALIGN3_TAB_SIZE", "100")
	_, err = LoadOptions("")
	assert.Error(t, err)
}
