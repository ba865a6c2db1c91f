package diff

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/codalotl/align3/internal/equiv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	ws := Options{Classifier: equiv.Classifier{IgnoreWhiteSpace: true}}

	cases := []struct {
		name string
		a, b Sequence
		opts Options
		want List
	}{
		{
			name: "first line differs",
			a:    Whole([]string{"x", "b", "c", "d"}, true),
			b:    Whole([]string{"y", "b", "c", "d"}, true),
			want: List{{Equal: 0, Deleted: 1, Inserted: 1}, {Equal: 3}},
		},
		{
			name: "middle line differs",
			a:    Whole([]string{"1", "4", "3"}, true),
			b:    Whole([]string{"1", "2", "3"}, true),
			want: List{{Equal: 1, Deleted: 1, Inserted: 1}, {Equal: 1}},
		},
		{
			name: "identical",
			a:    Whole([]string{"a", "b"}, true),
			b:    Whole([]string{"a", "b"}, true),
			want: List{{Equal: 2}},
		},
		{
			name: "trailing insert folds into last span",
			a:    Whole([]string{"a", "b"}, true),
			b:    Whole([]string{"a", "b", "c"}, true),
			want: List{{Equal: 2, Deleted: 0, Inserted: 1}},
		},
		{
			name: "white space ignored",
			a:    Whole([]string{"int x = 1;", "y"}, true),
			b:    Whole([]string{"int  x=1;", "y"}, true),
			opts: ws,
			want: List{{Equal: 2}},
		},
		{
			name: "white space significant",
			a:    Whole([]string{"int x = 1;", "y"}, true),
			b:    Whole([]string{"int  x=1;", "y"}, true),
			want: List{{Equal: 0, Deleted: 1, Inserted: 1}, {Equal: 1}},
		},
		{
			name: "both absent",
			a:    Whole(nil, false),
			b:    Whole(nil, false),
			want: List{{Equal: 0}},
		},
		{
			name: "absent against text",
			a:    Whole([]string{"a", "b"}, true),
			b:    Whole(nil, false),
			want: List{{Deleted: 2, Inserted: 0}},
		},
		{
			name: "empty against text",
			a:    Whole(nil, true),
			b:    Whole([]string{"a", "b", "c"}, true),
			want: List{{Deleted: 0, Inserted: 3}},
		},
		{
			name: "windows",
			a:    Whole([]string{"a", "b", "c", "d"}, true).Window(1, 2),
			b:    Whole([]string{"b", "c"}, true),
			want: List{{Equal: 2}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Build(c.a, c.b, c.opts)
			assert.Equal(t, c.want, got)
			assert.NoError(t, got.Validate(c.a.Count, c.b.Count))
		})
	}
}

func TestBuildSumInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	words := []string{"a", "b", "c", " a", "d", "", "e f"}
	for iter := 0; iter < 100; iter++ {
		gen := func() []string {
			s := make([]string, r.Intn(40))
			for i := range s {
				s[i] = words[r.Intn(len(words))]
			}
			return s
		}
		a, b := gen(), gen()
		for _, opts := range []Options{{}, {Minimal: true}, {Classifier: equiv.Classifier{IgnoreWhiteSpace: true}}} {
			l := Build(Whole(a, true), Whole(b, true), opts)
			require.NoError(t, l.Validate(len(a), len(b)), fmt.Sprintf("a=%q b=%q", a, b))
			assert.Equal(t, len(a), l.Len1())
			assert.Equal(t, len(b), l.Len2())
		}
	}
}

func TestValidate(t *testing.T) {
	l := List{{Equal: 1, Deleted: 2, Inserted: 0}, {Equal: 3}}
	assert.NoError(t, l.Validate(6, 4))
	assert.Error(t, l.Validate(5, 4))
	assert.Error(t, l.Validate(6, 5))
	assert.Error(t, List{{Equal: -1, Deleted: 1}}.Validate(0, -1))
	assert.NoError(t, List(nil).Validate(0, 0))
}

func TestSpanOp(t *testing.T) {
	assert.Equal(t, OpEqual, Span{Equal: 3}.Op())
	assert.Equal(t, OpInsert, Span{Inserted: 1}.Op())
	assert.Equal(t, OpDelete, Span{Equal: 2, Deleted: 1}.Op())
	assert.Equal(t, OpReplace, Span{Deleted: 1, Inserted: 2}.Op())
	assert.Equal(t, "replace", OpReplace.String())

	assert.False(t, List{{Equal: 4}}.Changed())
	assert.True(t, List{{Equal: 4}, {Inserted: 1}}.Changed())
}
