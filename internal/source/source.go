package source

import (
	"bytes"
	"strings"

	"golang.org/x/text/cases"
)

// Options control how a Version builds its match view.
type Options struct {
	IgnoreComments bool // blank out comment text on lines that also contain code
	IgnoreCase     bool // case fold the match view
}

// Line is a read-only record of one line within a Text buffer.
type Line struct {
	Offset        int // byte offset of the line in the buffer
	Length        int // byte length, without the line terminator
	FirstNonWhite int // byte index (relative to Offset) of the first non-white character; == Length if the line is blank

	pureComment bool
	skippable   bool
}

// Blank reports whether the line contains only white space (or nothing).
func (l Line) Blank() bool {
	return l.FirstNonWhite >= l.Length
}

// PureComment reports whether the line consists of nothing but comment text.
func (l Line) PureComment() bool {
	return l.pureComment
}

// Skippable reports whether every non-white character of the line is inside a comment.
func (l Line) Skippable() bool {
	return l.skippable
}

// Text is a buffer plus the Line records that index it.
type Text struct {
	buf      string
	lines    []Line
	comments [][]commentRange // comments[i] is nil unless line i mixes code and comments
}

// Len returns the number of lines.
func (t *Text) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lines)
}

// Line returns the record for line i.
func (t *Text) Line(i int) Line {
	return t.lines[i]
}

// String returns the content of line i, without its terminator. The result shares memory with the buffer.
func (t *Text) String(i int) string {
	l := t.lines[i]
	return t.buf[l.Offset : l.Offset+l.Length]
}

// Strings returns the content of lines [first, first+count).
func (t *Text) Strings(first, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = t.String(first + i)
	}
	return out
}

// Version is one loaded input (A, B or C).
type Version struct {
	Name string

	raw    []byte
	absent bool
	binary bool

	display *Text
	match   *Text
}

// NewVersion splits data into lines and precomputes line records for both views. data is kept for BinaryEqual, so callers must not mutate it afterwards. nil data yields an
// absent version.
func NewVersion(name string, data []byte, opts Options) *Version {
	v := &Version{Name: name, raw: data}
	if data == nil {
		v.absent = true
		v.display = &Text{}
		v.match = v.display
		return v
	}
	if bytes.IndexByte(data, 0) >= 0 {
		v.binary = true
		v.display = &Text{}
		v.match = v.display
		return v
	}

	v.display = split(string(data))
	v.match = v.display
	if opts.IgnoreComments || opts.IgnoreCase {
		v.match = matchView(v.display, opts)
	}
	return v
}

// Absent returns a version with no data, used for the missing third input of a two-way compare.
func Absent(name string) *Version {
	return NewVersion(name, nil, Options{})
}

// HasData reports whether the version was loaded from data (even if that data is empty or binary).
func (v *Version) HasData() bool {
	return v != nil && !v.absent
}

// IsText reports whether the version can be line-diffed. Absent and empty versions are text.
func (v *Version) IsText() bool {
	return v == nil || !v.binary
}

// SizeBytes returns the size of the loaded data.
func (v *Version) SizeBytes() int {
	if v == nil {
		return 0
	}
	return len(v.raw)
}

// LineCount returns the number of lines. It is the same for both views.
func (v *Version) LineCount() int {
	if v == nil {
		return 0
	}
	return v.display.Len()
}

// Display returns the text as loaded.
func (v *Version) Display() *Text {
	if v == nil {
		return &Text{}
	}
	return v.display
}

// Match returns the text the line diff compares.
func (v *Version) Match() *Text {
	if v == nil {
		return &Text{}
	}
	return v.match
}

// BinaryEqual reports whether v and o both have data and that data is byte-for-byte identical.
func (v *Version) BinaryEqual(o *Version) bool {
	if !v.HasData() || !o.HasData() {
		return false
	}
	return bytes.Equal(v.raw, o.raw)
}

// matchView derives the comparison view from the display view. The derived buffer keeps one line per display line, so line indices are shared.
func matchView(display *Text, opts Options) *Text {
	var fold cases.Caser
	if opts.IgnoreCase {
		fold = cases.Fold()
	}

	var b strings.Builder
	b.Grow(len(display.buf))
	lines := make([]Line, len(display.lines))
	for i, l := range display.lines {
		s := display.String(i)
		if opts.IgnoreComments && !l.skippable {
			s = blankComments(s, display.commentsOf(i))
		}
		if opts.IgnoreCase {
			s = fold.String(s)
		}
		nl := l
		nl.Offset = b.Len()
		nl.Length = len(s)
		nl.FirstNonWhite = firstNonWhite(s)
		b.WriteString(s)
		b.WriteByte('\n')
		lines[i] = nl
	}
	return &Text{buf: b.String(), lines: lines}
}
