package source

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// split breaks data into lines on "\n", "\r\n" and "\r", classifying comments as it goes. A trailing terminator produces a final empty line.
func split(data string) *Text {
	t := &Text{}
	var b strings.Builder
	b.Grow(len(data) + 1)
	var sc commentScanner

	add := func(line string) {
		skippable, pure, ranges := sc.scan(line)
		t.lines = append(t.lines, Line{
			Offset:        b.Len(),
			Length:        len(line),
			FirstNonWhite: firstNonWhite(line),
			pureComment:   pure,
			skippable:     skippable,
		})
		if len(ranges) > 0 && !skippable {
			if t.comments == nil {
				t.comments = make([][]commentRange, 0, 8)
			}
			for len(t.comments) < len(t.lines)-1 {
				t.comments = append(t.comments, nil)
			}
			t.comments = append(t.comments, ranges)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	terminated := false
	for i := 0; i < len(data); {
		j := i
		for j < len(data) && data[j] != '\n' && data[j] != '\r' {
			j++
		}
		add(data[i:j])
		if j == len(data) {
			terminated = false
			break
		}
		if data[j] == '\r' && j+1 < len(data) && data[j+1] == '\n' {
			j++
		}
		i = j + 1
		terminated = true
	}
	if terminated {
		add("")
	}

	t.buf = b.String()
	return t
}

func (t *Text) commentsOf(i int) []commentRange {
	if i < len(t.comments) {
		return t.comments[i]
	}
	return nil
}

// firstNonWhite returns the byte index of the first non-white rune in s, or len(s).
func firstNonWhite(s string) int {
	if i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }); i >= 0 {
		return i
	}
	return len(s)
}

func hasTrailingSpace(s string) bool {
	last, _ := utf8.DecodeLastRuneInString(s)
	return s != "" && unicode.IsSpace(last)
}
