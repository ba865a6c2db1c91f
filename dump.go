package align3

import (
	"fmt"
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/codalotl/align3/internal/diff"
	"github.com/mattn/go-runewidth"
)

// maxDumpWidth caps the text column of one version in Dump.
const maxDumpWidth = 60

var dumpWidth = func() *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true
	return cond
}()

// Dump renders the alignment one row per line, for debugging:
//
//	   2 =.. |    2 foo := bar()   |    2 foo := baz()   |    -
//
// The row number is followed by the AB, AC and BC equality flags ('=' equal, '.' not), then one column per version with the line number and the text. Tabs
// are expanded; long lines are cut. With color, changed lines get a background (A pink, B and C green) and the characters the fine diff marks as changed
// a darker one.
func (r *Result) Dump(color bool) string {
	const (
		reset     = "\x1b[0m"
		blackFG   = "\x1b[30m"
		pinkLine  = "\x1b[48;5;224m"
		pinkSpan  = "\x1b[48;5;217m"
		greenLine = "\x1b[48;5;194m"
		greenSpan = "\x1b[48;5;114m"
		cyanBold  = "\x1b[1;36m"
	)

	versions := []Selector{A, B}
	if r.Triple {
		versions = append(versions, C)
	}

	tabSize := r.tabSize
	if tabSize <= 0 {
		tabSize = 8
	}
	var widths [3]int
	for _, v := range versions {
		t := r.versions[v].Display()
		for i := 0; i < t.Len(); i++ {
			widths[v] = max(widths[v], t.Width(i, tabSize))
		}
		widths[v] = min(max(widths[v], len(r.versions[v].Name), 1), maxDumpWidth)
	}

	var out strings.Builder
	header := []string{"   # eq  "}
	for _, v := range versions {
		header = append(header, fmt.Sprintf(" %s %s", v, runewidth.FillRight(r.versions[v].Name, widths[v]+3)))
	}
	line := strings.Join(header, "|")
	if color {
		line = cyanBold + line + reset
	}
	out.WriteString(line)
	out.WriteByte('\n')

	for i := range r.Rows {
		row := &r.Rows[i]
		cols := []string{fmt.Sprintf("%4d %c%c%c ", i, eqMark(row.EqAB), eqMark(row.EqAC), eqMark(row.EqBC))}
		for _, v := range versions {
			info := r.Info(i, v)
			if info.Line < 0 {
				cols = append(cols, "    - "+strings.Repeat(" ", widths[v]))
				continue
			}

			// Changed runes: for A the A side of the AB diff, for B the B side of it, for C the C side of the CA diff.
			var changed []bool
			text := r.Text(v, info.Line)
			switch v {
			case A:
				changed = changedRunes(row.FineAB, text, false)
			case B:
				changed = changedRunes(row.FineAB, text, true)
			default:
				changed = changedRunes(row.FineCA, text, false)
			}

			lineBg, spanBg := greenLine, greenSpan
			if v == A {
				lineBg, spanBg = pinkLine, pinkSpan
			}
			differs := color && (info.Content != 0 || info.Presence != 0)
			cell := renderCell(text, changed, widths[v], tabSize, func(s string, hl bool) string {
				if !differs || !hl {
					return s
				}
				return reset + blackFG + spanBg + s + reset + blackFG + lineBg
			})
			if differs {
				cell = blackFG + lineBg + cell + reset
			}
			cols = append(cols, fmt.Sprintf("%5d %s", info.Line, cell))
		}
		out.WriteString(strings.TrimRight(strings.Join(cols, "|"), " "))
		out.WriteByte('\n')
	}
	return out.String()
}

func eqMark(eq bool) byte {
	if eq {
		return '='
	}
	return '.'
}

// changedRunes marks the runes of text that list changes. second selects the list's second side.
func changedRunes(list diff.List, text string, second bool) []bool {
	if !list.Changed() {
		return nil
	}
	marks := make([]bool, len([]rune(text)))
	pos := 0
	mark := func(n int) {
		for ; n > 0 && pos < len(marks); n-- {
			marks[pos] = true
			pos++
		}
	}
	for _, s := range list {
		pos += s.Equal
		switch op := s.Op(); {
		case op == diff.OpReplace && second, op == diff.OpInsert && second:
			mark(s.Inserted)
		case op == diff.OpReplace && !second, op == diff.OpDelete && !second:
			mark(s.Deleted)
		}
	}
	return marks
}

// renderCell expands tabs in text, cuts it at width and pads it to width. Runs of graphemes with equal highlight state are passed through paint.
func renderCell(text string, changed []bool, width, tabSize int, paint func(s string, hl bool) string) string {
	var out, run strings.Builder
	runHL := false
	flush := func() {
		if run.Len() > 0 {
			out.WriteString(paint(run.String(), runHL))
			run.Reset()
		}
	}

	w, r := 0, 0
	iter := graphemes.FromString(text)
	for iter.Next() {
		g := iter.Value()
		hl := false
		for range g {
			if r < len(changed) && changed[r] {
				hl = true
			}
			r++
		}

		gw := dumpWidth.StringWidth(g)
		if g == "\t" {
			gw = tabSize - w%tabSize
			g = strings.Repeat(" ", gw)
		}
		if w+gw > width {
			break
		}
		if hl != runHL {
			flush()
			runHL = hl
		}
		run.WriteString(g)
		w += gw
	}
	flush()
	out.WriteString(strings.Repeat(" ", width-w))
	return out.String()
}
