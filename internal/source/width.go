package source

import (
	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

var widthCondition = func() *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true
	return cond
}()

// Width returns the display width of line i in a monospace terminal. A tab advances to the next multiple of tabSize; other grapheme clusters take their runewidth width.
func (t *Text) Width(i int, tabSize int) int {
	return StringWidth(t.String(i), tabSize)
}

// StringWidth is Width for an arbitrary string.
func StringWidth(s string, tabSize int) int {
	if tabSize <= 0 {
		tabSize = 1
	}
	w := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		g := iter.Value()
		if g == "\t" {
			w += tabSize - w%tabSize
			continue
		}
		w += widthCondition.StringWidth(g)
	}
	return w
}
