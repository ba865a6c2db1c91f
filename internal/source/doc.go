// Package source holds the loaded versions (A, B, C) that the alignment engine compares.
//
// A Version owns one immutable text buffer and an ordered slice of Line records that point into it. Line records never copy text: Offset and Length locate the line in the buffer,
// FirstNonWhite is the index of the first non-white character, and the Blank/PureComment/Skippable flags are precomputed for whitespace- and comment-aware equality.
//
// Line endings: "\n", "\r\n" and a lone "\r" all end a line. The buffer is normalised to "\n". If the data ends with a line terminator, one extra empty line is recorded at the end,
// so "a\n" has two lines ("a" and "").
//
// Each Version has two views:
//   - Display: the text as loaded. Fine diffs and rendering use it.
//   - Match: the text fed to the line diff. It equals Display unless comments are ignored (comment text on lines that also carry code is blanked out) or case is ignored (the
//     text is case folded).
//
// A Version built from nil data is absent: it has no lines and HasData reports false. Data containing a NUL byte is binary: it has no lines and IsText reports false. Both are
// ordinary inputs for the engine, which then produces a degenerate but well-formed alignment.
package source
