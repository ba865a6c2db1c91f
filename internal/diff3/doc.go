// Package diff3 builds the three-way line alignment: an ordered list of rows where each row holds at most one line of each version A, B and C, plus flags
// saying which of the row's lines are equal.
//
// Rows live in an arena and are addressed by stable Handles. The alignment itself is an ordered slice of handles. Each phase takes the current order and
// produces a new one; phases that insert rows in the middle of a scan work on a handle-linked chain built from the current order, so no phase ever holds an
// index that an insertion could invalidate.
//
// Building an alignment:
//  1. SeedAB turns the A-B diff list into rows.
//  2. MergeAC places C's lines using the A-C diff list. C lines equal to an A line join that line's row; the rest get rows of their own.
//  3. ReconcileBC (optional) uses the B-C diff list to pull B and C lines that are equal but ended up on different rows onto the same row.
//  4. CorrectManual enforces manual alignment entries, then Trim compacts the list by moving lines back into earlier rows where they fit.
//
// After that, Check verifies that every line of every version appears exactly once and in order, MarkWhite sets the per-row blank/comment flags, and FineDiff
// annotates each row with character-level diffs for one version pair.
//
// Internal consistency failures (an alignment that lost or duplicated lines, a diff list that doesn't match the rows) panic with an *invariant.Error.
package diff3
