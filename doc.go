// Package align3 aligns two or three versions of a text line by line, the way a side-by-side merge view needs them: every row of the result holds at
// most one line of each version A, B and C, rows keep each version's lines in order, and each row says which of its lines are equal.
//
// An Engine compares loaded versions:
//
//	e, err := align3.New(align3.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	base, mine, theirs := e.NewVersion("base", baseData), e.NewVersion("mine", mineData), e.NewVersion("theirs", theirsData)
//	res, err := e.Compare(ctx, base, mine, theirs)
//	if err != nil {
//	    // ctx.Err(), or an *InternalError if the engine broke an internal invariant
//	}
//	for i := range res.Rows {
//	    info := res.Info(i, align3.A)
//	    ...
//	}
//
// Pass nil for c to compare two versions. Rows whose lines differ carry character-level diffs for the pairs A-B, B-C and C-A, and the Result's Status
// summarizes byte and text equality of each pair.
//
// Manual alignment entries (InsertManual) force ranges of lines in different versions onto the same rows; Realign re-runs the alignment with the current
// entries without reloading the versions.
//
// The Engine logs phase boundaries with simplelogger (set ALIGN3_LOG_FILE), and reports spans and metrics through OpenTelemetry; by default it uses the
// global providers.
package align3
