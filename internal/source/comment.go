package source

// commentRange is a half-open byte range [start, end) of comment text within one line.
type commentRange struct {
	start, end int
}

// commentScanner classifies C-family comments line by line. Only block comments carry state from one line to the next; string and character literals end with their line.
type commentScanner struct {
	inBlock bool
}

// scan consumes one line. skippable means every non-white character is comment text. pure additionally requires that every comment opened on the line starts at
// byte 0, and that the line has no trailing white space unless it ends inside a block comment.
func (sc *commentScanner) scan(line string) (skippable, pure bool, ranges []commentRange) {
	startedInBlock := sc.inBlock
	sawComment := startedInBlock
	sawCode := false
	openedMidLine := false

	var quote byte
	escaped := false
	blockStart := 0

	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case sc.inBlock:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				sc.inBlock = false
				ranges = append(ranges, commentRange{start: blockStart, end: i + 2})
				i += 2
				continue
			}
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			sawCode = true
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			openedMidLine = openedMidLine || i > 0
			ranges = append(ranges, commentRange{start: i, end: len(line)})
			sawComment = true
			i = len(line)
			continue
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			sc.inBlock = true
			openedMidLine = openedMidLine || i > 0
			blockStart = i
			sawComment = true
			i += 2
			continue
		case c == ' ' || c == '\t' || c == '\v' || c == '\f' || c == '\r':
		default:
			sawCode = true
		}
		i++
	}
	if sc.inBlock {
		ranges = append(ranges, commentRange{start: blockStart, end: len(line)})
	}

	skippable = sawComment && !sawCode
	pure = skippable && !openedMidLine && (sc.inBlock || !hasTrailingSpace(line))
	return skippable, pure, ranges
}

// blankComments replaces the bytes of each range with spaces.
func blankComments(s string, ranges []commentRange) string {
	if len(ranges) == 0 {
		return s
	}
	b := []byte(s)
	for _, r := range ranges {
		for i := r.start; i < r.end && i < len(b); i++ {
			b[i] = ' '
		}
	}
	return string(b)
}
