package diff

// Op is the kind of change a Span makes after its equal run.
type Op int

// Operations from the first sequence to the second.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
	OpReplace
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	}
	return "unknown"
}

// Span is one edit span: Equal aligned elements, then Deleted elements only in the first sequence and Inserted elements only in the second.
type Span struct {
	Equal    int
	Deleted  int
	Inserted int
}

// Op reports what the span does after its equal run.
func (s Span) Op() Op {
	switch {
	case s.Deleted > 0 && s.Inserted > 0:
		return OpReplace
	case s.Deleted > 0:
		return OpDelete
	case s.Inserted > 0:
		return OpInsert
	}
	return OpEqual
}

// List is an ordered sequence of Spans that covers two sequences completely.
type List []Span

// Len1 returns the length of the first sequence covered by l.
func (l List) Len1() int {
	n := 0
	for _, s := range l {
		n += s.Equal + s.Deleted
	}
	return n
}

// Len2 returns the length of the second sequence covered by l.
func (l List) Len2() int {
	n := 0
	for _, s := range l {
		n += s.Equal + s.Inserted
	}
	return n
}

// Changed reports whether l contains any deleted or inserted element.
func (l List) Changed() bool {
	for _, s := range l {
		if s.Deleted > 0 || s.Inserted > 0 {
			return true
		}
	}
	return false
}
