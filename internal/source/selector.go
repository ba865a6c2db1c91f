package source

// Selector names one of the three inputs of a compare.
type Selector int

const (
	A Selector = iota
	B
	C
)

// Selectors lists A, B and C in order.
var Selectors = [...]Selector{A, B, C}

func (s Selector) String() string {
	switch s {
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	}
	return "?"
}
