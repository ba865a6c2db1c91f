package diff3

import "github.com/codalotl/align3/internal/invariant"

// Handle addresses a row in a Builder's arena. Handles stay valid for the Builder's lifetime, regardless of insertions.
type Handle int

// end is the handle past the last row of a chain.
const end Handle = -1

// chain is a doubly linked view over a Builder's order. Rows inserted through the chain are appended to the arena; the order is only rewritten on commit.
type chain struct {
	b          *Builder
	next, prev []Handle // indexed by Handle
	head       Handle
}

func (b *Builder) newChain() *chain {
	n := len(b.rows)
	c := &chain{b: b, next: make([]Handle, n), prev: make([]Handle, n), head: end}
	for i := range c.next {
		c.next[i], c.prev[i] = end, end
	}
	last := end
	for _, h := range b.order {
		if last == end {
			c.head = h
		} else {
			c.next[last] = h
		}
		c.prev[h] = last
		last = h
	}
	return c
}

// row returns the row at h. The pointer is invalidated by the next insertBefore.
func (c *chain) row(h Handle) *Row {
	if h == end {
		invariant.Failf(invariant.Structure, "dereferenced the end of the row chain")
	}
	return &c.b.rows[h]
}

func (c *chain) succ(h Handle) Handle {
	if h == end {
		invariant.Failf(invariant.Structure, "advanced past the end of the row chain")
	}
	return c.next[h]
}

// insertBefore links a new row holding r in front of at (at == end appends) and returns its handle.
func (c *chain) insertBefore(at Handle, r Row) Handle {
	h := c.b.alloc(r)
	c.next = append(c.next, end)
	c.prev = append(c.prev, end)

	if at == end {
		last := c.head
		if last == end {
			c.head = h
			return h
		}
		for c.next[last] != end {
			last = c.next[last]
		}
		c.next[last] = h
		c.prev[h] = last
		return h
	}

	p := c.prev[at]
	c.prev[h], c.next[h] = p, at
	c.prev[at] = h
	if p == end {
		c.head = h
	} else {
		c.next[p] = h
	}
	return h
}

// before reports whether x comes strictly before y. Both cursors walk forward in lockstep, so the cost is bounded by the distance between them.
func (c *chain) before(x, y Handle) bool {
	if x == y {
		return false
	}
	fx, fy := x, y
	for fx != y && fy != x {
		if fx == end && fy == end {
			invariant.Failf(invariant.Structure, "rows %d and %d are not on the same chain", x, y)
		}
		if fx != end {
			fx = c.next[fx]
		}
		if fy != end {
			fy = c.next[fy]
		}
	}
	return fx == y
}

// commit writes the chain's order back to the Builder.
func (c *chain) commit() {
	order := c.b.order[:0]
	for h := c.head; h != end; h = c.next[h] {
		order = append(order, h)
	}
	c.b.order = order
}
