package compensate

// Cursor walks the model's mean vectors in a cycle. Cycles counts how many
// times every vector has been visited.
type Cursor struct {
	index  int
	n      int
	cycles int
}

// NewCursor returns a cursor over n vectors.
func NewCursor(n int) Cursor { return Cursor{n: n} }

// Index is the next vector to visit.
func (c *Cursor) Index() int { return c.index }

// Len is the number of vectors in a cycle.
func (c *Cursor) Len() int { return c.n }

// Cycles is the number of completed cycles.
func (c *Cursor) Cycles() int { return c.cycles }

// Remaining is the number of vectors left in the current cycle.
func (c *Cursor) Remaining() int { return c.n - c.index }

// Advance steps past the current vector. When that completes a cycle the
// index returns to 0, the cycle count grows and Advance reports true.
func (c *Cursor) Advance() (wrapped bool) {
	c.index++
	if c.index < c.n {
		return false
	}
	c.index = 0
	c.cycles++
	return true
}

// Set restores a saved position. Out of range indices restart the cycle.
func (c *Cursor) Set(index, cycles int) {
	if index < 0 || index >= c.n {
		index = 0
	}
	c.index = index
	c.cycles = max(cycles, 0)
}
