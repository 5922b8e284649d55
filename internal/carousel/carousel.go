// Package carousel keeps the active position over an ordered media sequence,
// such as the posters on a movie's detail page.
package carousel

// Carousel cycles through an immutable sequence with a single active index.
// The zero value is an empty carousel on which every move is a no-op.
type Carousel[T any] struct {
	items []T
	index int
}

// Position is the 1-based slot of the active item paired with the total.
type Position struct {
	Current int
	Total   int
}

// Thumbnail describes one selectable slot.
type Thumbnail[T any] struct {
	Index  int
	Item   T
	Active bool
}

// New copies items so later changes by the caller cannot break the index
// invariant.
func New[T any](items []T) *Carousel[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return &Carousel[T]{items: cp}
}

// Len returns the number of items.
func (c *Carousel[T]) Len() int { return len(c.items) }

// Index returns the active index, 0 for an empty carousel.
func (c *Carousel[T]) Index() int { return c.index }

// Advance moves to the next item, wrapping from the last to the first.
func (c *Carousel[T]) Advance() bool {
	n := len(c.items)
	if n == 0 {
		return false
	}
	if c.index == n-1 {
		c.index = 0
	} else {
		c.index++
	}
	return true
}

// Retreat moves to the previous item, wrapping from the first to the last.
func (c *Carousel[T]) Retreat() bool {
	n := len(c.items)
	if n == 0 {
		return false
	}
	if c.index == 0 {
		c.index = n - 1
	} else {
		c.index--
	}
	return true
}

// Select jumps to index i. Out-of-range indices are rejected and leave the
// active index untouched.
func (c *Carousel[T]) Select(i int) bool {
	if i < 0 || i >= len(c.items) {
		return false
	}
	c.index = i
	return true
}

// Current returns the active item.
func (c *Carousel[T]) Current() (T, bool) {
	if len(c.items) == 0 {
		var zero T
		return zero, false
	}
	return c.items[c.index], true
}

// Position reports the active slot for "2 / 5" style counters.
func (c *Carousel[T]) Position() Position {
	if len(c.items) == 0 {
		return Position{}
	}
	return Position{Current: c.index + 1, Total: len(c.items)}
}

// NextIndex is the index Advance would move to, without moving.
func (c *Carousel[T]) NextIndex() int {
	if len(c.items) == 0 {
		return 0
	}
	return (c.index + 1) % len(c.items)
}

// PrevIndex is the index Retreat would move to, without moving.
func (c *Carousel[T]) PrevIndex() int {
	n := len(c.items)
	if n == 0 {
		return 0
	}
	return (c.index - 1 + n) % n
}

// Thumbnails enumerates every slot. These are the only indices a UI should
// ever pass to Select.
func (c *Carousel[T]) Thumbnails() []Thumbnail[T] {
	out := make([]Thumbnail[T], len(c.items))
	for i, item := range c.items {
		out[i] = Thumbnail[T]{Index: i, Item: item, Active: i == c.index}
	}
	return out
}
