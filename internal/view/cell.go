package view

import "sync"

// Cell is a single mutable value with a write counter.
//
// Two kinds of writer share a cell: manual input calls Store, the animation
// driver calls CompareAndStore with the version of its own previous write.
// A driver write therefore lands only if nobody else wrote in between, which
// is how the driver notices that the user has taken over.
//
// Watchers run synchronously, under the write lock, in write order. They
// must not write back to the same cell.
type Cell[T any] struct {
	mu       sync.RWMutex
	value    T
	version  uint64
	set      bool
	watchers []func(T)
}

// NewCell returns an empty cell; Load reports ok=false until the first write.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{}
}

func NewCellWith[T any](v T) *Cell[T] {
	return &Cell[T]{value: v, version: 1, set: true}
}

func (c *Cell[T]) Load() (v T, version uint64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.version, c.set
}

func (c *Cell[T]) Store(v T) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(v)
}

// CompareAndStore writes v only if the cell is still at version.
func (c *Cell[T]) CompareAndStore(version uint64, v T) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set || c.version != version {
		return c.version, false
	}
	return c.write(v), true
}

func (c *Cell[T]) Watch(fn func(T)) {
	c.mu.Lock()
	c.watchers = append(c.watchers, fn)
	c.mu.Unlock()
}

func (c *Cell[T]) write(v T) uint64 {
	c.value = v
	c.version++
	c.set = true
	for _, fn := range c.watchers {
		fn(v)
	}
	return c.version
}
