// Package cache provides a small bounded map that evicts in insertion order.
package cache

import "sync"

// FIFO is a concurrency-safe map holding at most Cap entries. When full, the
// oldest inserted key is evicted. Updating an existing key keeps its slot.
type FIFO[K comparable, V any] struct {
	mu    sync.Mutex
	cap   int
	order []K
	items map[K]V

	// OnEvict, when set, is called with the lock held for every evicted key.
	OnEvict func(K, V)
}

func NewFIFO[K comparable, V any](capacity int) *FIFO[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &FIFO[K, V]{
		cap:   capacity,
		items: make(map[K]V, capacity),
	}
}

func (c *FIFO[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *FIFO[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; ok {
		c.items[key] = value
		return
	}
	for len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		if c.OnEvict != nil {
			c.OnEvict(oldest, c.items[oldest])
		}
		delete(c.items, oldest)
	}
	c.order = append(c.order, key)
	c.items[key] = value
}

func (c *FIFO[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok {
		return
	}
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *FIFO[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *FIFO[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	clear(c.items)
}

// Keys returns keys oldest first.
func (c *FIFO[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]K(nil), c.order...)
}
