package routines

import "sync"

// lruCache is a fixed-capacity cache with strict least-recently-used
// eviction. Entries live in a dense slice and the recency list links slot
// indices rather than pointers; freed slots are recycled through a free list.
// A single mutex guards lookup, insertion, and eviction, so two callers
// missing on the same key cannot both install a value, and an evicted value
// is disposed only after it is unreachable from the index.
type lruCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	index    map[K]int // key -> slot
	entries  []lruEntry[K, V]
	free     []int
	head     int // most recently used slot, -1 when empty
	tail     int // least recently used slot, -1 when empty
	dispose  func(V)
}

type lruEntry[K comparable, V any] struct {
	key  K
	val  V
	prev int
	next int
}

// newLRUCache creates a cache holding at most capacity entries. dispose runs
// for every value removed by eviction or clear; it may be nil.
func newLRUCache[K comparable, V any](capacity int, dispose func(V)) *lruCache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &lruCache[K, V]{
		capacity: capacity,
		index:    make(map[K]int, capacity),
		head:     -1,
		tail:     -1,
		dispose:  dispose,
	}
}

// getOrCreate returns the resident value for key, promoting it to most
// recently used, or installs factory() as the new most recently used entry.
// When the insertion exceeds capacity, the least recently used entry is
// evicted and disposed before getOrCreate returns.
func (c *lruCache[K, V]) getOrCreate(key K, factory func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slot, ok := c.index[key]; ok {
		c.unlink(slot)
		c.pushFront(slot)
		return c.entries[slot].val
	}

	val := factory()
	slot := c.alloc()
	c.entries[slot].key = key
	c.entries[slot].val = val
	c.index[key] = slot
	c.pushFront(slot)

	if len(c.index) > c.capacity {
		c.evictTail()
	}
	return val
}

// get returns the resident value for key without creating one.
func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.unlink(slot)
	c.pushFront(slot)
	return c.entries[slot].val, true
}

// clear evicts and disposes every resident entry.
func (c *lruCache[K, V]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.tail != -1 {
		c.evictTail()
	}
}

// len returns the number of resident entries.
func (c *lruCache[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// alloc returns a slot index, reusing a freed one when available.
func (c *lruCache[K, V]) alloc() int {
	if n := len(c.free); n > 0 {
		slot := c.free[n-1]
		c.free = c.free[:n-1]
		return slot
	}
	c.entries = append(c.entries, lruEntry[K, V]{})
	return len(c.entries) - 1
}

// evictTail removes the least recently used entry from the index, recycles
// its slot, and disposes its value. Must be called with mu held and at least
// one resident entry.
func (c *lruCache[K, V]) evictTail() {
	slot := c.tail
	e := &c.entries[slot]
	delete(c.index, e.key)
	c.unlink(slot)
	c.free = append(c.free, slot)

	val := e.val
	var zeroK K
	var zeroV V
	e.key = zeroK
	e.val = zeroV

	if c.dispose != nil {
		c.dispose(val)
	}
}

// unlink detaches slot from the recency list. Must be called with mu held.
func (c *lruCache[K, V]) unlink(slot int) {
	e := &c.entries[slot]
	if e.prev != -1 {
		c.entries[e.prev].next = e.next
	} else if c.head == slot {
		c.head = e.next
	}
	if e.next != -1 {
		c.entries[e.next].prev = e.prev
	} else if c.tail == slot {
		c.tail = e.prev
	}
	e.prev, e.next = -1, -1
}

// pushFront makes slot the most recently used entry. Must be called with mu held.
func (c *lruCache[K, V]) pushFront(slot int) {
	e := &c.entries[slot]
	e.prev = -1
	e.next = c.head
	if c.head != -1 {
		c.entries[c.head].prev = slot
	}
	c.head = slot
	if c.tail == -1 {
		c.tail = slot
	}
}

// defaultLimiterCacheCapacity bounds how many distinct max-concurrency values
// keep a pooled limiter resident at once.
const defaultLimiterCacheCapacity = 64

// sharedLimiters pools limiters by numeric limit so every launch configured
// with the same max-concurrency value shares one limiter process-wide.
// Evicted limiters are closed once they are no longer reachable from the pool.
var sharedLimiters = newLRUCache[int, *limiter](defaultLimiterCacheCapacity, func(l *limiter) { l.close() })

// ClearSharedLimiters evicts and closes every pooled limiter. Intended for
// test isolation; safe to call concurrently with ongoing launches, which will
// re-create limiters on demand.
func ClearSharedLimiters() { sharedLimiters.clear() }
