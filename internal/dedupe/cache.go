// ABOUTME: Thread-safe TTL cache of recently seen update IDs
// ABOUTME: Used by the relay to drop updates the platform delivered twice

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry stores when an ID was seen and its position in the eviction order.
type cacheEntry struct {
	seenAt  time.Time
	element *list.Element
}

// Cache is a size-limited, TTL-based set of update IDs.
type Cache struct {
	mu      sync.Mutex
	seen    map[int64]*cacheEntry
	order   *list.List // IDs in insertion order (oldest at front)
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache and starts a goroutine that sweeps expired IDs every sweepEvery.
// A non-positive sweepEvery disables the background sweep.
func New(ttl time.Duration, maxSize int, sweepEvery time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 1
	}
	c := &Cache{
		seen:    make(map[int64]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go c.sweepLoop(sweepEvery)
	}
	return c
}

// CheckAndMark reports whether id was already seen within the TTL.
// When it was not, id is recorded and false is returned.
func (c *Cache) CheckAndMark(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry, ok := c.seen[id]; ok {
		if now.Sub(entry.seenAt) < c.ttl {
			return true
		}
		// Expired: refresh in place
		entry.seenAt = now
		c.order.MoveToBack(entry.element)
		return false
	}

	if len(c.seen) >= c.maxSize {
		c.evictOldest()
	}
	c.seen[id] = &cacheEntry{
		seenAt:  now,
		element: c.order.PushBack(id),
	}
	return false
}

// Len returns the number of tracked IDs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// evictOldest removes the front of the order list. Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(int64)
	c.order.Remove(front)
	delete(c.seen, id)
}

func (c *Cache) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// sweep drops expired IDs from the front of the order list.
func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		id, _ := front.Value.(int64)
		entry := c.seen[id]
		if entry == nil || now.Sub(entry.seenAt) < c.ttl {
			return
		}
		c.order.Remove(front)
		delete(c.seen, id)
	}
}

// Close stops the background sweep. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
