package judge

import (
	"container/list"
	"sync"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/internal/metrics"
)

// Cache is the process-wide judgment cache: a mutex-guarded LRU keyed by
// the exact text passed to the scorer. Bounded capacity replaces the
// unbounded growth an always-on service cannot afford.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key      string
	judgment contracts.Judgment
}

// NewCache creates a judgment cache with the given capacity
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached judgment for a text key
func (c *Cache) Get(key string) (contracts.Judgment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return contracts.Judgment{}, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).judgment, true
}

// Put stores a judgment, evicting the least recently used entry when full
func (c *Cache) Put(key string, judgment contracts.Judgment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).judgment = judgment
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, judgment: judgment})
	metrics.SetCacheEntries(c.order.Len())
}

// Len returns the current number of cached judgments
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
