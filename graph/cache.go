package graph

// Cache memoizes one value per control per frame. Entries invalidate
// lazily: a lookup whose stored frame differs from the current frame is a
// miss, so no per-frame sweep is needed. The cache is not safe for
// concurrent use; the owning hub serializes access on its main loop.
type Cache struct {
	entries map[string]cacheEntry
}

type cacheEntry struct {
	frame uint64
	value float64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get returns the value cached for name at frame.
func (c *Cache) Get(name string, frame uint64) (float64, bool) {
	e, ok := c.entries[name]
	if !ok || e.frame != frame {
		return 0, false
	}
	return e.value, true
}

// Put stores the value computed for name at frame.
func (c *Cache) Put(name string, frame uint64, value float64) {
	c.entries[name] = cacheEntry{frame: frame, value: value}
}

// Clear drops all entries. Called on configuration reload.
func (c *Cache) Clear() {
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of stored entries, current or stale.
func (c *Cache) Len() int { return len(c.entries) }
