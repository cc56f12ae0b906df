package rig

import "sync"

// Collection stores the live values of one input family, keyed by
// control name, next to the specs that configured them. Background
// listeners write values concurrently with the main loop reading them,
// so every access locks.
//
// Set records the name in a dirty set the hub rotates once per frame;
// UpdateValues mutates in bulk without dirtying, for writes that happen
// every frame anyway.
type Collection[C, V any] struct {
	mu      sync.Mutex
	configs map[string]C
	values  map[string]V
	dirty   map[string]struct{}
}

// NewCollection returns an empty collection.
func NewCollection[C, V any]() *Collection[C, V] {
	return &Collection[C, V]{
		configs: make(map[string]C),
		values:  make(map[string]V),
		dirty:   make(map[string]struct{}),
	}
}

// Add registers a control with its spec and starting value. An existing
// entry is replaced, keeping its current value.
func (c *Collection[C, V]) Add(name string, cfg C, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.values[name]; !ok {
		c.values[name] = value
	}
	c.configs[name] = cfg
}

// Config returns the spec a control was added with.
func (c *Collection[C, V]) Config(name string) (C, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := c.configs[name]
	return cfg, ok
}

// Configs returns a copy of every spec by name.
func (c *Collection[C, V]) Configs() map[string]C {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]C, len(c.configs))
	for name, cfg := range c.configs {
		out[name] = cfg
	}
	return out
}

// Get returns a control's current value.
func (c *Collection[C, V]) Get(name string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[name]
	return v, ok
}

// Has reports whether the collection holds the control.
func (c *Collection[C, V]) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[name]
	return ok
}

// Remove drops a control and its value.
func (c *Collection[C, V]) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.configs, name)
	delete(c.values, name)
	delete(c.dirty, name)
}

// Set stores a value for a known control and marks it dirty. It reports
// whether the control existed.
func (c *Collection[C, V]) Set(name string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.values[name]; !ok {
		return false
	}
	c.values[name] = value
	c.dirty[name] = struct{}{}
	return true
}

// Values returns a copy of every value by name.
func (c *Collection[C, V]) Values() map[string]V {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]V, len(c.values))
	for name, v := range c.values {
		out[name] = v
	}
	return out
}

// UpdateValues runs fn on the live value map under the lock. Mutations
// do not mark controls dirty; fn must not retain the map.
func (c *Collection[C, V]) UpdateValues(fn func(values map[string]V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.values)
}

// Len returns the number of controls held.
func (c *Collection[C, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

// rotateDirty drains the names set by Set since the previous rotation.
func (c *Collection[C, V]) rotateDirty() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.dirty) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.dirty))
	for name := range c.dirty {
		out = append(out, name)
	}
	c.dirty = make(map[string]struct{})
	return out
}

// markDirty records a name as changed without touching its value.
func (c *Collection[C, V]) markDirty(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[name]; ok {
		c.dirty[name] = struct{}{}
	}
}
