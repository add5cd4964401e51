package convert

import "strings"

// Cache memoizes converted objects during one conversion pass so that a node
// reachable through several paths converts to a single shared instance. It is
// not safe for concurrent use; each top-level conversion owns its own Cache.
type Cache struct {
	items map[string]any
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]any)}
}

// Get returns the object cached under key.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.items[key]
	return v, ok
}

// Put caches v under key, replacing any previous value.
func (c *Cache) Put(key string, v any) {
	c.items[key] = v
}

// Clear drops every cached object.
func (c *Cache) Clear() {
	clear(c.items)
}

// Len returns the number of cached objects.
func (c *Cache) Len() int { return len(c.items) }

// cacheKey builds "<kind>:<part>:<part>..." keys. The kind prefix keeps keys
// of unrelated entity kinds apart.
func cacheKey(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(kind)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// cached returns the typed value cached under key.
func cached[T any](c *Cache, key string) (T, bool) {
	v, ok := c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
