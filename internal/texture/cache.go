package texture

import (
	"image"
	"sync"
)

// Cache loads each path once and shares the result between goroutines.
// Failed loads are remembered too.
type Cache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]cacheEntry)}
}

// Get returns the decoded image at path, loading it on first use.
func (c *Cache) Get(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	e, ok := c.items[path]
	c.mu.RUnlock()
	if ok {
		return e.img, e.err
	}

	img, err := Load(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[path]; ok {
		return e.img, e.err
	}
	c.items[path] = cacheEntry{img: img, err: err}
	return img, err
}

// Len is the number of paths tried so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
