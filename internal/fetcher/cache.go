package fetcher

import "sync"

// Cache memoizes the column set learned for each resource URL during a run.
type Cache struct {
	mu      sync.Mutex
	columns map[string][]string
}

func NewCache() *Cache {
	return &Cache{columns: make(map[string][]string)}
}

func (c *Cache) Columns(resource string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cols, ok := c.columns[resource]
	if !ok {
		return nil, false
	}
	return append([]string(nil), cols...), true
}

func (c *Cache) SetColumns(resource string, cols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.columns[resource] = append([]string(nil), cols...)
}
