package schema

import "sync"

// Cache memoizes the discovered tree for a document set. The tree is
// recomputed when the set changes size or after Invalidate; callers that
// replace the corpus wholesale should invalidate explicitly.
type Cache struct {
	mu        sync.RWMutex
	current   *Node
	conflicts []TypeConflict
	docCount  int
	maxSample int
}

func NewCache(maxSample int) *Cache {
	return &Cache{
		maxSample: maxSample,
	}
}

func (c *Cache) Get(docs []any) (*Node, []TypeConflict) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.docCount != len(docs) {
		c.current, c.conflicts = Discover(docs, c.maxSample)
		c.docCount = len(docs)
	}

	return c.current, c.conflicts
}

func (c *Cache) Current() *Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.conflicts = nil
	c.docCount = 0
}
