package counter

import "sync"

// Counter is a set of named counters safe for concurrent use
type Counter struct {
	counts map[string]int
	mu     sync.RWMutex
}

func NewCounter() *Counter {
	return &Counter{counts: map[string]int{}}
}

func (c *Counter) Add(name string, val int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name] += val
}

func (c *Counter) Inc(name string) {
	c.Add(name, 1)
}

func (c *Counter) Count(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[name]
}

// Snapshot copies the current values
func (c *Counter) Snapshot() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		res[k] = v
	}
	return res
}
