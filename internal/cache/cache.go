package cache

import (
	"sync"

	"github.com/manash/imgchat/pkg/models"
)

// Cache maps session ids to their last fetched transcript so revisiting a
// session does not hit the network again. Entries are immutable snapshots:
// Put and Get exchange deep copies, and an entry only ever changes by
// wholesale replacement. No TTL and no size bound; the cache lives for one
// client session.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*models.Transcript
}

func New() *Cache {
	return &Cache{entries: make(map[string]*models.Transcript)}
}

// Get returns a copy of the cached transcript. Absence is a normal outcome
// meaning "must fetch".
func (c *Cache) Get(id string) (*models.Transcript, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Put stores a copy of the transcript, replacing any existing entry.
func (c *Cache) Put(id string, t *models.Transcript) {
	if t == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = t.Clone()
}

// Evict drops the entry for id, if any.
func (c *Cache) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
