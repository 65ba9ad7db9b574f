// Package session remembers the item each client session last selected, so
// a later request can capture an exact rule for it.
package session

import (
	"sync"
	"time"

	"github.com/solatis/renamer/internal/types"
)

// Selection is one remembered item, bound to the pack it was processed with.
type Selection struct {
	Pack      string
	Item      *types.Item
	ExpiresAt time.Time
}

// Cache is a thread-safe selection cache with TTL support.
type Cache struct {
	items map[string]Selection
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewCache creates a cache whose entries live for ttl and starts the cleanup
// goroutine.
func NewCache(ttl time.Duration) *Cache {
	c := newCache(ttl, time.Now)
	go c.cleanupLoop(ttl)
	return c
}

func newCache(ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		items: make(map[string]Selection),
		ttl:   ttl,
		now:   now,
		stop:  make(chan struct{}),
	}
}

// Set remembers item for session. The item is cloned.
func (c *Cache) Set(session, pack string, item *types.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[session] = Selection{
		Pack:      pack,
		Item:      item.Clone(),
		ExpiresAt: c.now().Add(c.ttl),
	}
}

// Get returns a copy of the selection of session if it exists and hasn't
// expired.
func (c *Cache) Get(session string) (Selection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sel, ok := c.items[session]
	if !ok || c.now().After(sel.ExpiresAt) {
		return Selection{}, false
	}
	sel.Item = sel.Item.Clone()
	return sel, true
}

// Delete forgets session.
func (c *Cache) Delete(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, session)
}

// Len returns the number of stored selections, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop stops the background cleanup goroutine. Safe to call more than once.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop(every time.Duration) {
	if every > time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, sel := range c.items {
		if now.After(sel.ExpiresAt) {
			delete(c.items, key)
		}
	}
}
