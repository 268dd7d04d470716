package pairs

import (
	"sync"

	"github.com/banshee-data/kurbeln/internal/kurbeln"
)

// trackCache loads each track at most once, even when several workers
// ask for it at the same time. One cache lives for one date group.
type trackCache struct {
	load func(id string) (kurbeln.Track, error)

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once  sync.Once
	track kurbeln.Track
	err   error
}

func newTrackCache(load func(id string) (kurbeln.Track, error)) *trackCache {
	return &trackCache{load: load, entries: make(map[string]*cacheEntry)}
}

func (c *trackCache) get(id string) (kurbeln.Track, error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		e = &cacheEntry{}
		c.entries[id] = e
	}
	c.mu.Unlock()

	e.once.Do(func() { e.track, e.err = c.load(id) })
	return e.track, e.err
}

func (c *trackCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
