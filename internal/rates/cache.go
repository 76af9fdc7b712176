package rates

import (
	"sync"
	"time"

	"plata/internal/core"
)

// rateCache is explicit process-wide state for resolved rates, with a clear
// contract: entries are set on lookup, served until their TTL passes, and
// dropped wholesale by Expire (for refreshes after a rate import).
type rateCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]cacheEntry
}

type cacheEntry struct {
	rate      core.ExchangeRate
	expiresAt time.Time
}

func newRateCache(ttl time.Duration) *rateCache {
	return &rateCache{
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

func (c *rateCache) get(key string) (core.ExchangeRate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return core.ExchangeRate{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.items, key)
		return core.ExchangeRate{}, false
	}
	return entry.rate, true
}

func (c *rateCache) set(key string, rate core.ExchangeRate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheEntry{rate: rate, expiresAt: time.Now().Add(c.ttl)}
}

// expire drops every entry so the next lookup hits the database.
func (c *rateCache) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheEntry)
}

func (c *rateCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
