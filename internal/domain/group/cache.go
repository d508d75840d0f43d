package group

import (
	"sync"
	"time"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// DefaultCacheTTL is how long a group list is served from memory
const DefaultCacheTTL = 2 * time.Minute

type cacheEntry struct {
	groups    []domain.CompanyGroup
	expiresAt time.Time
}

// cache holds group lists per company account with a fixed TTL
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	clock   func() time.Time
}

func newCache(ttl time.Duration, clock func() time.Time) *cache {
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *cache) get(accountID string) ([]domain.CompanyGroup, bool) {
	c.mu.RLock()
	e, ok := c.entries[accountID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !c.clock().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, accountID)
		c.mu.Unlock()
		return nil, false
	}
	return append([]domain.CompanyGroup(nil), e.groups...), true
}

func (c *cache) set(accountID string, groups []domain.CompanyGroup) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[accountID] = cacheEntry{
		groups:    append([]domain.CompanyGroup(nil), groups...),
		expiresAt: c.clock().Add(c.ttl),
	}
}

func (c *cache) delete(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, accountID)
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
