package inmemory

import (
	"sync"
	"time"
)

// StandingCache keeps each member's dues standing for a short TTL. It only
// serves listings; lifecycle and access decisions read the ledger.
type StandingCache struct {
	mu    sync.RWMutex
	items map[int64]standingItem
	now   func() time.Time
}

type standingItem struct {
	upToDate  bool
	expiresAt time.Time
}

func NewStandingCache() *StandingCache {
	return &StandingCache{
		items: make(map[int64]standingItem),
		now:   time.Now,
	}
}

func (c *StandingCache) Get(memberID int64) (bool, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[memberID]
	c.mu.RUnlock()
	if !ok {
		return false, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[memberID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, memberID)
		}
		c.mu.Unlock()
		return false, false
	}

	return item.upToDate, true
}

func (c *StandingCache) Set(memberID int64, upToDate bool, ttl time.Duration) {
	if ttl <= 0 {
		c.Delete(memberID)
		return
	}

	c.mu.Lock()
	c.items[memberID] = standingItem{
		upToDate:  upToDate,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *StandingCache) Delete(memberID int64) {
	c.mu.Lock()
	delete(c.items, memberID)
	c.mu.Unlock()
}
