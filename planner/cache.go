package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wbrown/graphtype/ir"
)

// Cache memoizes plans by conjunction shape and bound-input set, so a
// query pattern seen repeatedly (the common case for prepared or
// templated queries) skips re-running the greedy search.
type Cache struct {
	mu    sync.RWMutex
	byKey map[string]*cacheEntry

	hits   int64
	misses int64

	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	plan      *Plan
	timestamp time.Time
}

// NewCache creates a plan cache holding at most maxSize plans, each valid
// for ttl after insertion.
func NewCache(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{byKey: make(map[string]*cacheEntry), maxSize: maxSize, ttl: ttl}
}

// Get returns a cached plan for (conjunction, boundInputs), if present and
// not expired.
func (c *Cache) Get(conjunction *ir.Conjunction, boundInputs map[ir.VariableID]bool) (*Plan, bool) {
	if c == nil {
		return nil, false
	}
	key := cacheKey(conjunction, boundInputs)

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.byKey[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return entry.plan, true
}

// Put stores plan under (conjunction, boundInputs), evicting expired or,
// failing that, the oldest entry if the cache is full.
func (c *Cache) Put(conjunction *ir.Conjunction, boundInputs map[ir.VariableID]bool, plan *Plan) {
	if c == nil || plan == nil {
		return
	}
	key := cacheKey(conjunction, boundInputs)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.byKey) >= c.maxSize {
		c.evictExpired()
		if len(c.byKey) >= c.maxSize {
			c.evictOldest()
		}
	}
	c.byKey[key] = &cacheEntry{plan: plan, timestamp: time.Now()}
}

// Stats returns cumulative hit/miss counts and the current cache size.
func (c *Cache) Stats() (hits, misses int64, size int) {
	if c == nil {
		return 0, 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses), len(c.byKey)
}

// Clear empties the cache and resets its counters.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[string]*cacheEntry)
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

func cacheKey(conjunction *ir.Conjunction, boundInputs map[ir.VariableID]bool) string {
	h := sha256.New()
	fmt.Fprintf(h, "SCOPE:%d;", conjunction.Scope)
	for _, c := range conjunction.Constraints {
		fmt.Fprintf(h, "C:%s;", c.String())
	}
	fmt.Fprintf(h, "BOUND:")
	bound := make([]ir.VariableID, 0, len(boundInputs))
	for v := range boundInputs {
		bound = append(bound, v)
	}
	sort.Slice(bound, func(i, j int) bool { return bound[i] < bound[j] })
	for _, v := range bound {
		fmt.Fprintf(h, "%d;", v)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) evictExpired() {
	now := time.Now()
	for key, e := range c.byKey {
		if now.Sub(e.timestamp) > c.ttl {
			delete(c.byKey, key)
		}
	}
}

func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, e := range c.byKey {
		if oldestKey == "" || e.timestamp.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.timestamp
		}
	}
	if oldestKey != "" {
		delete(c.byKey, oldestKey)
	}
}
