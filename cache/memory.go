// Package cache provides the in-memory LRU cache used to memoize feed
// lookups across the walks of one restore session.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is an LRU cache with TTL support.
type MemoryCache[V any] struct {
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*list.Element
	lruList *list.List
	hits    int64
	misses  int64
}

type lruEntry[V any] struct {
	key    string
	value  V
	expiry time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries values, each
// for ttl. A zero ttl keeps values until they are evicted.
func NewMemoryCache[V any](maxEntries int, ttl time.Duration) *MemoryCache[V] {
	return &MemoryCache[V]{
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		entries:    make(map[string]*list.Element),
		lruList:    list.New(),
	}
}

// Get returns the value for key if present and not expired.
func (mc *MemoryCache[V]) Get(key string) (V, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	var zero V
	elem, ok := mc.entries[key]
	if !ok {
		mc.misses++
		return zero, false
	}

	ent := elem.Value.(*lruEntry[V])
	if !ent.expiry.IsZero() && mc.now().After(ent.expiry) {
		mc.removeElement(elem)
		mc.misses++
		return zero, false
	}

	mc.lruList.MoveToFront(elem)
	mc.hits++
	return ent.value, true
}

// Set adds or replaces the value for key.
func (mc *MemoryCache[V]) Set(key string, value V) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	var expiry time.Time
	if mc.ttl > 0 {
		expiry = mc.now().Add(mc.ttl)
	}

	if elem, ok := mc.entries[key]; ok {
		ent := elem.Value.(*lruEntry[V])
		ent.value = value
		ent.expiry = expiry
		mc.lruList.MoveToFront(elem)
		return
	}

	mc.entries[key] = mc.lruList.PushFront(&lruEntry[V]{key: key, value: value, expiry: expiry})
	for mc.maxEntries > 0 && mc.lruList.Len() > mc.maxEntries {
		mc.removeElement(mc.lruList.Back())
	}
}

// Delete removes a key from the cache.
func (mc *MemoryCache[V]) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if elem, ok := mc.entries[key]; ok {
		mc.removeElement(elem)
	}
}

// Clear removes all entries from the cache.
func (mc *MemoryCache[V]) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.entries = make(map[string]*list.Element)
	mc.lruList = list.New()
}

// Stats returns cache statistics.
func (mc *MemoryCache[V]) Stats() Stats {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	return Stats{Entries: len(mc.entries), Hits: mc.hits, Misses: mc.misses}
}

// removeElement removes an element from the cache (must hold lock).
func (mc *MemoryCache[V]) removeElement(elem *list.Element) {
	ent := elem.Value.(*lruEntry[V])
	delete(mc.entries, ent.key)
	mc.lruList.Remove(elem)
}

// Stats holds cache statistics.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}
