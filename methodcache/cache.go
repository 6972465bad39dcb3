// Package methodcache implements the inline method cache: a two-level
// table mapping a method name to a small bounded array of (class id,
// resolved method, hit count) bindings, avoiding a dictionary lookup on
// every call_method. Grounded on the property-access inline-cache pattern
// in sentra-language-sentra's internal/vmregister package, since this
// codebase's own class table otherwise resolves methods by a plain
// class-table walk on every call.
package methodcache

import (
	"sync"

	"golang.org/x/exp/slices"
)

// MaxEntriesPerName bounds each name bucket's fan-out. A bucket at this
// size is treated as megamorphic: a miss there falls
// through to the slow path, which evicts the least-frequently-hit entry
// before inserting the new binding.
const MaxEntriesPerName = 4

// Entry is one (class, method) binding remembered for a method name.
type Entry struct {
	ClassID   uint32
	MethodRef interface{}
	HitCount  uint64
}

type bucket struct {
	entries []Entry
}

// Cache is the inline method cache. Safe for concurrent use, though the
// engine only exercises it from one request's VM goroutine at a time.
type Cache struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
}

// NewCache returns an empty inline method cache.
func NewCache() *Cache {
	return &Cache{buckets: make(map[string]*bucket)}
}

// Lookup returns the cached method reference for (name, classID), bumping
// its hit count on a hit. ok is false on a cache miss, meaning the caller
// must fall back to a slow class-table walk and then call Populate.
func (c *Cache) Lookup(name string, classID uint32) (methodRef interface{}, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, exists := c.buckets[name]
	if !exists {
		return nil, false
	}
	for i := range b.entries {
		if b.entries[i].ClassID == classID {
			b.entries[i].HitCount++
			return b.entries[i].MethodRef, true
		}
	}
	return nil, false
}

// Populate inserts or refreshes the (name, classID) -> methodRef binding.
// When the bucket is already at MaxEntriesPerName, the least-frequently-
// hit entry is evicted to make room (LFU eviction).
func (c *Cache) Populate(name string, classID uint32, methodRef interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, exists := c.buckets[name]
	if !exists {
		b = &bucket{}
		c.buckets[name] = b
	}
	for i := range b.entries {
		if b.entries[i].ClassID == classID {
			b.entries[i].MethodRef = methodRef
			return
		}
	}
	if len(b.entries) >= MaxEntriesPerName {
		evictIdx := 0
		for i := 1; i < len(b.entries); i++ {
			if b.entries[i].HitCount < b.entries[evictIdx].HitCount {
				evictIdx = i
			}
		}
		b.entries = slices.Delete(b.entries, evictIdx, evictIdx+1)
	}
	b.entries = append(b.entries, Entry{ClassID: classID, MethodRef: methodRef, HitCount: 0})
}

// IsMegamorphic reports whether name's bucket is at capacity, meaning a
// further miss will force an eviction rather than a plain insert.
func (c *Cache) IsMegamorphic(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, exists := c.buckets[name]
	return exists && len(b.entries) >= MaxEntriesPerName
}

// Entries returns a copy of name's current bucket contents, for tests and
// diagnostics.
func (c *Cache) Entries(name string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, exists := c.buckets[name]
	if !exists {
		return nil
	}
	return slices.Clone(b.entries)
}

// InvalidateClass removes every entry referencing classID across all name
// buckets. Must be called before a class descriptor's method table is
// rebound and the new descriptor becomes reachable.
func (c *Cache) InvalidateClass(classID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.buckets {
		kept := b.entries[:0]
		for _, e := range b.entries {
			if e.ClassID != classID {
				kept = append(kept, e)
			}
		}
		b.entries = kept
	}
}

// ClearAll empties the cache entirely. Always safe to call.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets = make(map[string]*bucket)
}
